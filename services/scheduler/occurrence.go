package scheduler

import (
	"time"

	"yogatrack/models"
)

const localDateLayout = "2006-01-02"

// LocalDate returns the civil date of an instant in the given zone.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(localDateLayout)
}

// Occurrence computes the occurrence key and occurrence timestamp for a
// reminder on now's calendar day in loc. The timestamp is the reminder's
// wall-clock time materialized on that day; time.Date resolves it through
// DST transitions, so a 23- or 25-hour day still yields exactly one
// occurrence.
func Occurrence(r *models.Reminder, now time.Time, loc *time.Location) (models.OccurrenceKey, time.Time, error) {
	hour, minute, err := r.ClockTime()
	if err != nil {
		return models.OccurrenceKey{}, time.Time{}, err
	}
	local := now.In(loc)
	occTime := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	key := models.OccurrenceKey{
		ReminderID: r.ID,
		LocalDate:  local.Format(localDateLayout),
	}
	return key, occTime, nil
}

// IsDue decides whether the reminder must fire now. Due means: today's
// weekday (in loc) is in the reminder's day set, the local wall-clock has
// reached timeOfDay, and lastSent does not already cover today's
// occurrence. There is no upper cutoff within the day: a tick that arrives
// hours late still fires the occurrence, once, until midnight rolls the
// occurrence key over.
func IsDue(r *models.Reminder, now time.Time, loc *time.Location) (models.OccurrenceKey, time.Time, bool, error) {
	if !r.Enabled {
		return models.OccurrenceKey{}, time.Time{}, false, nil
	}
	local := now.In(loc)
	if !r.HasDay(models.DayToken(local.Weekday())) {
		return models.OccurrenceKey{}, time.Time{}, false, nil
	}
	key, occTime, err := Occurrence(r, now, loc)
	if err != nil {
		return models.OccurrenceKey{}, time.Time{}, false, err
	}
	if local.Before(occTime) {
		return models.OccurrenceKey{}, time.Time{}, false, nil
	}
	if r.LastSent != nil && LocalDate(*r.LastSent, loc) == key.LocalDate {
		return models.OccurrenceKey{}, time.Time{}, false, nil
	}
	return key, occTime, true, nil
}
