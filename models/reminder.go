package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekday tokens stored on a reminder's Days set.
const (
	DayMon = "MON"
	DayTue = "TUE"
	DayWed = "WED"
	DayThu = "THU"
	DayFri = "FRI"
	DaySat = "SAT"
	DaySun = "SUN"
)

var dayTokens = map[string]bool{
	DayMon: true, DayTue: true, DayWed: true, DayThu: true,
	DayFri: true, DaySat: true, DaySun: true,
}

// DayToken maps a time.Weekday to its stored token.
func DayToken(wd time.Weekday) string {
	switch wd {
	case time.Monday:
		return DayMon
	case time.Tuesday:
		return DayTue
	case time.Wednesday:
		return DayWed
	case time.Thursday:
		return DayThu
	case time.Friday:
		return DayFri
	case time.Saturday:
		return DaySat
	default:
		return DaySun
	}
}

// Reminder is a recurring practice reminder owned by exactly one user.
// TimeOfDay is local wall-clock ("07:30") in the owner's tz; LastSent is nil
// until the first committed delivery and afterwards always holds the
// occurrence timestamp of the last handled calendar-day occurrence.
type Reminder struct {
	ID                        string     `json:"id" bson:"id"`
	UserID                    string     `json:"userId" bson:"userId"`
	TimeOfDay                 string     `json:"timeOfDay" bson:"timeOfDay"`
	Days                      []string   `json:"days" bson:"days"`
	Enabled                   bool       `json:"enabled" bson:"enabled"`
	Message                   string     `json:"message" bson:"message"`
	LastSent                  *time.Time `json:"lastSent,omitempty" bson:"lastSent,omitempty"`
	EmailNotificationsEnabled bool       `json:"emailNotificationsEnabled" bson:"emailNotificationsEnabled"`
	CreatedAt                 time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt                 time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// HasDay reports whether the given weekday token is in the reminder's Days set.
func (r *Reminder) HasDay(token string) bool {
	for _, d := range r.Days {
		if d == token {
			return true
		}
	}
	return false
}

// ClockTime parses TimeOfDay into hour and minute.
func (r *Reminder) ClockTime() (hour, minute int, err error) {
	parts := strings.SplitN(r.TimeOfDay, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timeOfDay %q", r.TimeOfDay)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid timeOfDay %q: %w", r.TimeOfDay, err)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid timeOfDay %q: %w", r.TimeOfDay, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("timeOfDay %q out of range", r.TimeOfDay)
	}
	return hour, minute, nil
}

// Validate checks the user-editable fields of a reminder.
func (r *Reminder) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("reminder is missing an owner")
	}
	if _, _, err := r.ClockTime(); err != nil {
		return err
	}
	if len(r.Days) == 0 {
		return fmt.Errorf("reminder must have at least one day")
	}
	for _, d := range r.Days {
		if !dayTokens[d] {
			return fmt.Errorf("unknown day token %q", d)
		}
	}
	return nil
}
