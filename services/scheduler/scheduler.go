package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	reminderRepo "yogatrack/database/repository/reminder"
	userRepo "yogatrack/database/repository/user"
	"yogatrack/models"
	"yogatrack/utils"

	"go.uber.org/zap"
)

const defaultPageSize = 200

// DefaultScheduler is the production Service implementation.
type DefaultScheduler struct {
	Reminders reminderRepo.Repository
	Users     userRepo.Repository
	PageSize  int
}

// Tick pages through enabled reminders and emits each one that is due at
// now in its owner's time zone.
func (s *DefaultScheduler) Tick(ctx context.Context, now time.Time, emit func(models.DueReminder) error) error {
	logger := utils.GetLogger()
	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	// Owners repeat within a tick; cache them for its duration only.
	users := map[string]*models.UserData{}
	locations := map[string]*time.Location{}

	cursor := ""
	for {
		page, next, err := s.Reminders.ListEnabled(ctx, cursor, pageSize)
		if err != nil {
			return fmt.Errorf("scheduler tick: %w", err)
		}

		for i := range page {
			r := &page[i]

			user, ok := users[r.UserID]
			if !ok {
				user, err = s.Users.GetByID(ctx, r.UserID)
				if err != nil {
					if errors.Is(err, userRepo.ErrNotFound) {
						logger.Warn("reminder owner missing, skipping",
							zap.String("reminderId", r.ID),
							zap.String("userId", r.UserID))
						continue
					}
					return fmt.Errorf("scheduler tick: owner lookup for reminder %s: %w", r.ID, err)
				}
				users[r.UserID] = user
			}

			loc, ok := locations[user.Tz]
			if !ok {
				loc, err = time.LoadLocation(user.Tz)
				if err != nil {
					logger.Warn("invalid user time zone, skipping reminder",
						zap.String("reminderId", r.ID),
						zap.String("userId", user.ID),
						zap.String("tz", user.Tz))
					continue
				}
				locations[user.Tz] = loc
			}

			key, occTime, due, err := IsDue(r, now, loc)
			if err != nil {
				logger.Warn("malformed reminder, skipping",
					zap.String("reminderId", r.ID),
					zap.Error(err))
				continue
			}
			if !due {
				continue
			}

			if err := emit(models.DueReminder{
				Reminder:       *r,
				User:           *user,
				Occurrence:     key,
				OccurrenceTime: occTime,
			}); err != nil {
				return err
			}
		}

		if next == "" {
			return nil
		}
		cursor = next
	}
}
