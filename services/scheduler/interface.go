package scheduler

import (
	"context"
	"time"

	"yogatrack/models"
)

// Service decides which reminders are due at an instant. Tick is pure with
// respect to persisted state: it only reads, and a crashed run is simply
// recomputed by the next one.
type Service interface {
	// Tick streams every due reminder at now to emit, paging through enabled
	// reminders with a bounded cursor. A non-nil error from emit aborts the
	// scan and is returned; per-record data problems (dangling owner, bad
	// tz, malformed timeOfDay) are logged and skipped.
	Tick(ctx context.Context, now time.Time, emit func(models.DueReminder) error) error
}
