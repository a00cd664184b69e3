package reminderRepo

import (
	"context"
	"time"

	"yogatrack/models"
)

// Repository defines persistence for reminders. ListEnabled pages with a
// bounded cursor so a tick never loads the whole table; CommitLastSent is
// the atomic conditional update the at-most-once property rests on.
type Repository interface {
	Create(ctx context.Context, r *models.Reminder) error
	GetByID(ctx context.Context, id string) (*models.Reminder, error)
	Update(ctx context.Context, r *models.Reminder) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]models.Reminder, error)

	// ListEnabled returns up to limit enabled reminders with id > afterID in
	// id order, plus the cursor for the next page ("" when exhausted).
	ListEnabled(ctx context.Context, afterID string, limit int) ([]models.Reminder, string, error)

	// CommitLastSent sets lastSent to next only if it still equals prev.
	// Returns false when the guard did not match (another run committed
	// first, or the reminder is gone).
	CommitLastSent(ctx context.Context, id string, prev *time.Time, next time.Time) (bool, error)
}
