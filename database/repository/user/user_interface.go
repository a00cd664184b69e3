package userRepo

import (
	"context"
	"errors"

	"yogatrack/models"
)

// ErrNotFound is returned when no user matches the lookup. The scheduler
// treats it as a data-integrity condition (dangling reminder owner) rather
// than a tick failure.
var ErrNotFound = errors.New("user not found")

// Repository defines the user lookups the core needs: the owner's tz for
// occurrence computation and email for the email channel.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.UserData, error)
}
