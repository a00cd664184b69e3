package poseimageRepo

import (
	"context"

	"yogatrack/models"
)

// Repository defines persistence for pose images. PromoteFromLocal is the
// guarded transition out of LOCAL placement; its filter matches only records
// still in LOCAL so a lost race (or a repeated call) is a no-op.
type Repository interface {
	Create(ctx context.Context, img *models.PoseImage) error
	GetByID(ctx context.Context, id string) (*models.PoseImage, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]models.PoseImage, error)

	// ListLocal returns up to limit records still in LOCAL placement, oldest
	// first, for the reconciliation sweep.
	ListLocal(ctx context.Context, limit int) ([]models.PoseImage, error)

	// PromoteFromLocal transitions a LOCAL record to CLOUD or HYBRID.
	// keepLocal retains localStorageId (HYBRID); otherwise it is cleared.
	// Returns false when the record was not in LOCAL placement anymore.
	PromoteFromLocal(ctx context.Context, id, cloudID, url string, keepLocal bool) (bool, error)
}
