package pushRepo

import (
	"context"

	"yogatrack/models"
)

// Repository defines persistence for Web Push subscriptions. Endpoint is
// globally unique; Save re-homes an endpoint to the saving user when a
// browser re-registers under a different account.
type Repository interface {
	Save(ctx context.Context, sub *models.PushSubscription) error
	ListByUser(ctx context.Context, userID string) ([]models.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}
