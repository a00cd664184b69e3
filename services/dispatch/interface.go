package dispatch

import (
	"context"

	"yogatrack/models"
)

// Service delivers a due reminder through the owner's enabled channels and
// records the occurrence as handled at most once.
type Service interface {
	Deliver(ctx context.Context, due models.DueReminder) (*models.DeliveryResult, error)
}

// PushSender sends one Web Push message to one subscription. A nil error
// means accepted by the push service; failures are classified as
// RetryableError, PermanentError or DeadSubscriptionError.
type PushSender interface {
	Send(ctx context.Context, sub models.PushSubscription, payload []byte) error
}

// EmailSender sends one reminder email. Failures follow the same
// classification as PushSender (minus dead subscriptions).
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
