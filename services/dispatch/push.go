package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"yogatrack/models"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// WebPushSender implements PushSender over the Web Push protocol with VAPID
// authentication.
type WebPushSender struct {
	PublicKey  string
	PrivateKey string
	Subscriber string
	TTL        int
}

// Send delivers the payload to one subscription and classifies the outcome
// from the push service's status code.
func (s *WebPushSender) Send(ctx context.Context, sub models.PushSubscription, payload []byte) error {
	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, target, &webpush.Options{
		Subscriber:      s.Subscriber,
		VAPIDPublicKey:  s.PublicKey,
		VAPIDPrivateKey: s.PrivateKey,
		TTL:             s.TTL,
	})
	if err != nil {
		// Transport-level failure: the push service was never reached.
		return &RetryableError{Err: fmt.Errorf("push send to %s: %w", sub.Endpoint, err)}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return &DeadSubscriptionError{
			Endpoint: sub.Endpoint,
			Err:      fmt.Errorf("push service returned %d", resp.StatusCode),
		}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &RetryableError{Err: fmt.Errorf("push service returned %d for %s", resp.StatusCode, sub.Endpoint)}
	default:
		// 400, 401, 403, 413: the request itself is wrong; retrying the same
		// payload cannot succeed.
		return &PermanentError{Err: fmt.Errorf("push service returned %d for %s", resp.StatusCode, sub.Endpoint)}
	}
}
