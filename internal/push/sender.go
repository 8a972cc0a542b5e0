package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/amoralabs/amora-backend/internal/models"
)

// ErrEndpointGone marks a permanent transport rejection: the endpoint no
// longer exists and its subscription row should be pruned.
var ErrEndpointGone = errors.New("push endpoint gone")

// Sender delivers one payload to one endpoint.
type Sender interface {
	Send(ctx context.Context, sub models.PushSubscription, body []byte) error
}

// WebPushSender sends through the Web Push protocol with VAPID auth.
type WebPushSender struct {
	keys       VAPIDKeys
	subscriber string
	ttl        int
}

func NewWebPushSender(keys VAPIDKeys, subscriber string) *WebPushSender {
	if subscriber == "" {
		subscriber = "mailto:push@amora.app"
	}
	return &WebPushSender{
		keys:       keys,
		subscriber: subscriber,
		ttl:        60,
	}
}

func (s *WebPushSender) Send(ctx context.Context, sub models.PushSubscription, body []byte) error {
	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, target, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.keys.Public,
		VAPIDPrivateKey: s.keys.Private,
		TTL:             s.ttl,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("endpoint %s: %w", sub.Endpoint, ErrEndpointGone)
	case resp.StatusCode >= 400:
		return fmt.Errorf("push transport rejected with status %d", resp.StatusCode)
	}
	return nil
}
