package notification

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"resource-booking-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore is the push subscription persistence the channel needs.
type SubscriptionStore interface {
	ListStaffPushSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error
}

// PushChannel delivers broadcast payloads to staff browsers over web push.
type PushChannel struct {
	subs    SubscriptionStore
	options *webpush.Options
	sender  NotificationSender
}

// NewPushChannel creates a push channel using the real webpush sender.
func NewPushChannel(subs SubscriptionStore, options *webpush.Options) *PushChannel {
	return &PushChannel{subs: subs, options: options, sender: &WebPushSender{}}
}

// Send pushes payload to every staff subscription and returns how many were accepted.
// Subscriptions reported as gone (HTTP 410) are deleted.
func (p *PushChannel) Send(ctx context.Context, logger *slog.Logger, payload []byte) int {
	subscriptions, err := p.subs.ListStaffPushSubscriptions(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to fetch push subscriptions", "error", err)
		return 0
	}

	sent := 0
	for _, sub := range subscriptions {
		if p.sendOne(ctx, logger, sub, payload) {
			sent++
		}
	}
	return sent
}

func (p *PushChannel) sendOne(ctx context.Context, logger *slog.Logger, sub model.PushSubscription, payload []byte) bool {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := p.sender.Send(payload, wpSub, p.options)
	if err != nil {
		logger.WarnContext(ctx, "failed to send push notification", "endpoint", sub.Endpoint, "error", err)
		return false
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		logger.InfoContext(ctx, "push subscription expired, deleting", "endpoint", sub.Endpoint)
		if err := p.subs.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
			logger.ErrorContext(ctx, "failed to delete expired subscription", "endpoint", sub.Endpoint, "error", err)
		}
		return false
	}
	return resp.StatusCode < http.StatusBadRequest
}
