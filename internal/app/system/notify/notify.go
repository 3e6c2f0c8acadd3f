// internal/app/system/notify/notify.go

// Package notify posts free-text announcements to an operator webhook
// (new users, new teams). Delivery is fire-and-forget: it runs after the
// owning transaction has committed, and failures are logged, never surfaced
// to the request that triggered them.
package notify

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const sendTimeout = 5 * time.Second

// Notifier posts messages to a single webhook URL. A Notifier with an empty
// URL is valid and drops every message, so callers never need a nil check.
type Notifier struct {
	url    string
	client *resty.Client
	log    *zap.Logger
}

// New builds a Notifier for the given webhook URL (may be empty).
func New(url string, logger *zap.Logger) *Notifier {
	return &Notifier{
		url:    url,
		client: resty.New().SetTimeout(sendTimeout),
		log:    logger,
	}
}

type message struct {
	Content string `json:"content"`
}

// Send posts content to the webhook in a background goroutine and returns
// immediately. The send deliberately does not inherit the request context:
// the request is already answered by the time delivery happens.
func (n *Notifier) Send(content string) {
	if n.url == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		resp, err := n.client.R().
			SetContext(ctx).
			SetBody(message{Content: content}).
			Post(n.url)
		if err != nil {
			n.log.Warn("webhook post failed", zap.Error(err))
			return
		}
		if resp.IsError() {
			n.log.Warn("webhook rejected message",
				zap.Int("status", resp.StatusCode()))
		}
	}()
}
