// Package notification delivers admin alerts over one or more channels.
// A notification names its channels in Via and provides a payload per
// channel it supports:
//
//	type OrderPaid struct{ Order models.Order }
//	func (n OrderPaid) Via() []string { return []string{"mail", "webhook"} }
//	func (n OrderPaid) ToMail() notification.MailData { ... }
//	func (n OrderPaid) ToWebhook() notification.WebhookData { ... }
//
//	notification.SendAsync(adminEmail, OrderPaid{Order: order})
package notification

import (
	"fmt"
	"time"

	"github.com/lumenera/backend/pkg/http"
	"github.com/lumenera/backend/pkg/logger"
	"github.com/lumenera/backend/pkg/mail"
)

// Notification names the channels to deliver through: "mail", "webhook".
type Notification interface {
	Via() []string
}

// Mailable supplies the mail channel's payload.
type Mailable interface {
	ToMail() MailData
}

// Webhookable supplies the webhook channel's payload.
type Webhookable interface {
	ToWebhook() WebhookData
}

// MailData is an HTML email for the admin inbox.
type MailData struct {
	Subject string
	Body    string
}

// WebhookData is a JSON payload POSTed to an external endpoint.
type WebhookData struct {
	URL     string
	Payload interface{}
	Headers map[string]string
}

// Send delivers n through every channel it names, addressing the mail
// channel to address. One failed channel does not stop the others.
func Send(address string, n Notification) []error {
	var errs []error
	for _, channel := range n.Via() {
		if err := deliver(address, channel, n); err != nil {
			logger.Error("notification: channel failed", "channel", channel, "error", err)
			errs = append(errs, err)
		}
	}
	return errs
}

// SendAsync delivers in a background goroutine. Failures are logged by Send.
func SendAsync(address string, n Notification) {
	go Send(address, n)
}

func deliver(address, channel string, n Notification) error {
	switch channel {
	case "mail":
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", n)
		}
		d := m.ToMail()
		return mail.To(address).Subject(d.Subject).Body(d.Body).Send()

	case "webhook":
		wh, ok := n.(Webhookable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Webhookable", n)
		}
		return postWebhook(wh.ToWebhook())

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

func postWebhook(d WebhookData) error {
	if d.URL == "" {
		return fmt.Errorf("notification: webhook URL is empty")
	}
	resp, err := http.Post(d.URL).
		Headers(d.Headers).
		Body(d.Payload).
		Timeout(10 * time.Second).
		Retry(3, time.Second).
		Send()
	if err != nil {
		return fmt.Errorf("notification: webhook send: %w", err)
	}
	if !resp.OK() {
		return fmt.Errorf("notification: webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
