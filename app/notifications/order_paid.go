// Package notifications defines the admin-facing notifications sent through
// pkg/notification's channels.
package notifications

import (
	"fmt"
	"strings"

	"github.com/lumenera/backend/app/models"
	"github.com/lumenera/backend/config"
	"github.com/lumenera/backend/pkg/notification"
)

// OrderPaid tells the admin a settlement just cleared. It always mails; when
// ORDER_WEBHOOK_URL is configured it also POSTs the order as JSON.
type OrderPaid struct {
	Order models.Order
}

func (n OrderPaid) Via() []string {
	channels := []string{"mail"}
	if config.Get("ORDER_WEBHOOK_URL", "") != "" {
		channels = append(channels, "webhook")
	}
	return channels
}

func (n OrderPaid) ToMail() notification.MailData {
	var lines []string
	for _, item := range n.Order.Items {
		lines = append(lines, fmt.Sprintf("<li>%s (%s) × %d</li>", item.Name, item.Rarity, item.Quantity))
	}
	return notification.MailData{
		Subject: fmt.Sprintf("Order %s paid — $%.2f", n.Order.ID.Hex(), n.Order.Amount),
		Body: fmt.Sprintf("<p>Settlement confirmed for order <strong>%s</strong>.</p><ul>%s</ul>",
			n.Order.ID.Hex(), strings.Join(lines, "")),
	}
}

func (n OrderPaid) ToWebhook() notification.WebhookData {
	return notification.WebhookData{
		URL:     config.Get("ORDER_WEBHOOK_URL", ""),
		Payload: n.Order,
	}
}
