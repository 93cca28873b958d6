// Package notification delivers outbound order notifications over a
// WhatsApp-style webhook gateway.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/stockflow/backend/internal/domain/orders"
	"github.com/stockflow/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// WhatsAppNotifier posts order notifications to a webhook gateway.
// Delivery is best-effort; callers decide how to handle failures.
type WhatsAppNotifier struct {
	client     *http.Client
	webhookURL string
	apiToken   string
	recipient  string
	logger     *zap.Logger
}

// NewWhatsAppNotifier creates a notifier from the notification configuration
func NewWhatsAppNotifier(cfg config.NotificationConfig, logger *zap.Logger) *WhatsAppNotifier {
	return &WhatsAppNotifier{
		client:     &http.Client{Timeout: cfg.Timeout},
		webhookURL: cfg.WebhookURL,
		apiToken:   cfg.APIToken,
		recipient:  cfg.Recipient,
		logger:     logger.Named("notification"),
	}
}

type webhookMessage struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// OrderCreated sends a new-order summary message
func (n *WhatsAppNotifier) OrderCreated(ctx context.Context, order *orders.Order) error {
	return n.send(ctx, formatOrderMessage(order))
}

func (n *WhatsAppNotifier) send(ctx context.Context, message string) error {
	body, err := json.Marshal(webhookMessage{To: n.recipient, Message: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+n.apiToken)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.logger.Debug("notification delivered", zap.String("to", n.recipient))
	return nil
}

// formatOrderMessage renders the plain-text order summary sent to the
// recipient
func formatOrderMessage(order *orders.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order for %s [%s]\n", order.CustomerName, order.Status)
	for i := range order.Items {
		item := &order.Items[i]
		name := item.ProductID.String()
		if item.Product != nil {
			name = fmt.Sprintf("%s (%s)", item.Product.Name, item.Product.SKU)
		}
		fmt.Fprintf(&b, "- %dx %s\n", item.Quantity, name)
	}
	return b.String()
}
