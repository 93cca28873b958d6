// Package marketplace integrates external sales channels.
package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/stockflow/backend/internal/infrastructure/config"
)

// RemoteItem is one product line on a marketplace order, referenced by SKU
type RemoteItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// RemoteOrder is an order fetched from a marketplace channel. BuyerName may
// be empty when the channel withholds buyer details.
type RemoteOrder struct {
	ExternalID string       `json:"order_id"`
	BuyerName  string       `json:"buyer_name"`
	Items      []RemoteItem `json:"items"`
}

// Client fetches orders from an external sales channel
type Client interface {
	// FetchRecentOrders returns the most recent orders, capped at limit.
	FetchRecentOrders(ctx context.Context, limit int) ([]RemoteOrder, error)
}

// AmazonClient implements Client against the seller API gateway
type AmazonClient struct {
	client   *http.Client
	baseURL  string
	apiToken string
}

// NewAmazonClient creates a client from the sync configuration
func NewAmazonClient(cfg config.SyncConfig) *AmazonClient {
	return &AmazonClient{
		client:   &http.Client{Timeout: cfg.FetchTimeout},
		baseURL:  cfg.BaseURL,
		apiToken: cfg.APIToken,
	}
}

// FetchRecentOrders retrieves the latest orders from the gateway
func (c *AmazonClient) FetchRecentOrders(ctx context.Context, limit int) ([]RemoteOrder, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders", nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("limit", strconv.Itoa(limit))
	req.URL.RawQuery = q.Encode()
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("marketplace returned status %d", resp.StatusCode)
	}

	var payload struct {
		Orders []RemoteOrder `json:"orders"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode marketplace response: %w", err)
	}
	return payload.Orders, nil
}
