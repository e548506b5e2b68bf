package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"envios-web/internal/core/apiclient"
	ordersdomain "envios-web/internal/features/orders/domain"
)

// APIListAdapter implements ports.ListAPI against GET /envios/all.
type APIListAdapter struct {
	client *apiclient.Client
}

// NewAPIListAdapter creates a new adapter.
func NewAPIListAdapter(client *apiclient.Client) *APIListAdapter {
	return &APIListAdapter{client: client}
}

// List fetches one page. The response shape varies between deployments, DecodeList evens it out.
func (a *APIListAdapter) List(ctx context.Context, params url.Values) ([]ordersdomain.Order, int, error) {
	var raw json.RawMessage
	if err := a.client.Get(ctx, "/envios/all", params, &raw); err != nil {
		return nil, 0, err
	}
	orders, total, err := apiclient.DecodeList[ordersdomain.Order](raw)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode order page: %w", err)
	}
	return orders, total, nil
}
