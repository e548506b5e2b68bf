package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"envios-web/internal/core/apiclient"
	"envios-web/internal/features/orders/domain"
)

// APIOrderAdapter implements ports.OrderAPI against the /envios resource.
type APIOrderAdapter struct {
	client *apiclient.Client
}

// NewAPIOrderAdapter creates a new adapter.
func NewAPIOrderAdapter(client *apiclient.Client) *APIOrderAdapter {
	return &APIOrderAdapter{client: client}
}

// Create posts to /envios/crearOrdenEnvio.
func (a *APIOrderAdapter) Create(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := a.client.Post(ctx, "/envios/crearOrdenEnvio", payload, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ListMine reads /envios/user in whichever list shape it comes.
func (a *APIOrderAdapter) ListMine(ctx context.Context) ([]domain.Order, int, error) {
	var raw json.RawMessage
	if err := a.client.Get(ctx, "/envios/user", nil, &raw); err != nil {
		return nil, 0, err
	}
	orders, total, err := apiclient.DecodeList[domain.Order](raw)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, total, nil
}

// ReportPayment sends the multipart payment form.
func (a *APIOrderAdapter) ReportPayment(ctx context.Context, orderID string, form apiclient.Form) error {
	return a.client.PatchMultipart(ctx, "/envios/reportarPago/"+url.PathEscape(orderID), form, nil)
}

// UpdateStatus patches the order status.
func (a *APIOrderAdapter) UpdateStatus(ctx context.Context, orderID string, status domain.Status) error {
	body := map[string]domain.Status{"status": status}
	return a.client.Patch(ctx, "/envios/actualizarEstadoOrden/"+url.PathEscape(orderID), body, nil)
}

// Delete removes the order.
func (a *APIOrderAdapter) Delete(ctx context.Context, orderID string) error {
	return a.client.Delete(ctx, "/envios/"+url.PathEscape(orderID), nil)
}
