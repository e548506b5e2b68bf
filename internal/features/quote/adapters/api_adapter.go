package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"envios-web/internal/core/apiclient"
	"envios-web/internal/features/quote/domain"
)

// APIQuoteAdapter implements ports.QuoteAPI against /envios/calcularEnvio.
type APIQuoteAdapter struct {
	client *apiclient.Client
}

// NewAPIQuoteAdapter creates a new adapter.
func NewAPIQuoteAdapter(client *apiclient.Client) *APIQuoteAdapter {
	return &APIQuoteAdapter{client: client}
}

// Calculate posts the quote request.
func (a *APIQuoteAdapter) Calculate(ctx context.Context, req domain.Request) (domain.Result, json.RawMessage, error) {
	var raw json.RawMessage
	if err := a.client.Post(ctx, "/envios/calcularEnvio", req, &raw); err != nil {
		return domain.Result{}, nil, err
	}

	var result domain.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.Result{}, nil, fmt.Errorf("failed to decode quote result: %w", err)
	}
	return result, raw, nil
}
