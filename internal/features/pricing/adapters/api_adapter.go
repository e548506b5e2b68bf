package adapters

import (
	"context"

	"envios-web/internal/core/apiclient"
	"envios-web/internal/features/pricing/domain"
)

const configPath = "/envios/configuracion"

// APIConfigAdapter implements ports.ConfigAPI against /envios/configuracion.
type APIConfigAdapter struct {
	client *apiclient.Client
}

// NewAPIConfigAdapter creates a new adapter.
func NewAPIConfigAdapter(client *apiclient.Client) *APIConfigAdapter {
	return &APIConfigAdapter{client: client}
}

// Get reads the tariff bag.
func (a *APIConfigAdapter) Get(ctx context.Context) (domain.Config, error) {
	var cfg domain.Config
	if err := a.client.Get(ctx, configPath, nil, &cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// Update patches the whole bag.
func (a *APIConfigAdapter) Update(ctx context.Context, cfg domain.Config) error {
	return a.client.Patch(ctx, configPath, cfg, nil)
}
