package ports

import (
	"context"

	"envios-web/internal/features/pricing/domain"
)

// ConfigAPI is the remote tariff configuration.
type ConfigAPI interface {
	Get(ctx context.Context) (domain.Config, error)
	// Update replaces the whole bag.
	Update(ctx context.Context, cfg domain.Config) error
}
