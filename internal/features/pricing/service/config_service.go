package service

import (
	"context"
	"encoding/json"
	"fmt"

	"envios-web/internal/core/logger"
	"envios-web/internal/features/pricing/domain"
	"envios-web/internal/features/pricing/ports"

	"go.uber.org/zap"
)

// ConfigService reads and replaces the tariff configuration.
type ConfigService struct {
	api ports.ConfigAPI
	log *zap.Logger
}

// NewConfigService creates a new ConfigService.
func NewConfigService(api ports.ConfigAPI) *ConfigService {
	return &ConfigService{api: api, log: logger.Named("pricing")}
}

// Get returns the current configuration laid out for the panel.
func (s *ConfigService) Get(ctx context.Context) (domain.View, error) {
	cfg, err := s.api.Get(ctx)
	if err != nil {
		return domain.View{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return domain.NewView(cfg), nil
}

// Update validates a submitted panel and patches it wholesale. Keys the panel does not
// show are carried over from the current configuration so a save never drops them.
func (s *ConfigService) Update(ctx context.Context, raw map[string]json.RawMessage) (domain.View, error) {
	next, err := domain.ParseUpdate(raw)
	if err != nil {
		return domain.View{}, err
	}
	if err := next.Validate(); err != nil {
		return domain.View{}, err
	}

	current, err := s.api.Get(ctx)
	if err != nil {
		return domain.View{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	merged := current.Clone()
	if merged.Values == nil {
		merged.Values = map[string]float64{}
	}
	if merged.Extra == nil {
		merged.Extra = map[string]json.RawMessage{}
	}
	for k, v := range next.Values {
		merged.Values[k] = v
	}
	for k, v := range next.Extra {
		merged.Extra[k] = v
	}
	merged.Lodging = next.LodgingOrDefault()

	if err := s.api.Update(ctx, merged); err != nil {
		return domain.View{}, fmt.Errorf("configuration update failed: %w", err)
	}
	s.log.Info("Pricing configuration updated", zap.Int("fields", len(merged.Values)), zap.String("lodging", merged.Lodging))
	return domain.NewView(merged), nil
}
