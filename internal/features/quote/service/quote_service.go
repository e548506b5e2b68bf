package service

import (
	"context"
	"errors"
	"fmt"

	"envios-web/internal/core/clock"
	"envios-web/internal/core/logger"
	"envios-web/internal/core/metrics"
	"envios-web/internal/core/validation"
	"envios-web/internal/features/quote/domain"
	"envios-web/internal/features/quote/ports"
	routingdomain "envios-web/internal/features/routing/domain"

	"go.uber.org/zap"
)

// ErrNoDraft is returned when the session has no accepted quote.
var ErrNoDraft = errors.New("no quote draft")

// Form is what the calculator submits; the distance comes from the route planner.
type Form struct {
	WeightKg         float64               `json:"weightKg"`
	DeclaredValueUsd float64               `json:"declaredValueUsd"`
	ArticleType      domain.ArticleType    `json:"articleType"`
	PackageVariant   domain.PackageVariant `json:"packageVariant"`
	ServiceTier      domain.ServiceTier    `json:"serviceTier"`
	Dimensions       *domain.Dimensions    `json:"dimensions,omitempty"`
}

// QuoteService prices the planned route and keeps the accepted result as a draft.
type QuoteService struct {
	api    ports.QuoteAPI
	drafts ports.DraftStore
	plans  ports.PlanSource
	clock  clock.Clock
	log    *zap.Logger
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(api ports.QuoteAPI, drafts ports.DraftStore, plans ports.PlanSource, c clock.Clock) *QuoteService {
	return &QuoteService{
		api:    api,
		drafts: drafts,
		plans:  plans,
		clock:  c,
		log:    logger.Named("quote"),
	}
}

// Request validates the form against the routed distance, asks the API for a price and
// stores the result. Validation failures are validation.Errors and never reach the API.
func (s *QuoteService) Request(ctx context.Context, sid string, form Form) (domain.Draft, error) {
	plan := s.plans.Plan(sid)

	q := domain.Quote{
		WeightKg:         form.WeightKg,
		DeclaredValueUsd: form.DeclaredValueUsd,
		ArticleType:      form.ArticleType,
		PackageVariant:   form.PackageVariant,
		ServiceTier:      form.ServiceTier,
		Dimensions:       form.Dimensions,
	}
	km, routeErr := plan.DistanceKm()
	q.DistanceKm = km
	q.Normalize()

	if err := s.validate(q, routeErr); err != nil {
		metrics.QuotesTotal.WithLabelValues("invalid").Inc()
		return domain.Draft{}, err
	}

	result, raw, err := s.api.Calculate(ctx, q.Request())
	if err != nil {
		metrics.QuotesTotal.WithLabelValues("error").Inc()
		return domain.Draft{}, fmt.Errorf("quote request failed: %w", err)
	}
	if !result.Consistent() {
		s.log.Warn("Quote total differs from its components",
			zap.Float64("subtotal", result.Subtotal),
			zap.Float64("iva", result.Tax),
			zap.Float64("franqueo", result.PostalSurcharge),
			zap.Float64("total", result.TotalDue),
		)
	}

	origin, destination := plan.Addresses()
	draft := domain.Draft{
		Quote:       q,
		Result:      result,
		Raw:         raw,
		Origin:      origin,
		Destination: destination,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.drafts.Save(ctx, sid, draft); err != nil {
		// The price is still shown; only order creation will need a new quote.
		s.log.Error("Failed to store quote draft", zap.Error(err))
	}

	metrics.QuotesTotal.WithLabelValues("ok").Inc()
	return draft, nil
}

// Current returns the stored draft of sid.
func (s *QuoteService) Current(ctx context.Context, sid string) (domain.Draft, error) {
	d, ok, err := s.drafts.Load(ctx, sid)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("failed to load quote draft: %w", err)
	}
	if !ok {
		return domain.Draft{}, ErrNoDraft
	}
	return d, nil
}

// Discard drops the stored draft of sid.
func (s *QuoteService) Discard(ctx context.Context, sid string) error {
	return s.drafts.Delete(ctx, sid)
}

// MoveSession hands the draft of from over to to.
func (s *QuoteService) MoveSession(ctx context.Context, from, to string) error {
	d, ok, err := s.drafts.Load(ctx, from)
	if err != nil {
		return fmt.Errorf("failed to load quote draft: %w", err)
	}
	if !ok {
		return nil
	}
	if err := s.drafts.Save(ctx, to, d); err != nil {
		return fmt.Errorf("failed to save quote draft: %w", err)
	}
	return s.drafts.Delete(ctx, from)
}

func (s *QuoteService) validate(q domain.Quote, routeErr error) error {
	var errs validation.Errors
	if err := validation.Struct(q); err != nil {
		fieldErrs, ok := validation.As(err)
		if !ok {
			return err
		}
		errs = fieldErrs
	}

	if errors.Is(routeErr, routingdomain.ErrNoRoute) {
		// Replace the generic distance message with one the user can act on.
		kept := errs[:0]
		for _, fe := range errs {
			if fe.Field != "distanceKm" {
				kept = append(kept, fe)
			}
		}
		errs = kept
		errs.Add("distanceKm", "selecciona el origen y el destino en el mapa")
	}
	return errs.Err()
}
