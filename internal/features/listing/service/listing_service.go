package service

import (
	"context"
	"fmt"

	"envios-web/internal/features/listing/domain"
	"envios-web/internal/features/listing/ports"
	ordersdomain "envios-web/internal/features/orders/domain"
)

// ListingService fetches admin order pages. Filtering and paging happen server side.
type ListingService struct {
	api      ports.ListAPI
	exporter ports.Exporter
	assetURL string
}

// NewListingService creates a new ListingService. assetURL is the root of stored receipt paths.
func NewListingService(api ports.ListAPI, exporter ports.Exporter, assetURL string) *ListingService {
	return &ListingService{api: api, exporter: exporter, assetURL: assetURL}
}

// Fetch returns the page of q.
func (s *ListingService) Fetch(ctx context.Context, q domain.Query) (domain.Page, error) {
	q = q.Normalize()
	orders, total, err := s.api.List(ctx, q.Params())
	if err != nil {
		return domain.Page{}, fmt.Errorf("failed to list orders: %w", err)
	}
	return domain.NewPage(ordersdomain.NewViews(orders, s.assetURL), total, q), nil
}

// Export renders the page of q as a spreadsheet.
func (s *ListingService) Export(ctx context.Context, q domain.Query) ([]byte, error) {
	page, err := s.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.exporter.Export(page)
}
