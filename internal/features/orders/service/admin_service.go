package service

import (
	"context"
	"errors"
	"fmt"

	"envios-web/internal/core/logger"
	"envios-web/internal/core/validation"
	listingdomain "envios-web/internal/features/listing/domain"
	"envios-web/internal/features/orders/domain"
	"envios-web/internal/features/orders/ports"

	"go.uber.org/zap"
)

// DeleteConfirmation is the question a delete must be confirmed against.
const DeleteConfirmation = "¿Estás seguro de que deseas eliminar esta orden?"

var (
	// ErrConfirmationRequired is returned for a delete that was not confirmed.
	ErrConfirmationRequired = errors.New("delete not confirmed")
	// ErrRefreshFailed wraps a listing reload that failed after a successful mutation.
	ErrRefreshFailed = errors.New("listing refresh failed")
)

// AdminService applies admin mutations and reloads the page the admin is looking at.
// The list is never patched locally; it always reflects what the API returns afterwards.
type AdminService struct {
	api   ports.OrderAPI
	pages ports.PageFetcher
	log   *zap.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(api ports.OrderAPI, pages ports.PageFetcher) *AdminService {
	return &AdminService{api: api, pages: pages, log: logger.Named("orders.admin")}
}

// UpdateStatus moves orderID to status and returns the reloaded page of q.
func (s *AdminService) UpdateStatus(ctx context.Context, orderID string, status domain.Status, q listingdomain.Query) (listingdomain.Page, error) {
	if !status.Known() {
		var errs validation.Errors
		errs.Add("status", "no es un estado válido")
		return listingdomain.Page{}, errs
	}
	if err := s.api.UpdateStatus(ctx, orderID, status); err != nil {
		return listingdomain.Page{}, fmt.Errorf("status update failed: %w", err)
	}
	s.log.Info("Order status updated", zap.String("order_id", orderID), zap.String("status", string(status)))
	return s.reload(ctx, q)
}

// Delete removes orderID once confirmed and returns the reloaded page of q.
func (s *AdminService) Delete(ctx context.Context, orderID string, confirmed bool, q listingdomain.Query) (listingdomain.Page, error) {
	if !confirmed {
		return listingdomain.Page{}, ErrConfirmationRequired
	}
	if err := s.api.Delete(ctx, orderID); err != nil {
		return listingdomain.Page{}, fmt.Errorf("delete failed: %w", err)
	}
	s.log.Info("Order deleted", zap.String("order_id", orderID))
	return s.reload(ctx, q)
}

func (s *AdminService) reload(ctx context.Context, q listingdomain.Query) (listingdomain.Page, error) {
	page, err := s.pages.Fetch(ctx, q)
	if err != nil {
		return listingdomain.Page{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return page, nil
}
