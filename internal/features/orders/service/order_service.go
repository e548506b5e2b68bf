package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"envios-web/internal/core/apiclient"
	"envios-web/internal/core/clock"
	"envios-web/internal/core/imaging"
	"envios-web/internal/core/logger"
	"envios-web/internal/features/orders/domain"
	"envios-web/internal/features/orders/ports"
	quotedomain "envios-web/internal/features/quote/domain"

	"go.uber.org/zap"
)

// ErrNoDraft is returned when an order is requested without an accepted quote.
var ErrNoDraft = errors.New("no quote draft to order")

// ErrOrderNotFound is returned when the order is not among the user's orders.
var ErrOrderNotFound = errors.New("order not found")

// OrderService creates customer orders and reports their payments.
type OrderService struct {
	api      ports.OrderAPI
	drafts   ports.DraftSource
	plans    ports.PlanSource
	receipts *ReceiptService
	clock    clock.Clock
	assetURL string
	log      *zap.Logger
}

// NewOrderService creates a new OrderService. assetURL is the root of stored receipt paths.
func NewOrderService(api ports.OrderAPI, drafts ports.DraftSource, plans ports.PlanSource, receipts *ReceiptService, c clock.Clock, assetURL string) *OrderService {
	return &OrderService{
		api:      api,
		drafts:   drafts,
		plans:    plans,
		receipts: receipts,
		clock:    c,
		assetURL: assetURL,
		log:      logger.Named("orders"),
	}
}

// Create turns the accepted quote of sid into an order. The quote draft is only
// dropped once the API accepted the order, so a failure can be retried as is.
func (s *OrderService) Create(ctx context.Context, sid string) (domain.View, error) {
	draft, ok, err := s.drafts.Load(ctx, sid)
	if err != nil {
		return domain.View{}, fmt.Errorf("failed to load quote draft: %w", err)
	}
	if !ok {
		return domain.View{}, ErrNoDraft
	}

	payload, err := s.payload(sid, draft)
	if err != nil {
		return domain.View{}, err
	}

	raw, err := s.api.Create(ctx, payload)
	if err != nil {
		return domain.View{}, fmt.Errorf("order creation failed: %w", err)
	}

	if err := s.drafts.Delete(ctx, sid); err != nil {
		s.log.Warn("Failed to drop quote draft after order creation", zap.Error(err))
	}

	var order domain.Order
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &order); err != nil {
			s.log.Warn("Unexpected order creation response", zap.Error(err))
		}
	}
	if order.Status == "" {
		order.Status = domain.StatusPendingConfirmation
	}
	if order.Origin == "" {
		order.Origin, _ = payload["ruteInitial"].(string)
		order.Destination, _ = payload["ruteFinish"].(string)
	}
	if order.TotalDue == 0 {
		order.TotalDue = draft.Result.TotalDue
		order.Freight = draft.Result.Freight
	}

	s.log.Info("Order created", zap.String("order_id", order.ID.String()), zap.String("tracking", order.TrackingNumber))
	return domain.NewView(order, s.assetURL), nil
}

// payload is the raw quote result extended with the article type and the route addresses.
// Numbers keep their original representation.
func (s *OrderService) payload(sid string, draft quotedomain.Draft) (map[string]any, error) {
	payload := map[string]any{}
	if len(draft.Raw) > 0 {
		dec := json.NewDecoder(bytes.NewReader(draft.Raw))
		dec.UseNumber()
		if err := dec.Decode(&payload); err != nil {
			return nil, fmt.Errorf("stored quote is not an object: %w", err)
		}
	}

	origin, destination := draft.Origin, draft.Destination
	if o, d := s.plans.Plan(sid).Addresses(); o != "" && d != "" {
		origin, destination = o, d
	}

	payload["tipoArticulo"] = string(draft.Quote.ArticleType)
	payload["ruteInitial"] = origin
	payload["ruteFinish"] = destination
	return payload, nil
}

// ListMine returns the orders of the logged-in user.
func (s *OrderService) ListMine(ctx context.Context) ([]domain.View, int, error) {
	orders, total, err := s.api.ListMine(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return domain.NewViews(orders, s.assetURL), total, nil
}

// PaymentForm is the payment modal: the account to transfer to and the bank picklist.
type PaymentForm struct {
	OrderID     string                 `json:"orderId"`
	AmountLabel string                 `json:"amountLabel"`
	Account     domain.TransferAccount `json:"account"`
	Banks       []string               `json:"banks"`
	Receipt     ReceiptStatus          `json:"receipt"`
}

// PaymentForm prepares the payment modal of one of the user's orders.
func (s *OrderService) PaymentForm(ctx context.Context, sid, orderID string) (PaymentForm, error) {
	orders, _, err := s.api.ListMine(ctx)
	if err != nil {
		return PaymentForm{}, fmt.Errorf("failed to list orders: %w", err)
	}
	idx := slices.IndexFunc(orders, func(o domain.Order) bool { return o.ID.String() == orderID })
	if idx < 0 {
		return PaymentForm{}, ErrOrderNotFound
	}

	receipt, err := s.receipts.Status(ctx, sid, orderID)
	if err != nil {
		return PaymentForm{}, err
	}
	return PaymentForm{
		OrderID:     orderID,
		AmountLabel: domain.FormatUSD(orders[idx].TotalDue),
		Account:     domain.CompanyAccount,
		Banks:       domain.Banks,
		Receipt:     receipt,
	}, nil
}

// ReportPayment validates the report and uploads it together with the compressed receipt,
// if one was attached. The receipt is kept when the upload fails.
func (s *OrderService) ReportPayment(ctx context.Context, sid, orderID string, report domain.PaymentReport) error {
	report.Normalize()
	if err := report.Validate(s.clock.Now()); err != nil {
		return err
	}

	receipt, attached, err := s.receipts.Take(ctx, sid, orderID)
	if err != nil {
		return err
	}

	var form apiclient.Form
	form.Set("numeroTransferencia", report.ReferenceNumber)
	form.Set("fechaPago", report.PaymentDate)
	form.Set("horaPago", report.PaymentTime)
	form.Set("bancoEmisor", report.BankName)
	if attached {
		form.Files = append(form.Files, apiclient.File{
			Field:       "comprobantePago",
			Filename:    "comprobante-" + orderID + imaging.Extension(receipt.ContentType),
			ContentType: receipt.ContentType,
			Data:        receipt.Data,
		})
	}

	if err := s.api.ReportPayment(ctx, orderID, form); err != nil {
		return fmt.Errorf("payment report failed: %w", err)
	}

	if attached {
		if err := s.receipts.Remove(ctx, sid, orderID); err != nil {
			s.log.Warn("Failed to drop submitted receipt", zap.String("order_id", orderID), zap.Error(err))
		}
	}
	return nil
}
