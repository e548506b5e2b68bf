package ports

import (
	"context"
	"encoding/json"

	"envios-web/internal/core/apiclient"
	listingdomain "envios-web/internal/features/listing/domain"
	"envios-web/internal/features/orders/domain"
	quotedomain "envios-web/internal/features/quote/domain"
	routingdomain "envios-web/internal/features/routing/domain"
)

// OrderAPI is the remote order resource.
type OrderAPI interface {
	// Create posts the order payload and returns the raw response.
	Create(ctx context.Context, payload map[string]any) (json.RawMessage, error)
	// ListMine returns the orders of the authenticated user.
	ListMine(ctx context.Context) ([]domain.Order, int, error)
	// ReportPayment uploads the payment evidence of an order.
	ReportPayment(ctx context.Context, orderID string, form apiclient.Form) error
	// UpdateStatus moves an order to status.
	UpdateStatus(ctx context.Context, orderID string, status domain.Status) error
	// Delete removes an order.
	Delete(ctx context.Context, orderID string) error
}

// DraftSource holds the accepted quote of a browser session.
type DraftSource interface {
	Load(ctx context.Context, sid string) (quotedomain.Draft, bool, error)
	Delete(ctx context.Context, sid string) error
}

// PlanSource exposes the route planner of a browser session.
type PlanSource interface {
	Plan(sid string) routingdomain.Plan
}

// PageFetcher reloads the admin listing after a mutation.
type PageFetcher interface {
	Fetch(ctx context.Context, q listingdomain.Query) (listingdomain.Page, error)
}

// ReceiptStore keeps compressed receipts until the payment report is sent.
type ReceiptStore interface {
	Save(ctx context.Context, sid string, r domain.Receipt) error
	Load(ctx context.Context, sid, orderID string) (domain.Receipt, bool, error)
	Delete(ctx context.Context, sid, orderID string) error
}
