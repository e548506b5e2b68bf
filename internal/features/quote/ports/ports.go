package ports

import (
	"context"
	"encoding/json"

	"envios-web/internal/features/quote/domain"
	routingdomain "envios-web/internal/features/routing/domain"
)

// QuoteAPI prices a shipment remotely.
type QuoteAPI interface {
	// Calculate returns the decoded result and the raw body, which order creation forwards verbatim.
	Calculate(ctx context.Context, req domain.Request) (domain.Result, json.RawMessage, error)
}

// DraftStore keeps the accepted quote of a browser session.
type DraftStore interface {
	Save(ctx context.Context, sid string, d domain.Draft) error
	Load(ctx context.Context, sid string) (domain.Draft, bool, error)
	Delete(ctx context.Context, sid string) error
}

// PlanSource exposes the route planner of a browser session.
type PlanSource interface {
	Plan(sid string) routingdomain.Plan
}
