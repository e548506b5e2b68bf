package ports

import (
	"context"
	"net/url"

	listingdomain "envios-web/internal/features/listing/domain"
	ordersdomain "envios-web/internal/features/orders/domain"
)

// ListAPI is the paginated admin order listing.
type ListAPI interface {
	// List returns one page of orders and the total across pages.
	List(ctx context.Context, params url.Values) ([]ordersdomain.Order, int, error)
}

// Exporter renders a page for download.
type Exporter interface {
	Export(page listingdomain.Page) ([]byte, error)
}
