package domain

import (
	"errors"
	"net/url"
	"slices"
	"strconv"
	"strings"

	ordersdomain "envios-web/internal/features/orders/domain"
)

// ErrPageOutOfRange is returned for a page outside 1..TotalPages.
var ErrPageOutOfRange = errors.New("page out of range")

// DefaultPageSize is the page size of a fresh listing.
const DefaultPageSize = 50

// PageSizes are the selectable page sizes.
var PageSizes = []int{50, 100}

// Query is the admin listing state: one page of orders under the active filters.
type Query struct {
	Page           int    `json:"page" query:"page"`
	PageSize       int    `json:"pageSize" query:"limit"`
	Status         string `json:"status,omitempty" query:"status"`
	TrackingNumber string `json:"trackingNumber,omitempty" query:"trackingNumber"`
}

// Normalize clamps the page, falls back to the default page size and trims the filters.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if !slices.Contains(PageSizes, q.PageSize) {
		q.PageSize = DefaultPageSize
	}
	q.Status = strings.TrimSpace(q.Status)
	q.TrackingNumber = strings.TrimSpace(q.TrackingNumber)
	return q
}

// Params encodes the query for GET /envios/all. Empty filters are omitted.
func (q Query) Params() url.Values {
	q = q.Normalize()
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.PageSize))
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.TrackingNumber != "" {
		v.Set("trackingNumber", q.TrackingNumber)
	}
	return v
}

// Cleared drops both filters and returns to the first page, keeping the page size.
func (q Query) Cleared() Query {
	return Query{Page: 1, PageSize: q.PageSize}.Normalize()
}

// WithStatus filters by status from the first page.
func (q Query) WithStatus(status string) Query {
	q.Status = status
	q.Page = 1
	return q.Normalize()
}

// WithSearch filters by tracking number from the first page.
func (q Query) WithSearch(tracking string) Query {
	q.TrackingNumber = tracking
	q.Page = 1
	return q.Normalize()
}

// WithPageSize changes the page size from the first page.
func (q Query) WithPageSize(size int) Query {
	q.PageSize = size
	q.Page = 1
	return q.Normalize()
}

// WithPage moves to page, which must lie within 1..totalPages.
func (q Query) WithPage(page, totalPages int) (Query, error) {
	if page < 1 || page > max(totalPages, 1) {
		return q, ErrPageOutOfRange
	}
	q.Page = page
	return q.Normalize(), nil
}

// Page is one fetched page of orders.
type Page struct {
	Items      []ordersdomain.View `json:"items"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	TotalPages int                 `json:"totalPages"`
	Query      Query               `json:"query"`
	Statuses   []StatusOption      `json:"statuses"`
}

// StatusOption is one entry of the status picklist.
type StatusOption struct {
	Value ordersdomain.Status `json:"value"`
	Label string              `json:"label"`
}

// StatusOptions lists the picklist in lifecycle order.
func StatusOptions() []StatusOption {
	out := make([]StatusOption, len(ordersdomain.Statuses))
	for i, s := range ordersdomain.Statuses {
		out[i] = StatusOption{Value: s, Label: s.Label()}
	}
	return out
}

// NewPage builds the page for q. There is always at least one page.
func NewPage(items []ordersdomain.View, total int, q Query) Page {
	q = q.Normalize()
	if items == nil {
		items = []ordersdomain.View{}
	}
	pages := (total + q.PageSize - 1) / q.PageSize
	return Page{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: max(pages, 1),
		Query:      q,
		Statuses:   StatusOptions(),
	}
}
