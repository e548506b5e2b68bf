package domain

import (
	"regexp"
	"strings"

	"envios-web/internal/core/apiclient"
)

// Customer is the owner of an order as embedded by the admin listing.
type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// Order is a shipping order as the API returns it.
type Order struct {
	ID             apiclient.ID `json:"id"`
	TrackingNumber string       `json:"trackingNumber"`
	Status         Status       `json:"status"`
	Freight        float64      `json:"flete"`
	TotalDue       float64      `json:"totalAPagar"`
	WeightKg       float64      `json:"peso,omitempty"`
	ArticleType    string       `json:"tipoArticulo,omitempty"`
	Origin         string       `json:"ruteInitial"`
	Destination    string       `json:"ruteFinish"`
	CreatedAt      string       `json:"createdAt,omitempty"`
	User           *Customer    `json:"user,omitempty"`

	ReferenceNumber string `json:"numeroTransferencia,omitempty"`
	BankName        string `json:"bancoEmisor,omitempty"`
	PaymentDate     string `json:"fechaPago,omitempty"`
	PaymentTime     string `json:"horaPago,omitempty"`
	ReceiptPath     string `json:"comprobantePago,omitempty"`
}

// HasPayment reports whether a payment was reported for the order.
func (o Order) HasPayment() bool {
	return o.ReferenceNumber != "" || o.ReceiptPath != ""
}

var repeatedSlashes = regexp.MustCompile(`([^:]/)/+`)

// ReceiptURL joins the stored receipt path to the asset root, collapsing duplicate slashes
// but keeping the scheme separator. Empty when no receipt was uploaded.
func ReceiptURL(assetURL, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return repeatedSlashes.ReplaceAllString(strings.TrimRight(assetURL, "/")+"/"+path, "$1")
}

// View is an order decorated for display.
type View struct {
	Order
	StatusLabel string `json:"statusLabel"`
	StatusTone  string `json:"statusTone"`
	Stage       Stage  `json:"stage,omitempty"`
	NeedsReview bool   `json:"needsReview"`
	CanPay      bool   `json:"canPay"`
	TotalLabel  string `json:"totalLabel"`
	ReceiptURL  string `json:"receiptUrl,omitempty"`
}

// NewView decorates o. assetURL is the root receipt paths are relative to.
func NewView(o Order, assetURL string) View {
	return View{
		Order:       o,
		StatusLabel: o.Status.Label(),
		StatusTone:  o.Status.Tone(),
		Stage:       o.Status.Stage(),
		NeedsReview: o.Status.NeedsReview(),
		CanPay:      o.Status.AcceptsPayment(),
		TotalLabel:  FormatUSD(o.TotalDue),
		ReceiptURL:  ReceiptURL(assetURL, o.ReceiptPath),
	}
}

// NewViews decorates every order.
func NewViews(orders []Order, assetURL string) []View {
	out := make([]View, len(orders))
	for i, o := range orders {
		out[i] = NewView(o, assetURL)
	}
	return out
}
