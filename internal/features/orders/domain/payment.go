package domain

import (
	"slices"
	"strings"
	"time"

	"envios-web/internal/core/validation"

	"github.com/shopspring/decimal"
)

// Banks is the issuing bank picklist of the payment form.
var Banks = []string{
	"Banco de Venezuela",
	"Banesco",
	"Mercantil",
	"Provincial",
	"Bicentenario",
	"Exterior",
	"Activo",
	"Caroní",
	"Plaza",
	"Sofitasa",
	"Otro",
}

// TransferAccount is where customers send the payment.
type TransferAccount struct {
	Bank    string `json:"bank"`
	Account string `json:"account"`
	Holder  string `json:"holder"`
}

// CompanyAccount is shown next to the payment form.
var CompanyAccount = TransferAccount{
	Bank:    "Banco Mercantil",
	Account: "0105-0123-45-1234567890",
	Holder:  "Empresa de Envíos C.A.",
}

// PaymentReport is the transfer evidence a customer submits for an order.
type PaymentReport struct {
	ReferenceNumber string `json:"numeroTransferencia" validate:"required"`
	PaymentDate     string `json:"fechaPago" validate:"required,datetime=2006-01-02"`
	PaymentTime     string `json:"horaPago" validate:"required,datetime=15:04"`
	BankName        string `json:"bancoEmisor" validate:"required"`
}

// Normalize trims the free-text fields.
func (p *PaymentReport) Normalize() {
	p.ReferenceNumber = strings.TrimSpace(p.ReferenceNumber)
	p.PaymentDate = strings.TrimSpace(p.PaymentDate)
	p.PaymentTime = strings.TrimSpace(p.PaymentTime)
	p.BankName = strings.TrimSpace(p.BankName)
}

// Validate checks the required fields, the bank picklist and that the payment is not
// dated after today in the location of now.
func (p PaymentReport) Validate(now time.Time) error {
	var errs validation.Errors
	if err := validation.Struct(p); err != nil {
		fieldErrs, ok := validation.As(err)
		if !ok {
			return err
		}
		errs = fieldErrs
	}

	if p.BankName != "" && !slices.Contains(Banks, p.BankName) {
		errs.Add("bancoEmisor", "no es un banco de la lista")
	}
	if d, err := time.ParseInLocation("2006-01-02", p.PaymentDate, now.Location()); err == nil {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if d.After(today) {
			errs.Add("fechaPago", "no puede ser posterior a hoy")
		}
	}
	return errs.Err()
}

// FormatUSD renders the amount due the way the payment form shows it.
func FormatUSD(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + " USD"
}
