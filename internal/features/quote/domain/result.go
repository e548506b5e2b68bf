package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Result is the server-computed cost breakdown.
type Result struct {
	Freight         float64  `json:"flete"`
	ProtectionFee   float64  `json:"proteccionEncomienda"`
	LodgingFee      *float64 `json:"costoHospedaje,omitempty"`
	Subtotal        float64  `json:"subtotal"`
	Tax             float64  `json:"iva"`
	PostalSurcharge float64  `json:"franqueoPostal"`
	TotalDue        float64  `json:"totalAPagar"`
	VehicleType     string   `json:"tipoVehiculo,omitempty"`
	VolumeM3        *float64 `json:"volumen,omitempty"`
}

// Line is one displayed amount.
type Line struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// Breakdown is the display form of a Result. Amounts are echoed, only rounded.
type Breakdown struct {
	Lines       []Line `json:"lines"`
	Total       Line   `json:"total"`
	VehicleType string `json:"vehicleType,omitempty"`
	Volume      string `json:"volume,omitempty"`
}

// FormatAmount renders v with two decimals, rounding half away from zero.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// NewBreakdown lists the result lines in display order. The lodging line only shows when priced.
func NewBreakdown(r Result) Breakdown {
	lines := []Line{
		{Label: "Flete", Amount: FormatAmount(r.Freight)},
		{Label: "Protección de Encomienda", Amount: FormatAmount(r.ProtectionFee)},
	}
	if r.LodgingFee != nil {
		lines = append(lines, Line{Label: "Costo de Hospedaje", Amount: FormatAmount(*r.LodgingFee)})
	}
	lines = append(lines,
		Line{Label: "Subtotal", Amount: FormatAmount(r.Subtotal)},
		Line{Label: "IVA", Amount: FormatAmount(r.Tax)},
		Line{Label: "Franqueo Postal", Amount: FormatAmount(r.PostalSurcharge)},
	)

	b := Breakdown{
		Lines:       lines,
		Total:       Line{Label: "Total a Pagar", Amount: FormatAmount(r.TotalDue)},
		VehicleType: r.VehicleType,
	}
	if r.VolumeM3 != nil {
		b.Volume = decimal.NewFromFloat(*r.VolumeM3).StringFixed(3)
	}
	return b
}

// Consistent reports whether the total equals subtotal + tax + postal surcharge to the cent.
// The server owns the arithmetic; a mismatch is only logged.
func (r Result) Consistent() bool {
	sum := decimal.NewFromFloat(r.Subtotal).
		Add(decimal.NewFromFloat(r.Tax)).
		Add(decimal.NewFromFloat(r.PostalSurcharge)).
		Round(2)
	return sum.Equal(decimal.NewFromFloat(r.TotalDue).Round(2))
}

// Draft is an accepted quote waiting to become an order.
type Draft struct {
	Quote       Quote           `json:"quote"`
	Result      Result          `json:"result"`
	Raw         json.RawMessage `json:"raw"`
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	CreatedAt   time.Time       `json:"createdAt"`
}
