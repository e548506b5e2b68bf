package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBreakdown_Scenario(t *testing.T) {
	var r Result
	require.NoError(t, json.Unmarshal([]byte(`{"flete":5,"proteccionEncomienda":1,"subtotal":6,"iva":0.6,"franqueoPostal":0.5,"totalAPagar":7.1}`), &r))

	b := NewBreakdown(r)

	assert.Equal(t, []Line{
		{Label: "Flete", Amount: "5.00"},
		{Label: "Protección de Encomienda", Amount: "1.00"},
		{Label: "Subtotal", Amount: "6.00"},
		{Label: "IVA", Amount: "0.60"},
		{Label: "Franqueo Postal", Amount: "0.50"},
	}, b.Lines)
	assert.Equal(t, Line{Label: "Total a Pagar", Amount: "7.10"}, b.Total)
	assert.Empty(t, b.VehicleType)
	assert.Empty(t, b.Volume)
	assert.True(t, r.Consistent())
}

func TestNewBreakdown_PackageExtras(t *testing.T) {
	lodging, volume := 12.5, 0.0125
	r := Result{
		Freight: 40, ProtectionFee: 2, LodgingFee: &lodging, Subtotal: 54.5, Tax: 8.72,
		PostalSurcharge: 1, TotalDue: 64.22, VehicleType: "Camioneta", VolumeM3: &volume,
	}

	b := NewBreakdown(r)

	require.Len(t, b.Lines, 6)
	assert.Equal(t, Line{Label: "Costo de Hospedaje", Amount: "12.50"}, b.Lines[2])
	assert.Equal(t, "Camioneta", b.VehicleType)
	assert.Equal(t, "0.013", b.Volume)
	assert.True(t, r.Consistent())
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "7.10", FormatAmount(7.1))
	assert.Equal(t, "1.01", FormatAmount(1.005))
	assert.Equal(t, "2.35", FormatAmount(2.345))
	assert.Equal(t, "-2.35", FormatAmount(-2.345))
	assert.Equal(t, "1234.57", FormatAmount(1234.5678))
}

func TestResult_Consistent(t *testing.T) {
	assert.False(t, Result{Subtotal: 6, Tax: 0.6, PostalSurcharge: 0.5, TotalDue: 7.2}.Consistent())
}
