package domain

import (
	"encoding/json"
	"testing"

	"envios-web/internal/core/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullUpdate() map[string]json.RawMessage {
	raw := map[string]json.RawMessage{}
	for _, f := range Fields {
		raw[f.Name] = json.RawMessage(`1`)
	}
	raw["porcentajeProteccion"] = json.RawMessage(`"12.5"`)
	raw["costoPorKm"] = json.RawMessage(`0.125`)
	raw[LodgingKey] = json.RawMessage(`"todos"`)
	return raw
}

func fieldMessages(t *testing.T, err error) map[string]string {
	t.Helper()
	errs, ok := validation.As(err)
	require.True(t, ok, "expected validation errors, got %v", err)
	out := map[string]string{}
	for _, fe := range errs {
		out[fe.Field] = fe.Message
	}
	return out
}

func TestFields_Schema(t *testing.T) {
	assert.Len(t, Fields, 27)
	seen := map[string]bool{}
	for _, f := range Fields {
		assert.False(t, seen[f.Name], "duplicate %s", f.Name)
		seen[f.Name] = true
		assert.Positive(t, f.Step, f.Name)
	}

	f, ok := Lookup("porcentajeProteccion")
	require.True(t, ok)
	assert.Equal(t, 100.0, f.Max)
}

func TestField_Check(t *testing.T) {
	pct, _ := Lookup("porcentajeProteccion")
	km, _ := Lookup("costoPorKm")

	assert.Empty(t, pct.Check(12.5))
	assert.Empty(t, pct.Check(0.1))
	assert.Equal(t, "debe ser mayor o igual a 0.1", pct.Check(0.05))
	assert.Equal(t, "debe ser menor o igual a 100", pct.Check(100.5))
	assert.Equal(t, "debe ser múltiplo de 0.01", pct.Check(12.345))

	assert.Empty(t, km.Check(0.125))
	assert.Equal(t, "debe ser múltiplo de 0.001", km.Check(0.1255))
	assert.Equal(t, "debe ser mayor o igual a 0", km.Check(-1))
}

func TestParseUpdate(t *testing.T) {
	raw := fullUpdate()
	raw["tarifaNueva"] = json.RawMessage(`3.5`)
	raw["nota"] = json.RawMessage(`"interna"`)

	cfg, err := ParseUpdate(raw)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 12.5, cfg.Values["porcentajeProteccion"])
	assert.Equal(t, LodgingAll, cfg.Lodging)
	assert.Equal(t, 3.5, cfg.Values["tarifaNueva"], "unknown numeric keys pass through")
	assert.JSONEq(t, `"interna"`, string(cfg.Extra["nota"]))
}

func TestParseUpdate_Rejections(t *testing.T) {
	raw := fullUpdate()
	raw["costoGasolina"] = json.RawMessage(`"abc"`)
	raw[LodgingKey] = json.RawMessage(`"NUNCA"`)
	delete(raw, "costoPeajeChuto")
	raw["costoPeajeNHR"] = json.RawMessage(`null`)

	_, err := ParseUpdate(raw)
	fields := fieldMessages(t, err)

	assert.Equal(t, "debe ser numérico", fields["costoGasolina"])
	assert.Equal(t, "debe ser uno de: EXPRESS, TODOS", fields[LodgingKey])
	assert.Equal(t, "es obligatorio", fields["costoPeajeChuto"])
	assert.Equal(t, "es obligatorio", fields["costoPeajeNHR"])
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Values: map[string]float64{"porcentajeProteccion": 150, "costoHospedaje": 10, "otra": -5}}

	fields := fieldMessages(t, cfg.Validate())
	assert.Len(t, fields, 1, "unknown keys carry no bounds")
	assert.Contains(t, fields, "porcentajeProteccion")
}

func TestConfig_JSONRoundTrip(t *testing.T) {
	var cfg Config
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"costoPorKm":0.5,"costoGasolina":"x","updatedAt":"2024-01-01"}`), &cfg))

	assert.Equal(t, LodgingExpress, cfg.LodgingOrDefault())
	assert.Equal(t, 1.0, cfg.Values["id"])
	assert.NotContains(t, cfg.Values, "costoGasolina")

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"costoPorKm":0.5,"updatedAt":"2024-01-01","aplicableHospedaje":"EXPRESS"}`, string(data))
}

func TestNewView(t *testing.T) {
	cfg := Config{Values: map[string]float64{"costoPorKm": 0.5, "extraKm": 2}, Lodging: LodgingAll}

	v := NewView(cfg)
	require.Len(t, v.Entries, len(Fields))
	assert.Equal(t, LodgingAll, v.Lodging)
	assert.Equal(t, map[string]float64{"extraKm": 2}, v.Unknown)

	for _, e := range v.Entries {
		if e.Name == "costoPorKm" {
			require.NotNil(t, e.Value)
			assert.Equal(t, 0.5, *e.Value)
		} else {
			assert.Nil(t, e.Value, e.Name)
		}
	}
}

func TestConfig_Clone(t *testing.T) {
	a := Config{Values: map[string]float64{"costoPorKm": 1}}
	b := a.Clone()
	b.Values["costoPorKm"] = 2
	assert.Equal(t, 1.0, a.Values["costoPorKm"])
}
