package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"envios-web/internal/core/validation"

	"github.com/shopspring/decimal"
)

// LodgingKey names the lodging applicability selector.
const LodgingKey = "aplicableHospedaje"

// Lodging applicability values.
const (
	LodgingExpress = "EXPRESS"
	LodgingAll     = "TODOS"
)

// Group is a tab of the configuration panel.
type Group string

const (
	GroupGeneral   Group = "general"
	GroupLodging   Group = "hospedaje"
	GroupFuel      Group = "consumo"
	GroupTolls     Group = "peajes"
	GroupConstants Group = "constantes"
)

// Field describes one numeric tariff parameter. A zero Max means unbounded.
type Field struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Group Group   `json:"group"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max,omitempty"`
	Step  float64 `json:"step"`
}

// Option is one choice of a select.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// LodgingOptions are the choices of the lodging selector.
var LodgingOptions = []Option{
	{Value: LodgingExpress, Label: "Solo envíos Express"},
	{Value: LodgingAll, Label: "Todos los envíos"},
}

// Fields is the schema of the known tariff parameters, in panel order.
var Fields = []Field{
	{Name: "porcentajeProteccion", Label: "Porcentaje de protección (%)", Group: GroupGeneral, Min: 0.1, Max: 100, Step: 0.01},
	{Name: "proteccionMinima", Label: "Protección mínima ($)", Group: GroupGeneral, Step: 0.1},
	{Name: "franqueoPostal", Label: "Franqueo Postal ($)", Group: GroupGeneral, Step: 0.1},
	{Name: "costoPorKm", Label: "Costo por Km", Group: GroupGeneral, Step: 0.001},
	{Name: "costoGasolina", Label: "Costo por Gasolina ($)", Group: GroupGeneral, Step: 0.01},

	{Name: "costoHospedaje", Label: "Costo de Hospedaje ($)", Group: GroupLodging, Step: 0.1},

	{Name: "consumoSusukiEECO", Label: "Susuki EECO", Group: GroupFuel, Step: 0.01},
	{Name: "consumoMitsubishiL300", Label: "Mitsubishi L300", Group: GroupFuel, Step: 0.01},
	{Name: "consumoNHR", Label: "NHR", Group: GroupFuel, Step: 0.01},
	{Name: "consumoCanterCavaCorta", Label: "Canter Cava Corta", Group: GroupFuel, Step: 0.01},
	{Name: "consumoCanterCavaLarga", Label: "Canter Cava Larga", Group: GroupFuel, Step: 0.01},

	{Name: "costoPeajeSusuki", Label: "Susuki ($)", Group: GroupTolls, Step: 0.1},
	{Name: "costoPeajeL300", Label: "L300 ($)", Group: GroupTolls, Step: 0.1},
	{Name: "costoPeajeNHR", Label: "NHR - Cava Pequeña ($)", Group: GroupTolls, Step: 0.1},
	{Name: "costoPeajeCanterCorta", Label: "Canter - Cava Pequeña ($)", Group: GroupTolls, Step: 0.1},
	{Name: "costoPeajeCanterLarga", Label: "Canter - Cava Larga ($)", Group: GroupTolls, Step: 0.1},
	{Name: "costoPeajePlatforma", Label: "Canter - Plataforma ($)", Group: GroupTolls, Step: 0.1},
	{Name: "costoPeajePitman", Label: "Codiak - Pitman ($)", Group: GroupTolls, Step: 0.1},
	{Name: "costoPeajeChuto", Label: "CHUTO Freightliner ($)", Group: GroupTolls, Step: 0.1},

	{Name: "constP1Hasta100Km", Label: "Constante P1 (hasta 100 Km)", Group: GroupConstants, Step: 0.01},
	{Name: "constP2Hasta100Km", Label: "Constante P2 (hasta 100 Km)", Group: GroupConstants, Step: 0.01},
	{Name: "constP1Hasta250Km", Label: "Constante P1 (hasta 250 Km)", Group: GroupConstants, Step: 0.01},
	{Name: "constP2Hasta250Km", Label: "Constante P2 (hasta 250 Km)", Group: GroupConstants, Step: 0.01},
	{Name: "constP1Hasta600Km", Label: "Constante P1 (hasta 600 Km)", Group: GroupConstants, Step: 0.01},
	{Name: "constP2Hasta600Km", Label: "Constante P2 (hasta 600 Km)", Group: GroupConstants, Step: 0.01},
	{Name: "constP1Desde600Km", Label: "Constante P1 (desde 600 Km)", Group: GroupConstants, Step: 0.01},
	{Name: "constP2Desde600Km", Label: "Constante P2 (desde 600 Km)", Group: GroupConstants, Step: 0.01},
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		m[f.Name] = f
	}
	return m
}()

// Lookup returns the schema of a known field.
func Lookup(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// Check validates v against the field bounds. The step is counted from Min, as a number
// input does.
func (f Field) Check(v float64) string {
	if v < f.Min {
		return fmt.Sprintf("debe ser mayor o igual a %s", fmtNum(f.Min))
	}
	if f.Max > 0 && v > f.Max {
		return fmt.Sprintf("debe ser menor o igual a %s", fmtNum(f.Max))
	}
	if f.Step > 0 {
		offset := decimal.NewFromFloat(v).Sub(decimal.NewFromFloat(f.Min))
		if !offset.Mod(decimal.NewFromFloat(f.Step)).IsZero() {
			return fmt.Sprintf("debe ser múltiplo de %s", fmtNum(f.Step))
		}
	}
	return ""
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Config is the tariff bag of /envios/configuracion. Numeric parameters live in Values
// whether or not the schema knows them; any other unknown key is kept verbatim.
type Config struct {
	Values  map[string]float64
	Lodging string
	Extra   map[string]json.RawMessage
}

// UnmarshalJSON splits the flat API object.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cfg, errs := parse(raw, false)
	if err := errs.Err(); err != nil {
		return err
	}
	*c = cfg
	return nil
}

// MarshalJSON writes the flat object the API expects.
func (c Config) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Values)+len(c.Extra)+1)
	for k, v := range c.Extra {
		out[k] = v
	}
	for k, v := range c.Values {
		out[k] = v
	}
	out[LodgingKey] = c.LodgingOrDefault()
	return json.Marshal(out)
}

// LodgingOrDefault returns the lodging selector, EXPRESS when unset.
func (c Config) LodgingOrDefault() string {
	if c.Lodging == "" {
		return LodgingExpress
	}
	return c.Lodging
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	return Config{Values: maps.Clone(c.Values), Lodging: c.Lodging, Extra: maps.Clone(c.Extra)}
}

// ParseUpdate reads a submitted panel. Every known field is required and must be numeric;
// numeric strings are accepted since form inputs post text. Bounds are checked by Validate.
func ParseUpdate(raw map[string]json.RawMessage) (Config, error) {
	cfg, errs := parse(raw, true)
	for _, f := range Fields {
		if _, ok := cfg.Values[f.Name]; !ok && !hasField(errs, f.Name) {
			errs.Add(f.Name, "es obligatorio")
		}
	}
	return cfg, errs.Err()
}

func hasField(errs validation.Errors, name string) bool {
	for _, fe := range errs {
		if fe.Field == name {
			return true
		}
	}
	return false
}

// parse sorts raw into the three parts of a Config. With strict set, non-numeric known
// fields and unknown lodging values are reported; otherwise they are tolerated.
func parse(raw map[string]json.RawMessage, strict bool) (Config, validation.Errors) {
	cfg := Config{Values: map[string]float64{}, Extra: map[string]json.RawMessage{}}
	var errs validation.Errors

	for k, v := range raw {
		if k == LodgingKey {
			var s string
			_ = json.Unmarshal(v, &s)
			s = strings.ToUpper(strings.TrimSpace(s))
			switch {
			case s == LodgingExpress || s == LodgingAll:
				cfg.Lodging = s
			case strict && s != "":
				errs.Add(LodgingKey, "debe ser uno de: EXPRESS, TODOS")
			}
			continue
		}

		n, ok := number(v)
		_, known := fieldsByName[k]
		switch {
		case ok:
			cfg.Values[k] = n
		case known && strict && !isNull(v):
			errs.Add(k, "debe ser numérico")
		case known:
		default:
			cfg.Extra[k] = v
		}
	}
	return cfg, errs
}

func number(v json.RawMessage) (float64, bool) {
	if isNull(v) {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return n, err == nil
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// Validate checks every known field present in c against its bounds.
func (c Config) Validate() error {
	var errs validation.Errors
	for _, f := range Fields {
		v, ok := c.Values[f.Name]
		if !ok {
			continue
		}
		if msg := f.Check(v); msg != "" {
			errs.Add(f.Name, msg)
		}
	}
	return errs.Err()
}

// Entry is one schema field with its current value.
type Entry struct {
	Field
	Value *float64 `json:"value"`
}

// View is what the configuration panel renders.
type View struct {
	Entries        []Entry                    `json:"entries"`
	Lodging        string                     `json:"aplicableHospedaje"`
	LodgingOptions []Option                   `json:"lodgingOptions"`
	Extra          map[string]json.RawMessage `json:"extra,omitempty"`
	Unknown        map[string]float64         `json:"unknown,omitempty"`
}

// NewView lays c out along the schema. Numeric keys the schema does not know are listed
// apart so the panel can still show them.
func NewView(c Config) View {
	v := View{Lodging: c.LodgingOrDefault(), LodgingOptions: LodgingOptions, Extra: c.Extra}
	for _, f := range Fields {
		e := Entry{Field: f}
		if n, ok := c.Values[f.Name]; ok {
			e.Value = &n
		}
		v.Entries = append(v.Entries, e)
	}
	for k, n := range c.Values {
		if _, known := fieldsByName[k]; !known {
			if v.Unknown == nil {
				v.Unknown = map[string]float64{}
			}
			v.Unknown[k] = n
		}
	}
	return v
}
