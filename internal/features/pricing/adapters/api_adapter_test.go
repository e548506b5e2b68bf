package adapters

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"envios-web/internal/core/apiclient"
	"envios-web/internal/features/pricing/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIConfigAdapter(t *testing.T) {
	var patched map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/envios/configuracion", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"costoPorKm":0.5,"aplicableHospedaje":"TODOS","tarifaNueva":2}`))
		case http.MethodPatch:
			body, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(body, &patched))
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	a := NewAPIConfigAdapter(apiclient.New(srv.URL, "x_header_access_token", srv.Client()))

	cfg, err := a.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Values["costoPorKm"])
	assert.Equal(t, domain.LodgingAll, cfg.Lodging)

	cfg.Values["costoPorKm"] = 0.75
	require.NoError(t, a.Update(context.Background(), cfg))
	assert.Equal(t, 0.75, patched["costoPorKm"])
	assert.Equal(t, 2.0, patched["tarifaNueva"])
	assert.Equal(t, "TODOS", patched["aplicableHospedaje"])
}
