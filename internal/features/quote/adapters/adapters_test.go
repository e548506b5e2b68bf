package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"envios-web/internal/core/apiclient"
	"envios-web/internal/core/cache"
	"envios-web/internal/features/quote/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIQuoteAdapter_Calculate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/envios/calcularEnvio", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"flete":5,"proteccionEncomienda":1,"subtotal":6,"iva":0.6,"franqueoPostal":0.5,"totalAPagar":7.1,"distancia":50}`))
	}))
	defer srv.Close()

	a := NewAPIQuoteAdapter(apiclient.New(srv.URL, "x_header_access_token", srv.Client()))
	result, raw, err := a.Calculate(context.Background(), domain.Request{Distancia: 50, Peso: 1, TipoArticulo: "Documentos", ValorDeclarado: 20, EsSobre: true})
	require.NoError(t, err)

	assert.Equal(t, 7.1, result.TotalDue)
	assert.Nil(t, result.LodgingFee)
	assert.Contains(t, string(raw), `"distancia":50`)
	assert.Equal(t, 50.0, got["distancia"])
	assert.NotContains(t, got, "ancho")
}

func TestAPIQuoteAdapter_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Peso excede el máximo"}`))
	}))
	defer srv.Close()

	a := NewAPIQuoteAdapter(apiclient.New(srv.URL, "x_header_access_token", srv.Client()))
	_, _, err := a.Calculate(context.Background(), domain.Request{})

	require.Error(t, err)
	assert.Equal(t, "Peso excede el máximo", apiclient.MessageOr(err, ""))
}

func TestRedisDraftStore(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	store := NewRedisDraftStore(c, time.Hour)
	ctx := context.Background()

	_, ok, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, ok)

	draft := domain.Draft{
		Quote:  domain.Quote{DistanceKm: 50, WeightKg: 1},
		Result: domain.Result{TotalDue: 7.1},
		Raw:    json.RawMessage(`{"totalAPagar":7.1}`),
		Origin: "Caracas",
	}
	require.NoError(t, store.Save(ctx, "sid", draft))
	assert.Equal(t, time.Hour, mr.TTL("quote:sid"))

	loaded, ok, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Caracas", loaded.Origin)
	assert.Equal(t, 7.1, loaded.Result.TotalDue)
	assert.JSONEq(t, `{"totalAPagar":7.1}`, string(loaded.Raw))

	require.NoError(t, store.Delete(ctx, "sid"))
	assert.False(t, mr.Exists("quote:sid"))
}
