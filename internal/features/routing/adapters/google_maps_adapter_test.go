package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"envios-web/internal/core/config"
	"envios-web/internal/features/routing/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdapter(t *testing.T, handler http.HandlerFunc) (*GoogleMapsAdapter, *[]url.Values) {
	t.Helper()
	var queries []url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := config.MapsConfig{APIKey: "k", BaseURL: srv.URL, Region: "VE", Language: "es"}
	a, err := NewGoogleMapsAdapter(cfg, srv.Client())
	require.NoError(t, err)
	return a, &queries
}

const token = "6b1c8a86-4a43-4f0e-9f5e-2d1c37e0a111"

func TestNewGoogleMapsAdapter_RequiresKey(t *testing.T) {
	_, err := NewGoogleMapsAdapter(config.MapsConfig{BaseURL: "http://localhost"}, http.DefaultClient)
	assert.Error(t, err)
}

func TestGoogleMapsAdapter_ReverseGeocode(t *testing.T) {
	a, queries := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"Av. Urdaneta, Caracas"}]}`))
	})

	addr, err := a.ReverseGeocode(context.Background(), domain.LatLng{Lat: 10.5, Lng: -66.91})
	require.NoError(t, err)

	assert.Equal(t, "Av. Urdaneta, Caracas", addr)
	assert.Equal(t, "10.5,-66.91", (*queries)[0].Get("latlng"))
	assert.Equal(t, "k", (*queries)[0].Get("key"))
}

func TestGoogleMapsAdapter_Directions(t *testing.T) {
	a, queries := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","routes":[{"overview_polyline":{"points":"_p~iF"},"legs":[{"distance":{"value":50000},"duration":{"value":3600}}]}]}`))
	})

	route, err := a.Directions(context.Background(), domain.LatLng{Lat: 1, Lng: 2}, domain.LatLng{Lat: 3, Lng: 4})
	require.NoError(t, err)

	assert.Equal(t, 50000, route.DistanceMeters)
	assert.InDelta(t, 50.0, route.DistanceKm, 1e-9)
	assert.Equal(t, 3600, route.DurationSeconds)
	assert.Equal(t, "_p~iF", route.Polyline)
	assert.Equal(t, "driving", (*queries)[0].Get("mode"))
	assert.Equal(t, "es", (*queries)[0].Get("language"))
	assert.Equal(t, "1,2", (*queries)[0].Get("origin"))
	assert.Equal(t, "3,4", (*queries)[0].Get("destination"))
}

func TestGoogleMapsAdapter_Directions_ZeroResults(t *testing.T) {
	a, _ := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","routes":[]}`))
	})

	_, err := a.Directions(context.Background(), domain.LatLng{}, domain.LatLng{})
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestGoogleMapsAdapter_ProviderError(t *testing.T) {
	a, _ := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`))
	})

	_, err := a.ReverseGeocode(context.Background(), domain.LatLng{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestGoogleMapsAdapter_HTTPError(t *testing.T) {
	a, _ := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := a.PlaceDetails(context.Background(), "p", token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoResults)
}

func TestGoogleMapsAdapter_Autocomplete(t *testing.T) {
	var r0path string
	a, queries := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		r0path = r.URL.Path
		_, _ = w.Write([]byte(`{"status":"OK","predictions":[{"place_id":"abc","description":"Altamira, Caracas, Venezuela"}]}`))
	})

	preds, err := a.Autocomplete(context.Background(), "Altamira", token)
	require.NoError(t, err)

	require.Len(t, preds, 1)
	assert.Equal(t, "abc", preds[0].PlaceID)
	assert.Equal(t, "/maps/api/place/autocomplete/json", r0path)
	assert.Equal(t, "Altamira", (*queries)[0].Get("input"))
	assert.Equal(t, "country:ve", (*queries)[0].Get("components"))
	assert.Equal(t, token, (*queries)[0].Get("sessiontoken"))
}

func TestGoogleMapsAdapter_Autocomplete_ZeroResults(t *testing.T) {
	a, _ := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","predictions":[]}`))
	})

	preds, err := a.Autocomplete(context.Background(), "zzzz", token)
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestGoogleMapsAdapter_PlaceDetails(t *testing.T) {
	a, _ := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/place/details/json", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"OK","result":{"formatted_address":"Plaza Venezuela","geometry":{"location":{"lat":10.5,"lng":-66.88}}}}`))
	})

	place, err := a.PlaceDetails(context.Background(), "pv", token)
	require.NoError(t, err)

	assert.Equal(t, "pv", place.PlaceID)
	assert.Equal(t, "Plaza Venezuela", place.Address)
	assert.Equal(t, domain.LatLng{Lat: 10.5, Lng: -66.88}, place.Location)
}
