package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"envios-web/internal/core/config"
	"envios-web/internal/features/routing/domain"

	"github.com/google/uuid"
	"googlemaps.github.io/maps"
)

// ErrNoResults is returned when the provider answered ZERO_RESULTS.
var ErrNoResults = errors.New("maps provider returned no results")

var detailFields = []maps.PlaceDetailsFieldMask{
	maps.PlaceDetailsFieldMaskFormattedAddress,
	maps.PlaceDetailsFieldMaskGeometry,
}

// GoogleMapsAdapter implements ports.MapsProvider with the Google Maps web services.
type GoogleMapsAdapter struct {
	// client is the Maps SDK client, running on the logging HTTP client.
	client *maps.Client
	// config holds the region and language of every request.
	config config.MapsConfig
}

// NewGoogleMapsAdapter creates a new instance of GoogleMapsAdapter.
func NewGoogleMapsAdapter(cfg config.MapsConfig, httpClient *http.Client) (*GoogleMapsAdapter, error) {
	opts := []maps.ClientOption{
		maps.WithAPIKey(cfg.APIKey),
		maps.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}

	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleMapsAdapter{client: client, config: cfg}, nil
}

// ReverseGeocode returns the first formatted address for a coordinate.
func (a *GoogleMapsAdapter) ReverseGeocode(ctx context.Context, at domain.LatLng) (string, error) {
	results, err := a.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: at.Lat, Lng: at.Lng},
		Language: a.config.Language,
	})
	if err != nil {
		return "", providerError(err)
	}
	if len(results) == 0 {
		return "", ErrNoResults
	}
	return results[0].FormattedAddress, nil
}

// Directions requests a DRIVING route and reports the first leg.
func (a *GoogleMapsAdapter) Directions(ctx context.Context, origin, destination domain.LatLng) (domain.Route, error) {
	routes, _, err := a.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      coords(origin),
		Destination: coords(destination),
		Mode:        maps.TravelModeDriving,
		Language:    a.config.Language,
	})
	if err != nil {
		return domain.Route{}, providerError(err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return domain.Route{}, ErrNoResults
	}

	route := routes[0]
	leg := route.Legs[0]
	return domain.NewRoute(leg.Distance.Meters, int(leg.Duration.Seconds()), route.OverviewPolyline.Points), nil
}

// Autocomplete suggests addresses restricted to the configured country.
func (a *GoogleMapsAdapter) Autocomplete(ctx context.Context, input, sessionToken string) ([]domain.Prediction, error) {
	resp, err := a.client.PlaceAutocomplete(ctx, &maps.PlaceAutocompleteRequest{
		Input:        input,
		Language:     a.config.Language,
		Components:   map[maps.Component][]string{maps.ComponentCountry: {strings.ToLower(a.config.Region)}},
		SessionToken: placesToken(sessionToken),
	})
	if err != nil {
		if err = providerError(err); errors.Is(err, ErrNoResults) {
			return []domain.Prediction{}, nil
		}
		return nil, err
	}

	out := make([]domain.Prediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		out = append(out, domain.Prediction{PlaceID: p.PlaceID, Description: p.Description})
	}
	return out, nil
}

// PlaceDetails resolves a place id to its location and formatted address.
func (a *GoogleMapsAdapter) PlaceDetails(ctx context.Context, placeID, sessionToken string) (domain.Place, error) {
	res, err := a.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID:      placeID,
		Language:     a.config.Language,
		Fields:       detailFields,
		SessionToken: placesToken(sessionToken),
	})
	if err != nil {
		return domain.Place{}, providerError(err)
	}

	loc := res.Geometry.Location
	return domain.Place{
		PlaceID:  placeID,
		Location: domain.LatLng{Lat: loc.Lat, Lng: loc.Lng},
		Address:  res.FormattedAddress,
	}, nil
}

// providerError maps the SDK's empty-answer statuses onto ErrNoResults.
func providerError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "ZERO_RESULTS") || strings.Contains(msg, "NOT_FOUND") {
		return fmt.Errorf("%w: %s", ErrNoResults, msg)
	}
	return fmt.Errorf("maps request failed: %w", err)
}

// placesToken reads the planner's autocomplete session token. Anything that is not a
// uuid starts no session.
func placesToken(s string) maps.PlaceAutocompleteSessionToken {
	id, err := uuid.Parse(s)
	if err != nil {
		return maps.PlaceAutocompleteSessionToken(uuid.Nil)
	}
	return maps.PlaceAutocompleteSessionToken(id)
}

func coords(at domain.LatLng) string {
	return strconv.FormatFloat(at.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(at.Lng, 'f', -1, 64)
}
