package ports

import (
	"context"

	"envios-web/internal/features/routing/domain"
)

// MapsProvider is the external geocoding and routing service.
type MapsProvider interface {
	// ReverseGeocode returns the display address of a coordinate.
	ReverseGeocode(ctx context.Context, at domain.LatLng) (string, error)
	// Directions computes the driving route between two coordinates.
	Directions(ctx context.Context, origin, destination domain.LatLng) (domain.Route, error)
	// Autocomplete suggests places for a partial address.
	Autocomplete(ctx context.Context, input, sessionToken string) ([]domain.Prediction, error)
	// PlaceDetails resolves an autocomplete pick to its location and formatted address.
	PlaceDetails(ctx context.Context, placeID, sessionToken string) (domain.Place, error)
}
