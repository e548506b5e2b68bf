package domain

import "errors"

// ErrNoRoute is returned when a plan has no computed driving distance yet.
var ErrNoRoute = errors.New("no route computed")

// State is the phase of the route planner.
type State string

const (
	// StateEmpty has no pins.
	StateEmpty State = "EMPTY"
	// StateOrigin has the origin pin only.
	StateOrigin State = "ORIGIN"
	// StateRouted has both pins; further selections are ignored until cleared.
	StateRouted State = "ROUTED"
)

// DefaultCenter is where the map opens (Caracas).
var DefaultCenter = LatLng{Lat: 10.4806, Lng: -66.9036}

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// Pin is a selected origin or destination.
type Pin struct {
	Location LatLng `json:"location"`
	Address  string `json:"address"`
	// Resolving is true while the reverse geocode of a map click is in flight.
	Resolving bool `json:"resolving"`
}

// Route is the driving route between the two pins.
type Route struct {
	DistanceMeters  int     `json:"distanceMeters"`
	DistanceKm      float64 `json:"distanceKm"`
	DurationSeconds int     `json:"durationSeconds"`
	Polyline        string  `json:"polyline"`
}

// NewRoute derives the kilometer distance from the first leg in meters.
func NewRoute(meters, seconds int, polyline string) Route {
	return Route{
		DistanceMeters:  meters,
		DistanceKm:      float64(meters) / 1000,
		DurationSeconds: seconds,
		Polyline:        polyline,
	}
}

// Plan is the snapshot of one planner.
type Plan struct {
	State       State  `json:"state"`
	MapKey      string `json:"mapKey"`
	Center      LatLng `json:"center"`
	Origin      *Pin   `json:"origin,omitempty"`
	Destination *Pin   `json:"destination,omitempty"`
	Route       *Route `json:"route,omitempty"`
	// Routing is true while the directions request is in flight.
	Routing bool `json:"routing"`
	// RouteFailed is set when the directions request failed; the plan must be cleared.
	RouteFailed bool `json:"routeFailed"`
}

// DistanceKm returns the routed distance. Straight-line distance is never used.
func (p Plan) DistanceKm() (float64, error) {
	if p.Route == nil || p.Route.DistanceMeters <= 0 {
		return 0, ErrNoRoute
	}
	return p.Route.DistanceKm, nil
}

// Addresses returns the origin and destination display addresses.
func (p Plan) Addresses() (origin, destination string) {
	if p.Origin != nil {
		origin = p.Origin.Address
	}
	if p.Destination != nil {
		destination = p.Destination.Address
	}
	return origin, destination
}

// Selection is a map click (Location only) or an autocomplete pick (PlaceID).
type Selection struct {
	Location *LatLng `json:"location,omitempty" validate:"required_without=PlaceID"`
	PlaceID  string  `json:"placeId,omitempty" validate:"required_without=Location"`
}

// IsClick reports whether the selection came from a map click.
func (s Selection) IsClick() bool { return s.PlaceID == "" }

// Place is a resolved autocomplete pick.
type Place struct {
	PlaceID  string `json:"placeId"`
	Location LatLng `json:"location"`
	Address  string `json:"address"`
}

// Prediction is one autocomplete suggestion.
type Prediction struct {
	PlaceID     string `json:"placeId"`
	Description string `json:"description"`
}
