package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"envios-web/internal/core/clock"
	"envios-web/internal/features/routing/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMaps struct {
	mu           sync.Mutex
	geocodeCalls int
	routeCalls   int
	routeGate    chan struct{}
	route        domain.Route
	routeErr     error
	geocodeErr   error
	place        domain.Place
}

func (f *fakeMaps) ReverseGeocode(_ context.Context, at domain.LatLng) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.geocodeCalls++
	if f.geocodeErr != nil {
		return "", f.geocodeErr
	}
	return fmt.Sprintf("Calle %.1f", at.Lat), nil
}

func (f *fakeMaps) Directions(context.Context, domain.LatLng, domain.LatLng) (domain.Route, error) {
	f.mu.Lock()
	f.routeCalls++
	gate := f.routeGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.route, f.routeErr
}

func (f *fakeMaps) Autocomplete(_ context.Context, input, _ string) ([]domain.Prediction, error) {
	return []domain.Prediction{{PlaceID: "p-1", Description: input + ", Caracas"}}, nil
}

func (f *fakeMaps) PlaceDetails(_ context.Context, placeID, _ string) (domain.Place, error) {
	p := f.place
	p.PlaceID = placeID
	return p, nil
}

func click(lat, lng float64) domain.Selection {
	return domain.Selection{Location: &domain.LatLng{Lat: lat, Lng: lng}}
}

func wait(t *testing.T, s *PlannerService, sid string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx, sid))
}

func newService(maps *fakeMaps) *PlannerService {
	return NewPlannerService(maps, clock.NewFake(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)))
}

func TestPlanner_StateMachine(t *testing.T) {
	maps := &fakeMaps{route: domain.NewRoute(12345, 900, "abc")}
	s := newService(maps)
	ctx := context.Background()

	plan := s.Plan("sid")
	assert.Equal(t, domain.StateEmpty, plan.State)
	assert.NotEmpty(t, plan.MapKey)
	assert.Equal(t, domain.DefaultCenter, plan.Center)

	plan, err := s.Select(ctx, "sid", click(10.5, -66.9))
	require.NoError(t, err)
	assert.Equal(t, domain.StateOrigin, plan.State)
	require.NotNil(t, plan.Origin)
	assert.True(t, plan.Origin.Resolving)

	wait(t, s, "sid")
	plan = s.Plan("sid")
	assert.Equal(t, "Calle 10.5", plan.Origin.Address)
	assert.False(t, plan.Origin.Resolving)
	_, err = plan.DistanceKm()
	assert.ErrorIs(t, err, domain.ErrNoRoute)

	plan, err = s.Select(ctx, "sid", click(10.2, -67.6))
	require.NoError(t, err)
	assert.Equal(t, domain.StateRouted, plan.State)
	assert.True(t, plan.Routing)

	wait(t, s, "sid")
	plan = s.Plan("sid")
	assert.False(t, plan.Routing)
	require.NotNil(t, plan.Route)
	km, err := plan.DistanceKm()
	require.NoError(t, err)
	assert.InDelta(t, 12.345, km, 1e-9)
	assert.Equal(t, "Calle 10.2", plan.Destination.Address)

	origin, destination := plan.Addresses()
	assert.Equal(t, "Calle 10.5", origin)
	assert.Equal(t, "Calle 10.2", destination)

	// Further clicks are ignored until the route is cleared.
	ignored, err := s.Select(ctx, "sid", click(1, 1))
	assert.ErrorIs(t, err, ErrSelectionIgnored)
	assert.Equal(t, plan, ignored)
	assert.Equal(t, 1, maps.routeCalls)
}

func TestPlanner_ClearRotatesMapKey(t *testing.T) {
	s := newService(&fakeMaps{route: domain.NewRoute(1000, 60, "")})
	ctx := context.Background()

	before := s.Plan("sid")
	_, err := s.Select(ctx, "sid", click(1, 1))
	require.NoError(t, err)
	wait(t, s, "sid")

	after := s.Clear("sid")
	assert.Equal(t, domain.StateEmpty, after.State)
	assert.Nil(t, after.Origin)
	assert.Nil(t, after.Destination)
	assert.Nil(t, after.Route)
	assert.NotEqual(t, before.MapKey, after.MapKey)

	_, err = s.Select(ctx, "sid", click(2, 2))
	require.NoError(t, err, "selections are accepted again after clear")
}

func TestPlanner_StaleRouteDroppedAfterClear(t *testing.T) {
	gate := make(chan struct{})
	maps := &fakeMaps{routeGate: gate, route: domain.NewRoute(5000, 300, "")}
	s := newService(maps)
	ctx := context.Background()

	_, err := s.Select(ctx, "sid", click(1, 1))
	require.NoError(t, err)
	_, err = s.Select(ctx, "sid", click(2, 2))
	require.NoError(t, err)

	s.Clear("sid")
	close(gate)
	wait(t, s, "sid")

	plan := s.Plan("sid")
	assert.Equal(t, domain.StateEmpty, plan.State)
	assert.Nil(t, plan.Route, "a route that finished after clear must not be applied")
	assert.False(t, plan.Routing)
}

func TestPlanner_RouteFailure(t *testing.T) {
	s := newService(&fakeMaps{routeErr: errors.New("ZERO_RESULTS")})
	ctx := context.Background()

	_, _ = s.Select(ctx, "sid", click(1, 1))
	_, _ = s.Select(ctx, "sid", click(2, 2))
	wait(t, s, "sid")

	plan := s.Plan("sid")
	assert.True(t, plan.RouteFailed)
	assert.Nil(t, plan.Route)
	_, err := plan.DistanceKm()
	assert.ErrorIs(t, err, domain.ErrNoRoute)
}

func TestPlanner_GeocodeFailureKeepsCoordinates(t *testing.T) {
	s := newService(&fakeMaps{geocodeErr: errors.New("OVER_QUERY_LIMIT")})

	_, err := s.Select(context.Background(), "sid", click(10.5, -66.9))
	require.NoError(t, err)
	wait(t, s, "sid")

	plan := s.Plan("sid")
	assert.Equal(t, "10.500000, -66.900000", plan.Origin.Address)
	assert.False(t, plan.Origin.Resolving)
}

func TestPlanner_AutocompleteSelection(t *testing.T) {
	maps := &fakeMaps{place: domain.Place{Location: domain.LatLng{Lat: 10.48, Lng: -66.90}, Address: "Plaza Venezuela, Caracas"}}
	s := newService(maps)

	plan, err := s.Select(context.Background(), "sid", domain.Selection{PlaceID: "p-9"})
	require.NoError(t, err)
	wait(t, s, "sid")

	assert.Equal(t, domain.StateOrigin, plan.State)
	assert.Equal(t, "Plaza Venezuela, Caracas", plan.Origin.Address)
	assert.False(t, plan.Origin.Resolving)
	assert.Equal(t, 0, maps.geocodeCalls, "autocomplete picks carry their address")
}

func TestPlanner_SessionsAreIsolated(t *testing.T) {
	s := newService(&fakeMaps{})

	_, err := s.Select(context.Background(), "a", click(1, 1))
	require.NoError(t, err)
	wait(t, s, "a")

	assert.Equal(t, domain.StateOrigin, s.Plan("a").State)
	assert.Equal(t, domain.StateEmpty, s.Plan("b").State)
}

func TestPlanner_Sweep(t *testing.T) {
	fake := clock.NewFake(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))
	s := NewPlannerService(&fakeMaps{}, fake)

	s.Plan("old")
	fake.Advance(2 * time.Hour)
	s.Plan("fresh")

	assert.Equal(t, 1, s.Sweep(time.Hour))
	assert.Equal(t, 0, s.Sweep(time.Hour))
}

func TestPlanner_Suggest(t *testing.T) {
	s := newService(&fakeMaps{})

	preds, err := s.Suggest(context.Background(), "sid", "Altamira")
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, "Altamira, Caracas", preds[0].Description)
}

func TestPlanner_MoveSession(t *testing.T) {
	maps := &fakeMaps{route: domain.NewRoute(12000, 600, ""), routeGate: make(chan struct{})}
	s := newService(maps)
	ctx := context.Background()

	_, err := s.Select(ctx, "anon", click(1, 1))
	require.NoError(t, err)
	_, err = s.Select(ctx, "anon", click(2, 2))
	require.NoError(t, err)
	mapKey := s.Plan("anon").MapKey

	require.NoError(t, s.MoveSession(ctx, "anon", "fresh"))
	close(maps.routeGate)
	wait(t, s, "fresh")

	plan := s.Plan("fresh")
	assert.Equal(t, mapKey, plan.MapKey)
	require.NotNil(t, plan.Route, "the in-flight route lands in the moved planner")
	assert.InDelta(t, 12.0, plan.Route.DistanceKm, 1e-9)
	assert.Equal(t, domain.StateEmpty, s.Plan("anon").State)

	require.NoError(t, s.MoveSession(ctx, "missing", "other"))
}
