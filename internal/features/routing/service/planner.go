package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"envios-web/internal/core/clock"
	"envios-web/internal/core/logger"
	"envios-web/internal/core/tasks"
	"envios-web/internal/features/routing/domain"
	"envios-web/internal/features/routing/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Task kinds. A newer task of a kind supersedes the older one.
const (
	taskOrigin      = "geocode-origin"
	taskDestination = "geocode-destination"
	taskRoute       = "route"
)

// ErrSelectionIgnored is returned when both pins are already placed.
var ErrSelectionIgnored = errors.New("selection ignored: clear the route first")

type planner struct {
	mu       sync.Mutex
	plan     domain.Plan
	tasks    *tasks.Group
	lastUsed time.Time
	// session token grouping autocomplete and details calls for billing.
	placesToken string
}

func newPlanner(now time.Time) *planner {
	return &planner{
		plan:        emptyPlan(),
		tasks:       tasks.NewGroup(),
		lastUsed:    now,
		placesToken: uuid.NewString(),
	}
}

func emptyPlan() domain.Plan {
	return domain.Plan{
		State:  domain.StateEmpty,
		MapKey: uuid.NewString(),
		Center: domain.DefaultCenter,
	}
}

// PlannerService keeps one route planner per browser session.
type PlannerService struct {
	maps  ports.MapsProvider
	clock clock.Clock
	log   *zap.Logger

	mu       sync.Mutex
	planners map[string]*planner
}

// NewPlannerService creates a new PlannerService.
func NewPlannerService(maps ports.MapsProvider, c clock.Clock) *PlannerService {
	return &PlannerService{
		maps:     maps,
		clock:    c,
		log:      logger.Named("planner"),
		planners: make(map[string]*planner),
	}
}

func (s *PlannerService) get(sid string) *planner {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.planners[sid]
	if !ok {
		p = newPlanner(s.clock.Now())
		s.planners[sid] = p
	}
	p.lastUsed = s.clock.Now()
	return p
}

// Plan returns the planner snapshot of sid.
func (s *PlannerService) Plan(sid string) domain.Plan {
	p := s.get(sid)
	p.mu.Lock()
	defer p.mu.Unlock()
	return snapshot(p.plan)
}

// Select applies a map click or an autocomplete pick. The first selection sets the origin,
// the second sets the destination and starts the directions request; after that selections
// are ignored with ErrSelectionIgnored until Clear.
func (s *PlannerService) Select(ctx context.Context, sid string, sel domain.Selection) (domain.Plan, error) {
	p := s.get(sid)

	if plan := s.Plan(sid); plan.State == domain.StateRouted {
		return plan, ErrSelectionIgnored
	}

	var place *domain.Place
	if !sel.IsClick() {
		resolved, err := s.maps.PlaceDetails(ctx, sel.PlaceID, p.placesTokenValue())
		if err != nil {
			return s.Plan(sid), fmt.Errorf("failed to resolve place %s: %w", sel.PlaceID, err)
		}
		place = &resolved
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	pin := &domain.Pin{}
	if place != nil {
		pin.Location = place.Location
		pin.Address = place.Address
		// A details lookup ends the autocomplete session.
		p.placesToken = uuid.NewString()
	} else {
		pin.Location = *sel.Location
		pin.Resolving = true
	}

	switch p.plan.State {
	case domain.StateEmpty:
		p.plan.Origin = pin
		p.plan.State = domain.StateOrigin
		if pin.Resolving {
			s.startGeocode(ctx, p, taskOrigin, pin.Location)
		}

	case domain.StateOrigin:
		p.plan.Destination = pin
		p.plan.State = domain.StateRouted
		if pin.Resolving {
			s.startGeocode(ctx, p, taskDestination, pin.Location)
		}
		s.startRoute(ctx, p, p.plan.Origin.Location, pin.Location)

	default:
		return snapshot(p.plan), ErrSelectionIgnored
	}

	return snapshot(p.plan), nil
}

// Clear removes both pins and the route, drops every in-flight task and rotates the map key
// so the widget remounts.
func (s *PlannerService) Clear(sid string) domain.Plan {
	p := s.get(sid)
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tasks.CancelAll()
	p.plan = emptyPlan()
	return snapshot(p.plan)
}

// Suggest returns autocomplete predictions for input.
func (s *PlannerService) Suggest(ctx context.Context, sid, input string) ([]domain.Prediction, error) {
	p := s.get(sid)
	return s.maps.Autocomplete(ctx, input, p.placesTokenValue())
}

// Forget drops the planner of sid.
func (s *PlannerService) Forget(sid string) {
	s.mu.Lock()
	p, ok := s.planners[sid]
	delete(s.planners, sid)
	s.mu.Unlock()
	if ok {
		p.tasks.CancelAll()
	}
}

// MoveSession hands the planner of from over to to, in-flight lookups included.
func (s *PlannerService) MoveSession(_ context.Context, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.planners[from]
	if !ok {
		return nil
	}
	delete(s.planners, from)
	if prev, ok := s.planners[to]; ok {
		prev.tasks.CancelAll()
	}
	s.planners[to] = p
	return nil
}

// Sweep forgets planners idle for longer than idle and returns how many were dropped.
func (s *PlannerService) Sweep(idle time.Duration) int {
	cutoff := s.clock.Now().Add(-idle)

	s.mu.Lock()
	var stale []*planner
	for sid, p := range s.planners {
		if p.lastUsed.Before(cutoff) {
			stale = append(stale, p)
			delete(s.planners, sid)
		}
	}
	s.mu.Unlock()

	for _, p := range stale {
		p.tasks.CancelAll()
	}
	return len(stale)
}

// Wait blocks until the in-flight tasks of sid finished or ctx is done.
func (s *PlannerService) Wait(ctx context.Context, sid string) error {
	return s.get(sid).tasks.Wait(ctx)
}

func (p *planner) placesTokenValue() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.placesToken
}

// startGeocode must be called with p.mu held.
func (s *PlannerService) startGeocode(ctx context.Context, p *planner, kind string, at domain.LatLng) {
	p.tasks.Start(ctx, kind, func(ctx context.Context, token string) {
		address, err := s.maps.ReverseGeocode(ctx, at)

		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.tasks.Current(kind, token) {
			return
		}

		pin := p.plan.Origin
		if kind == taskDestination {
			pin = p.plan.Destination
		}
		if pin == nil {
			return
		}
		pin.Resolving = false
		if err != nil {
			s.log.Warn("Reverse geocode failed", zap.String("task", kind), zap.Error(err))
			pin.Address = fmt.Sprintf("%.6f, %.6f", at.Lat, at.Lng)
			return
		}
		pin.Address = address
	})
}

// startRoute must be called with p.mu held.
func (s *PlannerService) startRoute(ctx context.Context, p *planner, origin, destination domain.LatLng) {
	p.plan.Routing = true
	p.plan.RouteFailed = false
	p.tasks.Start(ctx, taskRoute, func(ctx context.Context, token string) {
		route, err := s.maps.Directions(ctx, origin, destination)

		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.tasks.Current(taskRoute, token) {
			return
		}

		p.plan.Routing = false
		if err != nil {
			s.log.Error("Directions request failed", zap.Error(err))
			p.plan.RouteFailed = true
			return
		}
		p.plan.Route = &route
	})
}

// snapshot deep-copies the pins and route so callers never share state with the planner.
func snapshot(plan domain.Plan) domain.Plan {
	out := plan
	if plan.Origin != nil {
		o := *plan.Origin
		out.Origin = &o
	}
	if plan.Destination != nil {
		d := *plan.Destination
		out.Destination = &d
	}
	if plan.Route != nil {
		r := *plan.Route
		out.Route = &r
	}
	return out
}
