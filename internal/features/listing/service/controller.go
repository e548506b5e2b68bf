package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"envios-web/internal/core/clock"
	"envios-web/internal/core/logger"
	"envios-web/internal/core/notify"
	"envios-web/internal/core/tasks"
	"envios-web/internal/features/listing/domain"

	"go.uber.org/zap"
)

// EventType names a change of the admin listing.
type EventType string

const (
	EventSearch   EventType = "search"
	EventStatus   EventType = "status"
	EventPage     EventType = "page"
	EventPageSize EventType = "pageSize"
	EventClear    EventType = "clear"
	EventRefresh  EventType = "refresh"
)

// ErrUnknownEvent is returned for an event type the controller does not handle.
var ErrUnknownEvent = errors.New("unknown listing event")

// Event is one message of the live listing socket.
type Event struct {
	Type  EventType `json:"type"`
	Value string    `json:"value,omitempty"`
	Page  int       `json:"page,omitempty"`
	Size  int       `json:"pageSize,omitempty"`
}

// Snapshot is what the controller publishes: the newest page, or why it could not be loaded.
type Snapshot struct {
	Seq     uint64          `json:"seq"`
	Query   domain.Query    `json:"query"`
	Page    *domain.Page    `json:"page,omitempty"`
	Notices []notify.Notice `json:"notices,omitempty"`
}

// Fetcher loads one listing page.
type Fetcher interface {
	Fetch(ctx context.Context, q domain.Query) (domain.Page, error)
}

// Controller keeps the listing state of one admin connection. Tracking searches are
// debounced, every other change fetches at once. Each fetch takes a sequence number and
// only the newest one is published, whatever order the responses arrive in.
type Controller struct {
	ctx      context.Context
	cancel   context.CancelFunc
	fetcher  Fetcher
	debounce *tasks.Debouncer
	publish  func(Snapshot)
	log      *zap.Logger
	wg       sync.WaitGroup

	mu         sync.Mutex
	query      domain.Query
	totalPages int
	seq        uint64
	closed     bool
}

// NewController creates a controller publishing through publish. Calls to publish are serialized.
func NewController(ctx context.Context, fetcher Fetcher, c clock.Clock, debounce time.Duration, publish func(Snapshot)) *Controller {
	ctx, cancel := context.WithCancel(ctx)
	return &Controller{
		ctx:        ctx,
		cancel:     cancel,
		fetcher:    fetcher,
		debounce:   tasks.NewDebouncer(c, debounce),
		publish:    publish,
		log:        logger.Named("listing"),
		query:      domain.Query{}.Normalize(),
		totalPages: 1,
	}
}

// Query returns the current listing state.
func (c *Controller) Query() domain.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Handle applies ev. A page outside the known range is rejected and published as an error notice.
func (c *Controller) Handle(ev Event) error {
	if ev.Type == EventSearch {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil
		}
		c.query = c.query.WithSearch(ev.Value)
		c.mu.Unlock()

		c.debounce.Trigger(c.fetchDebounced)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}

	switch ev.Type {
	case EventStatus:
		c.query = c.query.WithStatus(ev.Value)
	case EventPage:
		q, err := c.query.WithPage(ev.Page, c.totalPages)
		if err != nil {
			c.publish(Snapshot{Seq: c.seq, Query: c.query, Notices: []notify.Notice{notify.Error("Página fuera de rango")}})
			return err
		}
		c.query = q
	case EventPageSize:
		c.query = c.query.WithPageSize(ev.Size)
	case EventClear:
		c.query = c.query.Cleared()
	case EventRefresh:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, ev.Type)
	}

	// A pending search would otherwise overwrite this newer change.
	c.debounce.Stop()
	c.startFetch()
	return nil
}

// fetchDebounced is the debounced fetch. It takes c.mu itself.
func (c *Controller) fetchDebounced() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.startFetch()
	}
}

// startFetch requires c.mu.
func (c *Controller) startFetch() {
	c.seq++
	seq, q := c.seq, c.query

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		page, err := c.fetcher.Fetch(c.ctx, q)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || seq != c.seq {
			return
		}
		if err != nil {
			c.log.Warn("Listing fetch failed", zap.Uint64("seq", seq), zap.Error(err))
			c.publish(Snapshot{Seq: seq, Query: q, Notices: []notify.Notice{notify.Error("Error al cargar las órdenes")}})
			return
		}
		c.totalPages = page.TotalPages
		c.publish(Snapshot{Seq: seq, Query: q, Page: &page})
	}()
}

// Wait blocks until every started fetch returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close stops the controller. Nothing is published afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.debounce.Stop()
	c.cancel()
	c.wg.Wait()
}
