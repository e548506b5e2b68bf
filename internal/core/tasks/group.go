// Package tasks runs asynchronous UI work where a newer task of the same kind supersedes older ones.
package tasks

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Group tracks at most one live task per key. Starting a task under a key cancels the
// previous one; consumers call Current before applying a result so stale results are dropped.
type Group struct {
	mu      sync.Mutex
	running map[string]*task
	wg      sync.WaitGroup
}

type task struct {
	token  string
	cancel context.CancelFunc
}

// NewGroup returns an empty Group.
func NewGroup() *Group {
	return &Group{running: make(map[string]*task)}
}

// Start runs fn in a goroutine under key and returns the request token handed to fn.
// The task context is detached from parent's cancellation so a finished HTTP request does
// not abort work the UI still waits for; only a newer task or Cancel stops it.
func (g *Group) Start(parent context.Context, key string, fn func(ctx context.Context, token string)) string {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	t := &task{token: uuid.NewString(), cancel: cancel}

	g.mu.Lock()
	if prev, ok := g.running[key]; ok {
		prev.cancel()
	}
	g.running[key] = t
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		defer g.finish(key, t)
		fn(ctx, t.token)
	}()

	return t.token
}

// Current reports whether token still identifies the live task for key.
func (g *Group) Current(key, token string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.running[key]
	return ok && t.token == token
}

// Cancel stops the live task under key, if any. Its result will no longer be Current.
func (g *Group) Cancel(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.running[key]; ok {
		t.cancel()
		delete(g.running, key)
	}
}

// CancelAll stops every live task.
func (g *Group) CancelAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, t := range g.running {
		t.cancel()
		delete(g.running, key)
	}
}

// Pending returns the number of live tasks.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.running)
}

// Wait blocks until every started goroutine returned or ctx is done.
func (g *Group) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Group) finish(key string, t *task) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t.cancel()
	if cur, ok := g.running[key]; ok && cur == t {
		delete(g.running, key)
	}
}
