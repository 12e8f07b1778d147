package controller

import (
	"context"
	"sync"

	"github.com/zjrosen/issueview/internal/preference"
)

// recordingRefetcher remembers every state the controller asked for.
type recordingRefetcher struct {
	mu       sync.Mutex
	requests []preference.State
}

func (r *recordingRefetcher) Request(_ string, state preference.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, state)
}

func (r *recordingRefetcher) all() []preference.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]preference.State(nil), r.requests...)
}

func (r *recordingRefetcher) last() preference.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

// memGateway is an in-memory remembered-preference store. When gate is
// non-nil every call waits for it to be closed first.
type memGateway struct {
	mu      sync.Mutex
	current *preference.Snapshot
	def     *preference.Snapshot
	saves   []preference.State
	loads   int
	gate    chan struct{}
	saveErr error
	loadErr error
}

func (g *memGateway) wait(ctx context.Context) error {
	g.mu.Lock()
	gate := g.gate
	g.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *memGateway) Load(ctx context.Context, _ string) (preference.Remembered, error) {
	if err := g.wait(ctx); err != nil {
		return preference.Remembered{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loads++
	if g.loadErr != nil {
		return preference.Remembered{}, g.loadErr
	}
	if g.current == nil && g.def == nil {
		return preference.Remembered{}, preference.ErrNotFound
	}
	return preference.Remembered{Current: g.current, Default: g.def}, nil
}

func (g *memGateway) Save(ctx context.Context, _ string, current preference.Snapshot) error {
	if err := g.wait(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saves = append(g.saves, current.State())
	if g.saveErr != nil {
		return g.saveErr
	}
	g.current = &current
	return nil
}

func (g *memGateway) SaveAsDefault(ctx context.Context, _ string, snapshot preference.Snapshot) error {
	if err := g.wait(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.saveErr != nil {
		return g.saveErr
	}
	cur, def := snapshot, snapshot
	g.current = &cur
	g.def = &def
	return nil
}

func (g *memGateway) remembered() (cur, def *preference.State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current != nil {
		s := g.current.State()
		cur = &s
	}
	if g.def != nil {
		s := g.def.State()
		def = &s
	}
	return cur, def
}

func (g *memGateway) saved() []preference.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]preference.State(nil), g.saves...)
}

var (
	listDefaults = preference.Defaults()
	kanbanState  = preference.State{
		ViewMode: preference.ViewKanban,
		GroupBy:  preference.GroupState,
		OrderBy:  preference.OrderCreatedAt,
		Filter:   preference.FilterAll,
	}
)
