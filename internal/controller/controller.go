// Package controller owns the active view preference of one (project, user)
// scope. Transitions are applied synchronously through preference.Reduce;
// loading and persisting the remembered record happens on a serialized
// background stream that never blocks the caller.
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/issueview/internal/log"
	"github.com/zjrosen/issueview/internal/preference"
	"github.com/zjrosen/issueview/internal/pubsub"
	"github.com/zjrosen/issueview/internal/tracing"
)

const (
	// DefaultTimeout bounds a single gateway call when Options.Timeout is unset.
	DefaultTimeout = 5 * time.Second
	// DefaultCloseTimeout bounds the drain in Close when Options.CloseTimeout is unset.
	DefaultCloseTimeout = 10 * time.Second
)

// Refetcher is told about every state the issue list must reflect.
// issuelist.Binding implements it. Request must not block.
type Refetcher interface {
	Request(projectID string, state preference.State)
}

// Options configures a Controller.
type Options struct {
	// ProjectID scopes the controller. Empty means no project is selected:
	// transitions still change local state but nothing is fetched or saved.
	ProjectID string
	Policy    RehydratePolicy
	// Debounce delays each batch of remote ops so bursts of transitions
	// collapse into one save.
	Debounce time.Duration
	// Timeout bounds each remote call.
	Timeout time.Duration
	// CloseTimeout bounds how long Close waits for pending saves.
	CloseTimeout time.Duration
	Tracer       trace.Tracer
}

// Controller is the preference state machine for one project scope.
type Controller struct {
	gateway   preference.Gateway
	refetch   Refetcher
	opts      Options
	sessionID string
	tracer    trace.Tracer
	log       log.Scoped

	mu       sync.Mutex
	state    preference.State
	touched  bool
	attached bool
	closed   bool

	broker *pubsub.Broker[preference.State]
	queue  *syncQueue
}

var _ pubsub.Subscriber[preference.State] = (*Controller)(nil)

// New creates a controller holding the default preference. Call Attach to
// restore the remembered one.
func New(gateway preference.Gateway, refetch Refetcher, opts Options) *Controller {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CloseTimeout <= 0 {
		opts.CloseTimeout = DefaultCloseTimeout
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracing.NoopTracer()
	}

	c := &Controller{
		gateway:   gateway,
		refetch:   refetch,
		opts:      opts,
		sessionID: uuid.NewString(),
		tracer:    tracer,
		state:     preference.Defaults(),
		broker:    pubsub.NewReplayBroker[preference.State](),
	}
	c.log = log.For(log.CatPref, "session", c.sessionID[:8], "project", opts.ProjectID)
	c.queue = newSyncQueue(c.runOp, opts.Debounce)
	c.broker.Publish(pubsub.StateChangedEvent, c.state)
	return c
}

// SessionID identifies this controller in logs and traces.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// ProjectID returns the project scope, empty when none is selected.
func (c *Controller) ProjectID() string {
	return c.opts.ProjectID
}

// State returns the current preference.
func (c *Controller) State() preference.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe streams every state change. The current state is delivered
// first.
func (c *Controller) Subscribe(ctx context.Context) <-chan pubsub.Event[preference.State] {
	return c.broker.Subscribe(ctx)
}

// Attach requests the issue list for the default preference and starts
// loading the remembered one. When it arrives its current slot replaces the
// defaults, subject to the rehydrate policy. Attach returns immediately;
// later calls are no-ops.
func (c *Controller) Attach(ctx context.Context) {
	c.mu.Lock()
	if c.attached || c.closed {
		c.mu.Unlock()
		return
	}
	c.attached = true
	state := c.state
	c.mu.Unlock()

	if c.opts.ProjectID == "" {
		c.log.Debug("attach without project; keeping defaults")
		return
	}

	c.refetch.Request(c.opts.ProjectID, state)
	c.enqueue(op{
		kind:   opLoad,
		ctx:    context.WithoutCancel(ctx),
		reason: "attach",
		onLoad: c.rehydrate,
	})
}

func (c *Controller) rehydrate(rem preference.Remembered, err error) {
	if errors.Is(err, preference.ErrNotFound) {
		c.log.Debug("no remembered preference; keeping defaults")
		return
	}
	if err != nil {
		c.log.ErrorErr("load remembered preference failed", err)
		return
	}
	if rem.Current == nil {
		c.log.Debug("remembered preference has no current slot; keeping defaults")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.touched && c.opts.Policy == RehydrateSuppress {
		c.log.Info("suppressed late rehydrate", "local", c.state, "remembered", rem.Current.State())
		return
	}
	c.applyLocked(preference.Rehydrate(*rem.Current))
}

// Dispatch applies a SET_* action: the state is reduced, the issue list is
// refetched and the new state is queued for saving. It returns the new
// state. Rehydrate and reset actions are driven by Attach and
// ResetToDefault and are ignored here.
func (c *Controller) Dispatch(a preference.Action) preference.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch a.Type {
	case preference.ActionRehydrate, preference.ActionResetToDefault:
		c.log.Warn("ignoring remote-only action", "action", a.Type)
		return c.state
	}

	c.touched = true
	next := c.applyLocked(a)
	if c.opts.ProjectID != "" {
		c.enqueue(op{kind: opSaveCurrent, ctx: context.Background(), state: next, reason: a.Type.String()})
	}
	return next
}

// applyLocked reduces a into the state, publishes it and refetches. The
// caller holds c.mu so transitions reach subscribers and the binding in the
// order they were applied.
func (c *Controller) applyLocked(a preference.Action) preference.State {
	prev := c.state
	next := preference.Reduce(prev, a)
	c.state = next

	if next == prev && a.Field.Set {
		c.log.Debug("transition left state unchanged", "action", a.Type, "value", a.Field.Value)
	} else {
		c.log.Debug("transition", "action", a.Type, "from", prev, "to", next)
	}

	c.broker.Publish(pubsub.StateChangedEvent, next)
	if c.opts.ProjectID != "" {
		c.refetch.Request(c.opts.ProjectID, next)
	}
	return next
}

// SetViewModeKanban switches to the board layout, grouped by state.
func (c *Controller) SetViewModeKanban() preference.State {
	return c.Dispatch(preference.SetViewMode(preference.ViewKanban))
}

// SetViewModeList switches to the list layout and clears grouping.
func (c *Controller) SetViewModeList() preference.State {
	return c.Dispatch(preference.SetViewMode(preference.ViewList))
}

// SetGroupBy changes the grouping key. In kanban only state is accepted.
func (c *Controller) SetGroupBy(key preference.GroupBy) preference.State {
	return c.Dispatch(preference.SetGroupBy(key))
}

// SetOrderBy changes the ordering key.
func (c *Controller) SetOrderBy(key preference.OrderBy) preference.State {
	return c.Dispatch(preference.SetOrderBy(key))
}

// SetFilter changes the type filter.
func (c *Controller) SetFilter(key preference.Filter) preference.State {
	return c.Dispatch(preference.SetFilter(key))
}

// SaveAsNewDefault queues writing the current state into both slots of the
// remembered record. Local state does not change.
func (c *Controller) SaveAsNewDefault() {
	if c.opts.ProjectID == "" {
		c.log.Debug("save as default without project; ignored")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enqueue(op{kind: opSaveDefault, ctx: context.Background(), state: c.state, reason: "save_as_default"})
}

// ResetToDefault queues a load of the remembered record and, if it has a
// default slot, restores it and saves it as the current slot. Without a
// default slot nothing changes.
func (c *Controller) ResetToDefault() {
	if c.opts.ProjectID == "" {
		c.log.Debug("reset without project; ignored")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enqueue(op{kind: opLoad, ctx: context.Background(), reason: "reset", onLoad: c.reset})
}

func (c *Controller) reset(rem preference.Remembered, err error) {
	if err != nil && !errors.Is(err, preference.ErrNotFound) {
		c.log.ErrorErr("load default preference failed", err)
		return
	}
	if rem.Default == nil {
		c.log.Info("reset requested but no default is remembered")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	next := c.applyLocked(preference.ResetToDefault(*rem.Default))
	c.enqueue(op{kind: opSaveCurrent, ctx: context.Background(), state: next, reason: "reset"})
}

func (c *Controller) enqueue(o op) {
	if !c.queue.push(o) {
		c.log.Warn("controller closed; dropping remote op", "op", o.kind, "reason", o.reason)
	}
}

// WaitIdle blocks until every queued load and save has completed.
func (c *Controller) WaitIdle(ctx context.Context) error {
	return c.queue.waitIdle(ctx)
}

// Close flushes pending saves, waiting at most CloseTimeout, and stops the
// background stream. Subscriber channels are closed.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if left := c.queue.close(c.opts.CloseTimeout); left > 0 {
		c.log.Warn("closed with unsaved preference ops", "dropped", left)
	}

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.broker.Close()
}

func (c *Controller) runOp(o op) {
	ctx, cancel := context.WithTimeout(o.ctx, c.opts.Timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, spanName(o.kind), trace.WithAttributes(
		attribute.String(tracing.AttrSessionID, c.sessionID),
		attribute.String(tracing.AttrProjectID, c.opts.ProjectID),
		attribute.String(tracing.AttrPrefAction, o.reason),
	))
	defer span.End()

	syncLog := log.For(log.CatSync, "session", c.sessionID[:8], "project", c.opts.ProjectID, "op", o.kind, "reason", o.reason)

	switch o.kind {
	case opSaveCurrent, opSaveDefault:
		span.SetAttributes(attribute.String(tracing.AttrPrefState, o.state.String()))
		if o.coalesce > 0 {
			syncLog.Debug("coalesced saves", "skipped", o.coalesce)
		}
		var err error
		if o.kind == opSaveCurrent {
			err = c.gateway.Save(ctx, c.opts.ProjectID, o.state.Snapshot())
		} else {
			err = c.gateway.SaveAsDefault(ctx, c.opts.ProjectID, o.state.Snapshot())
		}
		if err != nil {
			tracing.RecordError(span, err)
			syncLog.ErrorErr("persist preference failed", err, "state", o.state)
			return
		}
		syncLog.Debug("persisted preference", "state", o.state)

	case opLoad:
		rem, err := c.gateway.Load(ctx, c.opts.ProjectID)
		if err != nil && !errors.Is(err, preference.ErrNotFound) {
			tracing.RecordError(span, err)
		}
		syncLog.Debug("loaded remembered preference", "current", rem.Current != nil, "default", rem.Default != nil, "error", err)
		o.onLoad(rem, err)
	}
}

func spanName(k opKind) string {
	switch k {
	case opSaveDefault:
		return tracing.SpanSyncSaveAsDefault
	case opLoad:
		return tracing.SpanSyncLoad
	default:
		return tracing.SpanSyncSave
	}
}
