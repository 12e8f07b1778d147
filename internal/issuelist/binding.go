// Package issuelist keeps an issue projection in step with the active view
// preference. Every request supersedes the previous one; results that
// arrive for a superseded request are dropped.
package issuelist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/issueview/internal/issues"
	"github.com/zjrosen/issueview/internal/log"
	"github.com/zjrosen/issueview/internal/preference"
	"github.com/zjrosen/issueview/internal/pubsub"
	"github.com/zjrosen/issueview/internal/tracing"
)

// Status is the lifecycle of the projection.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusLoading:
		return "LOADING"
	case StatusReady:
		return "READY"
	case StatusFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Input identifies what the projection was requested for.
type Input struct {
	ProjectID string
	State     preference.State
}

// View is a snapshot of the binding. Result is the last successful
// projection: while LOADING or FAILED it may belong to an older Input, and
// it is nil until the first fetch succeeds.
type View struct {
	Status     Status
	Input      Input
	Result     *issues.Result
	Err        error
	Generation uint64
}

// Options configures a Binding.
type Options struct {
	// Timeout bounds each fetch. Zero means no limit.
	Timeout time.Duration
	Tracer  trace.Tracer
}

// Binding fetches projections from a Source.
type Binding struct {
	source issues.Source
	opts   Options
	tracer trace.Tracer
	broker *pubsub.Broker[View]

	mu      sync.Mutex
	view    View
	settled chan struct{}
	closed  bool
	wg      sync.WaitGroup
}

var _ pubsub.Subscriber[View] = (*Binding)(nil)

// New creates an idle binding.
func New(source issues.Source, opts Options) *Binding {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracing.NoopTracer()
	}
	settled := make(chan struct{})
	close(settled)
	b := &Binding{
		source:  source,
		opts:    opts,
		tracer:  tracer,
		broker:  pubsub.NewReplayBroker[View](),
		settled: settled,
	}
	b.broker.Publish(pubsub.ListChangedEvent, b.view)
	return b
}

// Request moves to LOADING and fetches the projection for (projectID,
// state) in the background. It never blocks on the fetch.
func (b *Binding) Request(projectID string, state preference.State) {
	b.request(Input{ProjectID: projectID, State: state}, "request")
}

// Refresh re-requests the last input. It is a no-op before the first
// Request.
func (b *Binding) Refresh() {
	b.mu.Lock()
	if b.view.Generation == 0 {
		b.mu.Unlock()
		return
	}
	in := b.view.Input
	b.mu.Unlock()
	b.request(in, "refresh")
}

func (b *Binding) request(in Input, reason string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.view.Generation++
	gen := b.view.Generation
	b.view.Status = StatusLoading
	b.view.Input = in
	b.view.Err = nil
	if isClosed(b.settled) {
		b.settled = make(chan struct{})
	}
	view := b.view
	b.wg.Add(1)
	b.broker.Publish(pubsub.ListChangedEvent, view)
	b.mu.Unlock()

	log.Debug(log.CatFetch, "fetch requested",
		"project", in.ProjectID, "state", in.State, "generation", gen, "reason", reason)
	go b.fetch(in, gen)
}

func (b *Binding) fetch(in Input, gen uint64) {
	defer b.wg.Done()

	ctx := context.Background()
	if b.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
	}
	ctx, span := b.tracer.Start(ctx, tracing.SpanFetchIssues, trace.WithAttributes(
		attribute.String(tracing.AttrProjectID, in.ProjectID),
		attribute.String(tracing.AttrPrefState, in.State.String()),
		attribute.Int64(tracing.AttrFetchGeneration, int64(gen)),
		attribute.String(tracing.AttrFetchGroupBy, string(in.State.GroupBy)),
		attribute.String(tracing.AttrFetchOrderBy, string(in.State.OrderBy)),
		attribute.String(tracing.AttrFetchFilter, string(in.State.Filter)),
	))
	defer span.End()

	res, err := b.source.Fetch(ctx, in.ProjectID, issues.QueryFor(in.State))
	if err != nil {
		tracing.RecordError(span, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.view.Generation || b.closed {
		span.SetAttributes(attribute.Bool(tracing.AttrFetchStale, true))
		log.Debug(log.CatFetch, "discarding stale fetch", "generation", gen, "latest", b.view.Generation)
		return
	}

	if err != nil {
		b.view.Status = StatusFailed
		b.view.Err = err
		log.ErrorErr(log.CatFetch, "fetch issues failed", err, "project", in.ProjectID, "state", in.State)
	} else {
		b.view.Status = StatusReady
		b.view.Result = &res
		span.SetAttributes(attribute.Int(tracing.AttrFetchCount, res.Len()))
		log.Debug(log.CatFetch, "fetch ready", "project", in.ProjectID, "generation", gen, "issues", res.Len())
	}
	close(b.settled)
	b.broker.Publish(pubsub.ListChangedEvent, b.view)
}

// View returns the current snapshot.
func (b *Binding) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

// Await blocks until the latest request settles (READY or FAILED) and
// returns the view at that moment.
func (b *Binding) Await(ctx context.Context) (View, error) {
	for {
		b.mu.Lock()
		settled := b.settled
		b.mu.Unlock()

		select {
		case <-settled:
		case <-ctx.Done():
			return b.View(), ctx.Err()
		}

		b.mu.Lock()
		if b.settled == settled {
			v := b.view
			b.mu.Unlock()
			return v, nil
		}
		// A newer request started after this one settled; wait for it too.
		b.mu.Unlock()
	}
}

// Subscribe streams view changes. The current view is delivered first.
func (b *Binding) Subscribe(ctx context.Context) <-chan pubsub.Event[View] {
	return b.broker.Subscribe(ctx)
}

// Close stops accepting requests, waits for in-flight fetches and closes
// subscriber channels.
func (b *Binding) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	if !isClosed(b.settled) {
		close(b.settled)
	}
	b.mu.Unlock()

	b.wg.Wait()
	b.broker.Close()
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
