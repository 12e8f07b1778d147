package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/issueview/internal/mocks"
	"github.com/zjrosen/issueview/internal/preference"
	"github.com/zjrosen/issueview/internal/pubsub"
	"github.com/zjrosen/issueview/internal/tracing"
)

func newController(t *testing.T, gw preference.Gateway, opts Options) (*Controller, *recordingRefetcher) {
	t.Helper()
	if opts.ProjectID == "" {
		opts.ProjectID = "proj-1"
	}
	rf := &recordingRefetcher{}
	c := New(gw, rf, opts)
	t.Cleanup(c.Close)
	return c, rf
}

func waitIdle(t *testing.T, c *Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.WaitIdle(ctx))
}

func TestController_StartsWithDefaults(t *testing.T) {
	c, rf := newController(t, &memGateway{}, Options{})

	require.Equal(t, listDefaults, c.State())
	require.Empty(t, rf.all(), "nothing is fetched before attach")
	require.NotEmpty(t, c.SessionID())
}

func TestController_AttachRehydratesCurrentSlot(t *testing.T) {
	remembered := preference.State{
		ViewMode: preference.ViewList,
		GroupBy:  preference.GroupPriority,
		OrderBy:  preference.OrderUpdatedAt,
		Filter:   preference.FilterBacklog,
	}
	snap := remembered.Snapshot()
	gw := &memGateway{current: &snap}
	c, rf := newController(t, gw, Options{})

	c.Attach(context.Background())
	waitIdle(t, c)

	require.Equal(t, remembered, c.State())
	require.Equal(t, []preference.State{listDefaults, remembered}, rf.all())
	require.Empty(t, gw.saved(), "rehydrate is not persisted")
}

func TestController_AttachIsIdempotent(t *testing.T) {
	gw := mocks.NewMockGateway(t)
	gw.EXPECT().Load(mock.Anything, "proj-1").Return(preference.Remembered{}, preference.ErrNotFound).Once()
	c, rf := newController(t, gw, Options{})

	c.Attach(context.Background())
	c.Attach(context.Background())
	waitIdle(t, c)

	require.Len(t, rf.all(), 1)
}

func TestController_AttachKeepsDefaults(t *testing.T) {
	def := kanbanState.Snapshot()
	tests := []struct {
		name string
		gw   *memGateway
	}{
		{name: "not found", gw: &memGateway{}},
		{name: "load error", gw: &memGateway{loadErr: errors.New("connection refused")}},
		{name: "only default slot", gw: &memGateway{def: &def}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rf := newController(t, tt.gw, Options{})
			c.Attach(context.Background())
			waitIdle(t, c)

			require.Equal(t, listDefaults, c.State())
			require.Equal(t, []preference.State{listDefaults}, rf.all())
		})
	}
}

func TestController_NoProjectIsLocalOnly(t *testing.T) {
	gw := mocks.NewMockGateway(t) // any call fails the test
	rf := &recordingRefetcher{}
	c := New(gw, rf, Options{})
	defer c.Close()

	c.Attach(context.Background())
	got := c.SetViewModeKanban()
	c.SaveAsNewDefault()
	c.ResetToDefault()
	waitIdle(t, c)

	require.Equal(t, kanbanState, got)
	require.Empty(t, rf.all())
}

func TestController_SetViewModeKanban(t *testing.T) {
	gw := &memGateway{}
	c, rf := newController(t, gw, Options{})

	got := c.SetViewModeKanban()
	require.Equal(t, kanbanState, got)
	require.Equal(t, kanbanState, c.State())
	require.Equal(t, kanbanState, rf.last())

	waitIdle(t, c)
	require.Equal(t, []preference.State{kanbanState}, gw.saved())
}

func TestController_SetViewModeList(t *testing.T) {
	gw := &memGateway{}
	c, _ := newController(t, gw, Options{})

	c.SetViewModeKanban()
	got := c.SetViewModeList()
	require.Equal(t, listDefaults, got)
}

func TestController_SetGroupByInKanbanKeepsState(t *testing.T) {
	c, _ := newController(t, &memGateway{}, Options{})

	c.SetViewModeKanban()
	got := c.SetGroupBy(preference.GroupAssignees)
	require.Equal(t, preference.ViewKanban, got.ViewMode)
	require.Equal(t, preference.GroupState, got.GroupBy)
}

func TestController_SetGroupByInList(t *testing.T) {
	c, _ := newController(t, &memGateway{}, Options{})

	got := c.SetGroupBy(preference.GroupAssignees)
	require.Equal(t, preference.ViewList, got.ViewMode)
	require.Equal(t, preference.GroupAssignees, got.GroupBy)
}

func TestController_OrderByRoundTrip(t *testing.T) {
	c, _ := newController(t, &memGateway{}, Options{})
	c.SetFilter(preference.FilterActive)
	before := c.State()

	c.SetOrderBy(preference.OrderPriority)
	got := c.SetOrderBy(preference.OrderCreatedAt)
	require.Equal(t, before, got)
}

func TestController_MalformedDispatchKeepsState(t *testing.T) {
	c, _ := newController(t, &memGateway{}, Options{})
	c.SetFilter(preference.FilterBacklog)

	got := c.Dispatch(preference.Set(preference.ActionSetFilter, preference.Value("everything")))
	require.Equal(t, preference.FilterBacklog, got.Filter)

	got = c.Dispatch(preference.Set(preference.ActionSetFilter, preference.Missing))
	require.Equal(t, preference.FilterAll, got.Filter)
}

func TestController_DispatchIgnoresRemoteOnlyActions(t *testing.T) {
	c, rf := newController(t, &memGateway{}, Options{})

	got := c.Dispatch(preference.Rehydrate(kanbanState.Snapshot()))
	require.Equal(t, listDefaults, got)
	require.Empty(t, rf.all())
}

func TestController_BackToBackTransitionsNoLostUpdate(t *testing.T) {
	gate := make(chan struct{})
	gw := &memGateway{gate: gate}
	c, _ := newController(t, gw, Options{})

	c.SetOrderBy(preference.OrderPriority)
	c.SetFilter(preference.FilterActive)
	close(gate)
	waitIdle(t, c)

	want := preference.State{
		ViewMode: preference.ViewList,
		GroupBy:  preference.GroupNone,
		OrderBy:  preference.OrderPriority,
		Filter:   preference.FilterActive,
	}
	cur, _ := gw.remembered()
	require.NotNil(t, cur)
	require.Equal(t, want, *cur)

	saves := gw.saved()
	require.Equal(t, want, saves[len(saves)-1], "the last write carries both changes")
}

func TestController_DebounceCoalescesSaves(t *testing.T) {
	gw := mocks.NewMockGateway(t)
	want := preference.State{
		ViewMode: preference.ViewKanban,
		GroupBy:  preference.GroupState,
		OrderBy:  preference.OrderUpdatedAt,
		Filter:   preference.FilterBacklog,
	}
	gw.EXPECT().Save(mock.Anything, "proj-1", want.Snapshot()).Return(nil).Once()
	c, _ := newController(t, gw, Options{Debounce: 100 * time.Millisecond})

	c.SetViewModeKanban()
	c.SetOrderBy(preference.OrderPriority)
	c.SetOrderBy(preference.OrderUpdatedAt)
	c.SetFilter(preference.FilterBacklog)
	waitIdle(t, c)
}

func TestController_SaveFailureKeepsLocalState(t *testing.T) {
	gw := &memGateway{saveErr: errors.New("database is locked")}
	c, _ := newController(t, gw, Options{})

	got := c.SetViewModeKanban()
	waitIdle(t, c)

	require.Equal(t, kanbanState, got)
	require.Equal(t, kanbanState, c.State())
	require.Len(t, gw.saved(), 1, "failed saves are not retried")
}

func TestController_SaveAsDefaultThenResetRoundTrip(t *testing.T) {
	gw := &memGateway{}
	c, _ := newController(t, gw, Options{})

	c.SetViewModeKanban()
	want := c.SetOrderBy(preference.OrderPriority)
	c.SaveAsNewDefault()
	require.Equal(t, want, c.State(), "saving a default does not change local state")

	c.ResetToDefault()
	waitIdle(t, c)
	require.Equal(t, want, c.State())

	_, def := gw.remembered()
	require.NotNil(t, def)
	require.Equal(t, want, *def)
}

func TestController_ResetRestoresDefaultAfterLaterChanges(t *testing.T) {
	gw := &memGateway{}
	c, rf := newController(t, gw, Options{})

	c.SetFilter(preference.FilterActive)
	def := c.State()
	c.SaveAsNewDefault()
	c.SetViewModeKanban()
	c.SetOrderBy(preference.OrderUpdatedAt)

	c.ResetToDefault()
	waitIdle(t, c)

	require.Equal(t, def, c.State())
	require.Equal(t, def, rf.last())
	cur, stored := gw.remembered()
	require.Equal(t, def, *cur, "reset result is saved as the current slot")
	require.Equal(t, def, *stored, "default slot untouched")
}

func TestController_ResetWithoutDefaultIsNoop(t *testing.T) {
	gw := &memGateway{}
	c, _ := newController(t, gw, Options{})

	before := c.SetViewModeKanban()
	waitIdle(t, c)
	c.ResetToDefault()
	waitIdle(t, c)

	require.Equal(t, before, c.State())
	require.Len(t, gw.saved(), 1, "no save follows a reset without default")
}

func TestController_ResetLoadErrorIsNoop(t *testing.T) {
	gw := mocks.NewMockGateway(t)
	gw.EXPECT().Load(mock.Anything, "proj-1").Return(preference.Remembered{}, errors.New("timeout")).Once()
	c, _ := newController(t, gw, Options{})

	c.ResetToDefault()
	waitIdle(t, c)
	require.Equal(t, listDefaults, c.State())
}

func TestController_LateRehydrateSuppressed(t *testing.T) {
	snap := kanbanState.Snapshot()
	gate := make(chan struct{})
	gw := &memGateway{current: &snap, gate: gate}
	c, _ := newController(t, gw, Options{Policy: RehydrateSuppress})

	c.Attach(context.Background())
	local := c.SetFilter(preference.FilterActive)
	close(gate)
	waitIdle(t, c)

	require.Equal(t, local, c.State())
	cur, _ := gw.remembered()
	require.Equal(t, local, *cur)
}

func TestController_LateRehydrateOverwrites(t *testing.T) {
	snap := kanbanState.Snapshot()
	gate := make(chan struct{})
	gw := &memGateway{current: &snap, gate: gate}
	c, rf := newController(t, gw, Options{Policy: RehydrateOverwrite})

	c.Attach(context.Background())
	c.SetFilter(preference.FilterActive)
	close(gate)
	waitIdle(t, c)

	require.Equal(t, kanbanState, c.State())
	require.Equal(t, kanbanState, rf.last())
}

func TestController_SubscribeSeesTransitionsInOrder(t *testing.T) {
	c, _ := newController(t, &memGateway{}, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := c.Subscribe(ctx)
	c.SetViewModeKanban()
	c.SetViewModeList()

	var got []preference.State
	for i := 0; i < 3; i++ {
		select {
		case ev := <-ch:
			require.Equal(t, pubsub.StateChangedEvent, ev.Type)
			got = append(got, ev.Payload)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for state event")
		}
	}
	require.Equal(t, []preference.State{listDefaults, kanbanState, listDefaults}, got)
}

func TestController_CloseDrainsPendingSaves(t *testing.T) {
	gw := &memGateway{}
	rf := &recordingRefetcher{}
	c := New(gw, rf, Options{ProjectID: "proj-1", Debounce: time.Hour})

	ch := c.Subscribe(context.Background())
	c.SetViewModeKanban()
	c.Close()

	cur, _ := gw.remembered()
	require.NotNil(t, cur, "close flushes past the debounce window")
	require.Equal(t, kanbanState, *cur)

	// Subscriber channel is closed after the buffered events.
	for range ch {
	}

	require.NotPanics(t, func() {
		c.SetViewModeList()
		c.Close()
	})
	require.Len(t, gw.saved(), 1, "ops after close are dropped")
}

func TestController_CloseGivesUpOnStuckSave(t *testing.T) {
	gw := &memGateway{gate: make(chan struct{})}
	c := New(gw, &recordingRefetcher{}, Options{
		ProjectID:    "proj-1",
		Timeout:      100 * time.Millisecond,
		CloseTimeout: 20 * time.Millisecond,
	})

	c.SetViewModeKanban()
	c.SetFilter(preference.FilterActive)
	c.SetOrderBy(preference.OrderPriority)

	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("close did not return")
	}
	require.Empty(t, gw.saved())
}

func TestController_ConcurrentClose(t *testing.T) {
	for i := 0; i < 200; i++ {
		gw := &memGateway{gate: make(chan struct{})}
		c := New(gw, &recordingRefetcher{}, Options{
			ProjectID:    "proj-1",
			CloseTimeout: time.Millisecond,
		})
		c.SetOrderBy(preference.OrderPriority)

		var wg sync.WaitGroup
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.Close()
			}()
		}
		close(gw.gate)
		wg.Wait()
	}
}

func TestController_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	gw := &memGateway{saveErr: errors.New("read-only database")}
	c, _ := newController(t, gw, Options{Tracer: tp.Tracer("test")})

	c.Attach(context.Background())
	c.SetViewModeKanban()
	waitIdle(t, c)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	require.Equal(t, tracing.SpanSyncLoad, spans[0].Name())
	require.Equal(t, tracing.SpanSyncSave, spans[1].Name())
	require.Equal(t, "read-only database", spans[1].Status().Description)
}
