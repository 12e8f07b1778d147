package follow

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/issueview/internal/issuelist"
	"github.com/zjrosen/issueview/internal/issues"
	"github.com/zjrosen/issueview/internal/log"
	"github.com/zjrosen/issueview/internal/preference"
	"github.com/zjrosen/issueview/internal/pubsub"
)

type fakePreferences struct {
	*pubsub.Broker[preference.State]
	state  preference.State
	saves  int
	resets int
}

func newFakePreferences() *fakePreferences {
	return &fakePreferences{Broker: pubsub.NewBroker[preference.State](), state: preference.Defaults()}
}

func (f *fakePreferences) State() preference.State { return f.state }

func (f *fakePreferences) SetViewModeKanban() preference.State {
	f.state.ViewMode = preference.ViewKanban
	f.state.GroupBy = preference.GroupState
	return f.state
}

func (f *fakePreferences) SetViewModeList() preference.State {
	f.state = preference.Defaults()
	return f.state
}

func (f *fakePreferences) SaveAsNewDefault() { f.saves++ }
func (f *fakePreferences) ResetToDefault()   { f.resets++ }

type fakeList struct {
	*pubsub.Broker[issuelist.View]
	refreshes int
}

func (f *fakeList) View() issuelist.View { return issuelist.View{} }
func (f *fakeList) Refresh()             { f.refreshes++ }

var web = issues.ProjectSummary{ID: "proj-web", Identifier: "WEB", Name: "Web"}

func newModel(t *testing.T, logs *log.LogListener) (Model, *fakePreferences, *fakeList) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	prefs := newFakePreferences()
	list := &fakeList{Broker: pubsub.NewBroker[issuelist.View]()}
	m := New(ctx, Config{Project: web, User: "alice", Preferences: prefs, List: list, Logs: logs})
	return m, prefs, list
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModel_StartsFromCurrentValues(t *testing.T) {
	m, _, _ := newModel(t, nil)

	out := m.View()
	require.Contains(t, out, "Project WEB")
	require.Contains(t, out, "view: list")
	require.Contains(t, out, "status: IDLE")
	require.NotNil(t, m.Init())
}

func TestModel_RedrawsOnPreferenceEvent(t *testing.T) {
	m, prefs, _ := newModel(t, nil)

	kanban := preference.Defaults()
	kanban.ViewMode = preference.ViewKanban
	kanban.GroupBy = preference.GroupState
	prefs.Publish(pubsub.StateChangedEvent, kanban)

	msg := m.prefs.Listen()()
	next, cmd := m.Update(msg)
	require.NotNil(t, cmd, "keeps listening")
	require.Equal(t, kanban, next.(Model).state)
	require.Contains(t, next.View(), "view: kanban")
}

func TestModel_RedrawsOnListEvent(t *testing.T) {
	m, _, list := newModel(t, nil)

	res := issues.Result{Issues: []issues.Issue{{ID: "i-1", SequenceID: 7, Name: "Crash on save", State: "Todo"}}}
	list.Publish(pubsub.ListChangedEvent, issuelist.View{Status: issuelist.StatusReady, Result: &res})

	next, cmd := m.Update(m.list.Listen()())
	require.NotNil(t, cmd)
	out := next.View()
	require.Contains(t, out, "status: READY (1 issues)")
	require.Contains(t, out, "WEB-7 Crash on save")
}

func TestModel_KeysDriveThePreference(t *testing.T) {
	m, prefs, list := newModel(t, nil)

	next, _ := m.Update(keyPress('k'))
	require.Equal(t, preference.ViewKanban, next.(Model).state.ViewMode)

	next, _ = next.Update(keyPress('l'))
	require.Equal(t, preference.ViewList, next.(Model).state.ViewMode)

	next, _ = next.Update(keyPress('s'))
	next, _ = next.Update(keyPress('d'))
	_, _ = next.Update(keyPress('r'))
	require.Equal(t, 1, prefs.saves)
	require.Equal(t, 1, prefs.resets)
	require.Equal(t, 1, list.refreshes)
}

func TestModel_QuitKeys(t *testing.T) {
	m, _, _ := newModel(t, nil)

	for _, msg := range []tea.KeyMsg{keyPress('q'), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := m.Update(msg)
		require.NotNil(t, cmd, msg.String())
		require.IsType(t, tea.QuitMsg{}, cmd(), msg.String())
	}
}

func TestModel_TailsRecentLogEntries(t *testing.T) {
	var buf bytes.Buffer
	log.InitWriter(&buf, log.LevelDebug)
	t.Cleanup(log.Reset)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logs := log.NewListener(ctx)
	require.NotNil(t, logs)

	m, _, _ := newModel(t, logs)
	var next tea.Model = m
	for i := 0; i < logTailSize+2; i++ {
		log.Info(log.CatWatcher, fmt.Sprintf("database changed %d", i))
		next, _ = next.Update(logs.Listen()())
	}

	tail := next.(Model).logTail
	require.Len(t, tail, logTailSize)
	require.Contains(t, tail[0], "database changed 2")
	require.Contains(t, next.View(), "database changed 6")
	require.NotContains(t, next.View(), "database changed 1\n")
}
