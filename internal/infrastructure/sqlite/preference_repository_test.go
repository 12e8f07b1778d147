package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/issueview/internal/preference"
	"github.com/zjrosen/issueview/internal/testutil"
)

func kanbanByPriority() preference.State {
	return preference.State{
		ViewMode: preference.ViewKanban,
		GroupBy:  preference.GroupState,
		OrderBy:  preference.OrderPriority,
		Filter:   preference.FilterActive,
	}
}

func TestPreferenceRepository_LoadMissingIsNotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.NewBuilder(t, db).WithProject("p1", "P").Build()

	_, err := NewPreferenceRepository(db, "u1").Load(context.Background(), "p1")
	require.ErrorIs(t, err, preference.ErrNotFound)
}

func TestPreferenceRepository_SaveThenLoad(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.NewBuilder(t, db).WithProject("p1", "P").Build()
	repo := NewPreferenceRepository(db, "u1")
	ctx := context.Background()

	want := kanbanByPriority()
	require.NoError(t, repo.Save(ctx, "p1", want.Snapshot()))

	got, err := repo.Load(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got.Current)
	require.Nil(t, got.Default, "save must not touch the default slot")
	require.Equal(t, want, got.Current.State())
}

func TestPreferenceRepository_SaveKeepsDefaultSlot(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.NewBuilder(t, db).WithProject("p1", "P").Build()
	repo := NewPreferenceRepository(db, "u1")
	ctx := context.Background()

	def := kanbanByPriority()
	require.NoError(t, repo.SaveAsDefault(ctx, "p1", def.Snapshot()))
	require.NoError(t, repo.Save(ctx, "p1", preference.Defaults().Snapshot()))

	got, err := repo.Load(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, preference.Defaults(), got.Current.State())
	require.NotNil(t, got.Default)
	require.Equal(t, def, got.Default.State())
}

func TestPreferenceRepository_SaveAsDefaultWritesBothSlots(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.NewBuilder(t, db).WithProject("p1", "P").Build()
	repo := NewPreferenceRepository(db, "u1")
	ctx := context.Background()

	def := kanbanByPriority()
	require.NoError(t, repo.SaveAsDefault(ctx, "p1", def.Snapshot()))

	got, err := repo.Load(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, def, got.Current.State())
	require.Equal(t, def, got.Default.State())
}

func TestPreferenceRepository_ScopedByUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.NewBuilder(t, db).WithProject("p1", "P").Build()
	ctx := context.Background()

	require.NoError(t, NewPreferenceRepository(db, "alice").Save(ctx, "p1", kanbanByPriority().Snapshot()))

	_, err := NewPreferenceRepository(db, "bob").Load(ctx, "p1")
	require.ErrorIs(t, err, preference.ErrNotFound)
}

func TestPreferenceRepository_LastWriteWins(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.NewBuilder(t, db).WithProject("p1", "P").Build()
	ctx := context.Background()

	// Two sessions of the same user race; the second blind write wins.
	first := NewPreferenceRepository(db, "u1")
	second := NewPreferenceRepository(db, "u1")
	require.NoError(t, first.Save(ctx, "p1", kanbanByPriority().Snapshot()))
	require.NoError(t, second.Save(ctx, "p1", preference.Defaults().Snapshot()))

	got, err := first.Load(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, preference.Defaults(), got.Current.State())
}

func TestPreferenceRepository_LegacyAndMalformedSlots(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.NewBuilder(t, db).
		WithProject("p1", "P").
		WithView("p1", "u1", `{"issueView":"kanban","order_by":"bogus"}`, `not json`).
		Build()

	got, err := NewPreferenceRepository(db, "u1").Load(context.Background(), "p1")
	require.NoError(t, err)
	require.Nil(t, got.Default, "unreadable slot is treated as absent")
	require.NotNil(t, got.Current)

	st := got.Current.State()
	require.Equal(t, preference.ViewKanban, st.ViewMode)
	require.Equal(t, preference.GroupState, st.GroupBy)
	require.Equal(t, preference.OrderCreatedAt, st.OrderBy)
}

func TestPreferenceRepository_NoGroupingStoredAsNull(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.NewBuilder(t, db).WithProject("p1", "P").Build()
	require.NoError(t, NewPreferenceRepository(db, "u1").Save(context.Background(), "p1", preference.Defaults().Snapshot()))

	var raw string
	require.NoError(t, db.QueryRow(`SELECT view_props FROM project_member_views WHERE project_id='p1'`).Scan(&raw))
	require.JSONEq(t, `{"issueView":"list","group_by":null,"order_by":"created_at","type":"all"}`, raw)
}
