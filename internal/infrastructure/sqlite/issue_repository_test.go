package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/issueview/internal/issues"
	"github.com/zjrosen/issueview/internal/preference"
	"github.com/zjrosen/issueview/internal/testutil"
)

func newIssueRepo(t *testing.T) *IssueRepository {
	t.Helper()
	db := testutil.NewTestDB(t)
	testutil.NewBuilder(t, db).
		WithStandardTestData().
		WithProject("proj-empty", "EMPTY").
		Build()
	return NewIssueRepository(db)
}

func issueIDs(list []issues.Issue) []string {
	out := make([]string, len(list))
	for i, issue := range list {
		out[i] = issue.ID
	}
	return out
}

func TestIssueRepository_FetchFlatByCreated(t *testing.T) {
	repo := newIssueRepo(t)

	res, err := repo.Fetch(context.Background(), testutil.StandardProject, issues.Query{
		OrderBy: preference.OrderCreatedAt,
		Filter:  preference.FilterAll,
	})
	require.NoError(t, err)
	require.False(t, res.IsGrouped())
	require.Equal(t, []string{"web-5", "web-3", "web-2", "web-1", "web-4", "web-6"}, issueIDs(res.Issues))
}

func TestIssueRepository_FetchUpdatedOrder(t *testing.T) {
	repo := newIssueRepo(t)

	res, err := repo.Fetch(context.Background(), testutil.StandardProject, issues.Query{
		OrderBy: preference.OrderUpdatedAt,
		Filter:  preference.FilterActive,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"web-1", "web-6", "web-2"}, issueIDs(res.Issues))
}

func TestIssueRepository_FetchPriorityOrder(t *testing.T) {
	repo := newIssueRepo(t)

	res, err := repo.Fetch(context.Background(), testutil.StandardProject, issues.Query{
		OrderBy: preference.OrderPriority,
		Filter:  preference.FilterAll,
	})
	require.NoError(t, err)
	// urgent (newest first), high, medium, low, none
	require.Equal(t, []string{"web-1", "web-6", "web-2", "web-5", "web-4", "web-3"}, issueIDs(res.Issues))
}

func TestIssueRepository_FetchBacklogFilter(t *testing.T) {
	repo := newIssueRepo(t)

	res, err := repo.Fetch(context.Background(), testutil.StandardProject, issues.Query{
		OrderBy: preference.OrderCreatedAt,
		Filter:  preference.FilterBacklog,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"web-3"}, issueIDs(res.Issues))
}

func TestIssueRepository_FetchGroupedByState(t *testing.T) {
	repo := newIssueRepo(t)

	res, err := repo.Fetch(context.Background(), testutil.StandardProject, issues.Query{
		GroupBy: preference.GroupState,
		OrderBy: preference.OrderCreatedAt,
		Filter:  preference.FilterActive,
	})
	require.NoError(t, err)
	require.True(t, res.IsGrouped())
	require.Equal(t, []string{"In Progress", "Todo"}, res.Keys)
	require.Equal(t, []string{"web-2", "web-6"}, issueIDs(res.Groups["In Progress"]))
	require.Equal(t, []string{"web-1"}, issueIDs(res.Groups["Todo"]))
}

func TestIssueRepository_FetchGroupedByAssignees(t *testing.T) {
	repo := newIssueRepo(t)

	res, err := repo.Fetch(context.Background(), testutil.StandardProject, issues.Query{
		GroupBy: preference.GroupAssignees,
		OrderBy: preference.OrderCreatedAt,
		Filter:  preference.FilterAll,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"web-2", "web-1"}, issueIDs(res.Groups["alice"]))
	require.Equal(t, []string{"web-2", "web-4"}, issueIDs(res.Groups["bob"]))
	require.Equal(t, []string{"web-5", "web-3"}, issueIDs(res.Groups[issues.NoneKey]))
	require.Equal(t, 6, res.Len())
}

func TestIssueRepository_AssigneesSorted(t *testing.T) {
	repo := newIssueRepo(t)

	res, err := repo.Fetch(context.Background(), testutil.StandardProject, issues.Query{
		OrderBy: preference.OrderCreatedAt,
		Filter:  preference.FilterActive,
	})
	require.NoError(t, err)
	for _, issue := range res.Issues {
		if issue.ID == "web-2" {
			require.Equal(t, []string{"alice", "bob"}, issue.Assignees)
		}
	}
}

func TestIssueRepository_FetchEmptyProject(t *testing.T) {
	repo := newIssueRepo(t)

	res, err := repo.Fetch(context.Background(), "proj-empty", issues.Query{
		OrderBy: preference.OrderCreatedAt,
		Filter:  preference.FilterAll,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Issues)
	require.Empty(t, res.Issues)
}

func TestIssueRepository_Projects(t *testing.T) {
	repo := newIssueRepo(t)

	projects, err := repo.Projects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)
	require.Equal(t, "EMPTY", projects[0].Identifier)
	require.Equal(t, 0, projects[0].IssueCount)
	require.Equal(t, "WEB", projects[1].Identifier)
	require.Equal(t, 6, projects[1].IssueCount)
}

func TestIssueRepository_ProjectLookup(t *testing.T) {
	repo := newIssueRepo(t)
	ctx := context.Background()

	byID, err := repo.Project(ctx, testutil.StandardProject)
	require.NoError(t, err)
	require.Equal(t, "WEB", byID.Identifier)

	byIdentifier, err := repo.Project(ctx, "WEB")
	require.NoError(t, err)
	require.Equal(t, testutil.StandardProject, byIdentifier.ID)

	_, err = repo.Project(ctx, "nope")
	require.ErrorIs(t, err, issues.ErrProjectNotFound)
}
