package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTestDB_AppliesMigrations(t *testing.T) {
	db := NewTestDB(t)

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('projects', 'issues', 'issue_assignees', 'project_member_views')`).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 4, count)
}

func TestNewTestDB_ForeignKeysEnforced(t *testing.T) {
	db := NewTestDB(t)

	_, err := db.Exec(`INSERT INTO issues (id, project_id, sequence_id, name, state_name, state_group, created_at, updated_at)
		VALUES ('x', 'missing', 1, 'x', 'Todo', 'unstarted', 0, 0)`)
	require.Error(t, err)
}
