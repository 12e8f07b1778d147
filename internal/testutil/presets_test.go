package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithStandardTestData(t *testing.T) {
	db := NewTestDB(t)
	NewBuilder(t, db).WithStandardTestData().Build()

	rows, err := db.Query(`SELECT state_group, COUNT(*) FROM issues WHERE project_id = ? GROUP BY state_group`, StandardProject)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	counts := map[string]int{}
	for rows.Next() {
		var group string
		var n int
		require.NoError(t, rows.Scan(&group, &n))
		counts[group] = n
	}
	require.NoError(t, rows.Err())
	require.Equal(t, map[string]int{
		"backlog":   1,
		"unstarted": 1,
		"started":   2,
		"completed": 1,
		"cancelled": 1,
	}, counts)
}
