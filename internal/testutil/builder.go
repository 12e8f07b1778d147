package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type projectData struct {
	id         string
	identifier string
	name       string
}

type viewData struct {
	projectID    string
	userID       string
	viewProps    *string
	defaultProps *string
}

// Builder accumulates test data and inserts it in the correct order.
type Builder struct {
	t        *testing.T
	db       *sql.DB
	projects []projectData
	issues   []issueData
	views    []viewData
	seq      map[string]int
}

// NewBuilder creates a builder for the given test database.
func NewBuilder(t *testing.T, db *sql.DB) *Builder {
	t.Helper()
	return &Builder{t: t, db: db, seq: make(map[string]int)}
}

// WithProject adds a project. The name defaults to the identifier.
func (b *Builder) WithProject(id, identifier string) *Builder {
	b.projects = append(b.projects, projectData{id: id, identifier: identifier, name: identifier})
	return b
}

// WithIssue adds an issue to projectID. Defaults: a Todo issue with no
// priority, created and updated now, numbered after the previous issue of
// the project.
func (b *Builder) WithIssue(projectID, id string, opts ...IssueOption) *Builder {
	b.seq[projectID]++
	now := time.Now()
	issue := issueData{
		id:         id,
		projectID:  projectID,
		sequenceID: b.seq[projectID],
		name:       id,
		stateName:  "Todo",
		stateGroup: "unstarted",
		createdAt:  now,
		updatedAt:  now,
	}
	for _, opt := range opts {
		opt(&issue)
	}
	b.issues = append(b.issues, issue)
	return b
}

// WithView adds a remembered preference record. Empty strings leave a slot
// NULL; any other value is stored verbatim.
func (b *Builder) WithView(projectID, userID, viewProps, defaultProps string) *Builder {
	v := viewData{projectID: projectID, userID: userID}
	if viewProps != "" {
		v.viewProps = &viewProps
	}
	if defaultProps != "" {
		v.defaultProps = &defaultProps
	}
	b.views = append(b.views, v)
	return b
}

// Build inserts all accumulated data into the database.
func (b *Builder) Build() {
	b.t.Helper()
	// projects → issues → assignees → views
	for _, p := range b.projects {
		_, err := b.db.Exec(
			`INSERT INTO projects (id, identifier, name, created_at) VALUES (?, ?, ?, ?)`,
			p.id, p.identifier, p.name, time.Now().UnixMilli(),
		)
		require.NoError(b.t, err)
	}
	for _, issue := range b.issues {
		b.insertIssue(issue)
	}
	for _, v := range b.views {
		_, err := b.db.Exec(
			`INSERT INTO project_member_views (project_id, user_id, view_props, default_props, updated_at) VALUES (?, ?, ?, ?, ?)`,
			v.projectID, v.userID, v.viewProps, v.defaultProps, time.Now().UnixMilli(),
		)
		require.NoError(b.t, err)
	}
}

func (b *Builder) insertIssue(issue issueData) {
	b.t.Helper()
	_, err := b.db.Exec(
		`INSERT INTO issues (id, project_id, sequence_id, name, state_name, state_group, priority, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		issue.id, issue.projectID, issue.sequenceID, issue.name, issue.stateName, issue.stateGroup,
		issue.priority, issue.createdAt.UnixMilli(), issue.updatedAt.UnixMilli(),
	)
	require.NoError(b.t, err)
	for _, a := range issue.assignees {
		_, err := b.db.Exec(`INSERT INTO issue_assignees (issue_id, assignee) VALUES (?, ?)`, issue.id, a)
		require.NoError(b.t, err)
	}
}
