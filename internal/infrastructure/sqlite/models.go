package sqlite

import (
	"strings"
	"time"

	"github.com/zjrosen/issueview/internal/issues"
)

// IssueModel is a row of the issues table joined with its assignees.
// Assignees arrive as a single group_concat column.
type IssueModel struct {
	ID         string
	ProjectID  string
	SequenceID int
	Name       string
	StateName  string
	StateGroup string
	Priority   string
	Assignees  *string // nullable, comma separated
	CreatedAt  int64   // Unix milliseconds
	UpdatedAt  int64   // Unix milliseconds
}

func (m *IssueModel) toDomain() issues.Issue {
	issue := issues.Issue{
		ID:         m.ID,
		ProjectID:  m.ProjectID,
		SequenceID: m.SequenceID,
		Name:       m.Name,
		State:      m.StateName,
		StateGroup: issues.StateGroup(m.StateGroup),
		Priority:   issues.Priority(m.Priority),
		CreatedAt:  time.UnixMilli(m.CreatedAt).UTC(),
		UpdatedAt:  time.UnixMilli(m.UpdatedAt).UTC(),
	}
	if m.Assignees != nil && *m.Assignees != "" {
		issue.Assignees = strings.Split(*m.Assignees, ",")
	}
	return issue
}

// ViewModel is a row of project_member_views. Either slot may be NULL.
type ViewModel struct {
	ProjectID    string
	UserID       string
	ViewProps    *string
	DefaultProps *string
	UpdatedAt    int64
}

// ProjectModel is a row of the projects table with its issue count.
type ProjectModel struct {
	ID         string
	Identifier string
	Name       string
	IssueCount int
	CreatedAt  int64
}

func (m *ProjectModel) toDomain() issues.ProjectSummary {
	return issues.ProjectSummary{
		ID:         m.ID,
		Identifier: m.Identifier,
		Name:       m.Name,
		IssueCount: m.IssueCount,
	}
}
