// Package issues describes the issue projection consumed by a view: the
// issue record, the query derived from a view preference, and the flat or
// grouped result returned by an issue source.
package issues

import (
	"context"
	"errors"
	"time"

	"github.com/zjrosen/issueview/internal/preference"
)

// StateGroup is the lifecycle bucket a workflow state belongs to.
type StateGroup string

const (
	GroupBacklog   StateGroup = "backlog"
	GroupUnstarted StateGroup = "unstarted"
	GroupStarted   StateGroup = "started"
	GroupCompleted StateGroup = "completed"
	GroupCancelled StateGroup = "cancelled"
)

// Priority is the urgency of an issue. The empty value means no priority.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityNone   Priority = ""
)

// Rank orders priorities from most to least urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Issue is a single tracked issue as seen by a list view.
type Issue struct {
	ID         string     `json:"id" yaml:"id"`
	ProjectID  string     `json:"project" yaml:"project"`
	SequenceID int        `json:"sequence_id" yaml:"sequence_id"`
	Name       string     `json:"name" yaml:"name"`
	State      string     `json:"state" yaml:"state"`
	StateGroup StateGroup `json:"state_group" yaml:"state_group"`
	Priority   Priority   `json:"priority" yaml:"priority"`
	Assignees  []string   `json:"assignees" yaml:"assignees"`
	CreatedAt  time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" yaml:"updated_at"`
}

// Query is the part of a view preference the issue source needs.
type Query struct {
	GroupBy preference.GroupBy
	OrderBy preference.OrderBy
	Filter  preference.Filter
}

// QueryFor derives the source query from a preference.
func QueryFor(s preference.State) Query {
	return Query{GroupBy: s.GroupBy, OrderBy: s.OrderBy, Filter: s.Filter}
}

// StateGroups returns the lifecycle buckets visible under the filter.
func StateGroups(f preference.Filter) []StateGroup {
	switch f {
	case preference.FilterActive:
		return []StateGroup{GroupUnstarted, GroupStarted}
	case preference.FilterBacklog:
		return []StateGroup{GroupBacklog}
	default:
		return []StateGroup{GroupBacklog, GroupUnstarted, GroupStarted, GroupCompleted, GroupCancelled}
	}
}

// Source fetches the issue projection of a project under a query. The
// result is grouped exactly when q.GroupBy is not GroupNone.
type Source interface {
	Fetch(ctx context.Context, projectID string, q Query) (Result, error)
}

// ErrProjectNotFound is returned when a project id does not exist.
var ErrProjectNotFound = errors.New("project not found")

// ProjectSummary describes a project available to browse.
type ProjectSummary struct {
	ID         string `json:"id" yaml:"id"`
	Identifier string `json:"identifier" yaml:"identifier"`
	Name       string `json:"name" yaml:"name"`
	IssueCount int    `json:"issue_count" yaml:"issue_count"`
}
