// Package preference holds the issue view preference: the value object
// describing how a collection of issues is displayed, the actions that move
// it between states, and the persistence port that remembers it per project.
package preference

import (
	"fmt"
	"strings"
)

// ViewMode selects the layout of the issue collection.
type ViewMode string

const (
	ViewList   ViewMode = "list"
	ViewKanban ViewMode = "kanban"
)

// GroupBy selects the issue property used to partition the collection.
// GroupNone (the empty value) means no grouping.
type GroupBy string

const (
	GroupNone      GroupBy = ""
	GroupState     GroupBy = "state"
	GroupPriority  GroupBy = "priority"
	GroupAssignees GroupBy = "assignees"
)

// OrderBy selects the ordering key applied within the collection or each group.
type OrderBy string

const (
	OrderCreatedAt OrderBy = "created_at"
	OrderUpdatedAt OrderBy = "updated_at"
	OrderPriority  OrderBy = "priority"
)

// Filter selects which state groups of issues are visible.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterActive  Filter = "active"
	FilterBacklog Filter = "backlog"
)

// ParseViewMode converts a raw value into a ViewMode.
func ParseViewMode(s string) (ViewMode, bool) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(s))) {
	case ViewList:
		return ViewList, true
	case ViewKanban:
		return ViewKanban, true
	}
	return "", false
}

// ParseGroupBy converts a raw value into a GroupBy.
// "", "none" and "null" all mean GroupNone. "assignee" is accepted as an
// alias of "assignees".
func ParseGroupBy(s string) (GroupBy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "null":
		return GroupNone, true
	case string(GroupState):
		return GroupState, true
	case string(GroupPriority):
		return GroupPriority, true
	case string(GroupAssignees), "assignee":
		return GroupAssignees, true
	}
	return "", false
}

// ParseOrderBy converts a raw value into an OrderBy.
func ParseOrderBy(s string) (OrderBy, bool) {
	switch OrderBy(strings.ToLower(strings.TrimSpace(s))) {
	case OrderCreatedAt:
		return OrderCreatedAt, true
	case OrderUpdatedAt:
		return OrderUpdatedAt, true
	case OrderPriority:
		return OrderPriority, true
	}
	return "", false
}

// ParseFilter converts a raw value into a Filter.
func ParseFilter(s string) (Filter, bool) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterAll:
		return FilterAll, true
	case FilterActive:
		return FilterActive, true
	case FilterBacklog:
		return FilterBacklog, true
	}
	return "", false
}

// Label returns the display name of the grouping key.
func (g GroupBy) Label() string {
	switch g {
	case GroupState:
		return "State"
	case GroupPriority:
		return "Priority"
	case GroupAssignees:
		return "Assignee"
	default:
		return "None"
	}
}

// Label returns the display name of the ordering key.
func (o OrderBy) Label() string {
	switch o {
	case OrderUpdatedAt:
		return "Last updated"
	case OrderPriority:
		return "Priority"
	default:
		return "Last created"
	}
}

// Label returns the display name of the filter.
func (f Filter) Label() string {
	switch f {
	case FilterActive:
		return "Active Issues"
	case FilterBacklog:
		return "Backlog Issues"
	default:
		return "All"
	}
}

// State is the active view preference. It is a value type; every
// transition produces a new State through Reduce.
type State struct {
	ViewMode ViewMode `json:"issueView" yaml:"view_mode"`
	GroupBy  GroupBy  `json:"group_by" yaml:"group_by"`
	OrderBy  OrderBy  `json:"order_by" yaml:"order_by"`
	Filter   Filter   `json:"type" yaml:"filter"`
}

// Defaults returns the hard-coded preference used before anything is
// remembered: list view, no grouping, newest first, all issues.
func Defaults() State {
	return State{
		ViewMode: ViewList,
		GroupBy:  GroupNone,
		OrderBy:  OrderCreatedAt,
		Filter:   FilterAll,
	}
}

// Valid reports whether every field holds a known value and the kanban
// layout is grouped by state.
func (s State) Valid() bool {
	if _, ok := ParseViewMode(string(s.ViewMode)); !ok {
		return false
	}
	if _, ok := ParseGroupBy(string(s.GroupBy)); !ok {
		return false
	}
	if _, ok := ParseOrderBy(string(s.OrderBy)); !ok {
		return false
	}
	if _, ok := ParseFilter(string(s.Filter)); !ok {
		return false
	}
	return s.ViewMode != ViewKanban || s.GroupBy == GroupState
}

// String renders the state as view/group/order/filter.
func (s State) String() string {
	group := string(s.GroupBy)
	if s.GroupBy == GroupNone {
		group = "none"
	}
	return fmt.Sprintf("%s/%s/%s/%s", s.ViewMode, group, s.OrderBy, s.Filter)
}

// Snapshot returns the persisted form of the state.
func (s State) Snapshot() Snapshot {
	snap := Snapshot{
		ViewMode: strPtr(string(s.ViewMode)),
		OrderBy:  strPtr(string(s.OrderBy)),
		Filter:   strPtr(string(s.Filter)),
	}
	if s.GroupBy != GroupNone {
		snap.GroupBy = strPtr(string(s.GroupBy))
	}
	return snap
}

func strPtr(s string) *string {
	return &s
}
