package testutil

import "time"

// issueData holds all data for an issue to be inserted.
type issueData struct {
	id         string
	projectID  string
	sequenceID int
	name       string
	stateName  string
	stateGroup string
	priority   string
	assignees  []string
	createdAt  time.Time
	updatedAt  time.Time
}

// IssueOption configures an issue during builder setup.
type IssueOption func(*issueData)

// Name sets the issue title.
func Name(name string) IssueOption {
	return func(i *issueData) { i.name = name }
}

// State sets the workflow state name and its lifecycle group.
func State(name, group string) IssueOption {
	return func(i *issueData) {
		i.stateName = name
		i.stateGroup = group
	}
}

// Backlog, Todo, InProgress, Done and Cancelled are the default workflow.
func Backlog() IssueOption    { return State("Backlog", "backlog") }
func Todo() IssueOption       { return State("Todo", "unstarted") }
func InProgress() IssueOption { return State("In Progress", "started") }
func Done() IssueOption       { return State("Done", "completed") }
func Cancelled() IssueOption  { return State("Cancelled", "cancelled") }

// Priority sets the priority (urgent, high, medium, low or "").
func Priority(p string) IssueOption {
	return func(i *issueData) { i.priority = p }
}

// Assignees adds assignees.
func Assignees(users ...string) IssueOption {
	return func(i *issueData) { i.assignees = append(i.assignees, users...) }
}

// Sequence sets the per-project sequence number.
func Sequence(n int) IssueOption {
	return func(i *issueData) { i.sequenceID = n }
}

// CreatedAt sets the created_at timestamp.
func CreatedAt(t time.Time) IssueOption {
	return func(i *issueData) { i.createdAt = t }
}

// UpdatedAt sets the updated_at timestamp.
func UpdatedAt(t time.Time) IssueOption {
	return func(i *issueData) { i.updatedAt = t }
}
