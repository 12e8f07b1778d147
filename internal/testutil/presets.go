package testutil

import "time"

// StandardProject is the project id used by WithStandardTestData.
const StandardProject = "proj-web"

// WithStandardTestData adds one project with issues spread over every state
// group, priority and assignee combination:
//
//	web-1 Todo        urgent  alice        created 3d ago, updated now
//	web-2 In Progress high    alice, bob   created 2d ago, updated 2d ago
//	web-3 Backlog     ""      -            created 1d ago, updated 1d ago
//	web-4 Done        low     bob          created 4d ago, updated 4h ago
//	web-5 Cancelled   medium  -            created now,    updated now
//	web-6 In Progress urgent  carol        created 5d ago, updated 1h ago
func (b *Builder) WithStandardTestData() *Builder {
	now := time.Now()
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	day := 24 * time.Hour

	return b.
		WithProject(StandardProject, "WEB").
		WithIssue(StandardProject, "web-1", Name("Login fails on Safari"), Todo(), Priority("urgent"),
			Assignees("alice"), CreatedAt(ago(3*day)), UpdatedAt(now)).
		WithIssue(StandardProject, "web-2", Name("Search results pagination"), InProgress(), Priority("high"),
			Assignees("alice", "bob"), CreatedAt(ago(2*day)), UpdatedAt(ago(2*day))).
		WithIssue(StandardProject, "web-3", Name("Dark mode"), Backlog(),
			CreatedAt(ago(day)), UpdatedAt(ago(day))).
		WithIssue(StandardProject, "web-4", Name("Update docs"), Done(), Priority("low"),
			Assignees("bob"), CreatedAt(ago(4*day)), UpdatedAt(ago(4*time.Hour))).
		WithIssue(StandardProject, "web-5", Name("Drop IE11"), Cancelled(), Priority("medium"),
			CreatedAt(now), UpdatedAt(now)).
		WithIssue(StandardProject, "web-6", Name("Checkout crash"), InProgress(), Priority("urgent"),
			Assignees("carol"), CreatedAt(ago(5*day)), UpdatedAt(ago(time.Hour)))
}
