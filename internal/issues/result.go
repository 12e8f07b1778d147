package issues

import (
	"sort"

	"github.com/zjrosen/issueview/internal/preference"
)

// NoneKey is the group key for issues with no value for the grouping field.
const NoneKey = "None"

// AllIssuesKey is the single group used when a flat result is shown grouped.
const AllIssuesKey = "All Issues"

// Result is an issue projection: either a flat ordered list (Issues) or a
// mapping from group key to ordered list (Groups) with Keys giving a stable
// group order.
type Result struct {
	Issues []Issue
	Groups map[string][]Issue
	Keys   []string
}

// IsGrouped reports whether the result is partitioned into groups.
func (r Result) IsGrouped() bool {
	return r.Groups != nil
}

// Len returns the number of distinct issues in the result.
func (r Result) Len() int {
	if !r.IsGrouped() {
		return len(r.Issues)
	}
	seen := make(map[string]struct{})
	for _, list := range r.Groups {
		for _, issue := range list {
			seen[issue.ID] = struct{}{}
		}
	}
	return len(seen)
}

// Grouped returns the result as groups. A flat result is wrapped in a
// single "All Issues" group.
func (r Result) Grouped() (map[string][]Issue, []string) {
	if r.IsGrouped() {
		return r.Groups, r.Keys
	}
	return map[string][]Issue{AllIssuesKey: r.Issues}, []string{AllIssuesKey}
}

// Sort orders issues in place by the ordering key. Created and updated
// orderings are newest first; priority is most urgent first with newest
// first as the tie-break.
func Sort(list []Issue, by preference.OrderBy) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch by {
		case preference.OrderUpdatedAt:
			return a.UpdatedAt.After(b.UpdatedAt)
		case preference.OrderPriority:
			if a.Priority.Rank() != b.Priority.Rank() {
				return a.Priority.Rank() < b.Priority.Rank()
			}
			return a.CreatedAt.After(b.CreatedAt)
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}

// Project shapes an already ordered list into a Result. Group order follows
// first appearance for state and assignee grouping and urgency for priority
// grouping. An issue with several assignees appears in each of their groups.
func Project(ordered []Issue, by preference.GroupBy) Result {
	if by == preference.GroupNone {
		if ordered == nil {
			ordered = []Issue{}
		}
		return Result{Issues: ordered}
	}

	res := Result{Groups: make(map[string][]Issue)}
	add := func(key string, issue Issue) {
		if _, ok := res.Groups[key]; !ok {
			res.Keys = append(res.Keys, key)
		}
		res.Groups[key] = append(res.Groups[key], issue)
	}

	for _, issue := range ordered {
		switch by {
		case preference.GroupState:
			add(keyOrNone(issue.State), issue)
		case preference.GroupPriority:
			add(keyOrNone(string(issue.Priority)), issue)
		case preference.GroupAssignees:
			if len(issue.Assignees) == 0 {
				add(NoneKey, issue)
			}
			for _, assignee := range issue.Assignees {
				add(assignee, issue)
			}
		}
	}

	if by == preference.GroupPriority {
		sort.SliceStable(res.Keys, func(i, j int) bool {
			return priorityKeyRank(res.Keys[i]) < priorityKeyRank(res.Keys[j])
		})
	}
	return res
}

func keyOrNone(s string) string {
	if s == "" {
		return NoneKey
	}
	return s
}

func priorityKeyRank(key string) int {
	if key == NoneKey {
		return PriorityNone.Rank()
	}
	return Priority(key).Rank()
}
