// Package presentation renders preferences, issue lists and projects for the
// command line.
package presentation

import (
	"fmt"

	"github.com/zjrosen/issueview/internal/issuelist"
	"github.com/zjrosen/issueview/internal/issues"
	"github.com/zjrosen/issueview/internal/preference"
)

// PreferenceDTO is a view preference with the "no grouping" key spelled
// out.
type PreferenceDTO struct {
	ViewMode string `json:"view_mode" yaml:"view_mode"`
	GroupBy  string `json:"group_by" yaml:"group_by"`
	OrderBy  string `json:"order_by" yaml:"order_by"`
	Filter   string `json:"filter" yaml:"filter"`
}

// IssueDTO is one issue line.
type IssueDTO struct {
	Key       string   `json:"key" yaml:"key"`
	Name      string   `json:"name" yaml:"name"`
	State     string   `json:"state" yaml:"state"`
	Priority  string   `json:"priority" yaml:"priority"`
	Assignees []string `json:"assignees,omitempty" yaml:"assignees,omitempty"`
}

// GroupDTO is one group of a grouped list.
type GroupDTO struct {
	Key    string     `json:"key" yaml:"key"`
	Issues []IssueDTO `json:"issues" yaml:"issues"`
}

// ShowDTO is everything `show` prints.
type ShowDTO struct {
	Project    string        `json:"project" yaml:"project"`
	User       string        `json:"user,omitempty" yaml:"user,omitempty"`
	Preference PreferenceDTO `json:"preference" yaml:"preference"`
	Status     string        `json:"status" yaml:"status"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
	Total      int           `json:"total" yaml:"total"`
	Issues     []IssueDTO    `json:"issues,omitempty" yaml:"issues,omitempty"`
	Groups     []GroupDTO    `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// FromState converts a preference.
func FromState(s preference.State) PreferenceDTO {
	group := string(s.GroupBy)
	if s.GroupBy == preference.GroupNone {
		group = "none"
	}
	return PreferenceDTO{
		ViewMode: string(s.ViewMode),
		GroupBy:  group,
		OrderBy:  string(s.OrderBy),
		Filter:   string(s.Filter),
	}
}

// FromIssue converts an issue. The key is IDENTIFIER-SEQUENCE when the
// project identifier is known.
func FromIssue(identifier string, i issues.Issue) IssueDTO {
	key := i.ID
	if identifier != "" && i.SequenceID > 0 {
		key = fmt.Sprintf("%s-%d", identifier, i.SequenceID)
	}
	priority := string(i.Priority)
	if priority == "" {
		priority = "none"
	}
	return IssueDTO{
		Key:       key,
		Name:      i.Name,
		State:     i.State,
		Priority:  priority,
		Assignees: i.Assignees,
	}
}

// FromView builds the show output for a project, the active preference and
// the issue list. The list is omitted while nothing has been fetched.
func FromView(project issues.ProjectSummary, user string, state preference.State, v issuelist.View) ShowDTO {
	dto := ShowDTO{
		Project:    project.Identifier,
		User:       user,
		Preference: FromState(state),
		Status:     v.Status.String(),
	}
	if dto.Project == "" {
		dto.Project = project.ID
	}
	if v.Err != nil {
		dto.Error = v.Err.Error()
	}
	if v.Result == nil {
		return dto
	}

	res := *v.Result
	dto.Total = res.Len()
	if !res.IsGrouped() {
		dto.Issues = fromIssues(project.Identifier, res.Issues)
		return dto
	}
	for _, key := range res.Keys {
		dto.Groups = append(dto.Groups, GroupDTO{
			Key:    key,
			Issues: fromIssues(project.Identifier, res.Groups[key]),
		})
	}
	return dto
}

func fromIssues(identifier string, list []issues.Issue) []IssueDTO {
	out := make([]IssueDTO, 0, len(list))
	for _, i := range list {
		out = append(out, FromIssue(identifier, i))
	}
	return out
}
