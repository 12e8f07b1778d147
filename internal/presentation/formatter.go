package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/issueview/internal/issues"
)

// Format is an output format.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat parses text, yaml or json. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (must be text, yaml or json)", s)
	}
}

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	format Format
	styles styles
}

type styles struct {
	title    lipgloss.Style
	label    lipgloss.Style
	group    lipgloss.Style
	key      lipgloss.Style
	muted    lipgloss.Style
	errorMsg lipgloss.Style
}

// NewFormatter creates a formatter. Text output is styled for the terminal
// behind writer and degrades to plain text elsewhere.
func NewFormatter(writer io.Writer, format Format) *Formatter {
	r := lipgloss.NewRenderer(writer)
	return &Formatter{
		writer: writer,
		format: format,
		styles: styles{
			title:    r.NewStyle().Bold(true),
			label:    r.NewStyle().Foreground(lipgloss.Color("#888888")),
			group:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#54A0FF")),
			key:      r.NewStyle().Foreground(lipgloss.Color("#73F59F")),
			muted:    r.NewStyle().Foreground(lipgloss.Color("#BBBBBB")),
			errorMsg: r.NewStyle().Foreground(lipgloss.Color("#FF8787")),
		},
	}
}

// IsText reports whether output is human-readable text.
func (f *Formatter) IsText() bool {
	return f.format == FormatText
}

// FormatShow prints a preference and its issue list.
func (f *Formatter) FormatShow(dto ShowDTO) error {
	if f.format != FormatText {
		return f.Encode(dto)
	}

	var b strings.Builder
	s := f.styles
	fmt.Fprintln(&b, s.title.Render("Project "+dto.Project))
	f.writePreference(&b, dto.Preference)
	fmt.Fprintf(&b, "%s %s (%d issues)\n", s.label.Render("status:"), dto.Status, dto.Total)
	if dto.Error != "" {
		fmt.Fprintln(&b, s.errorMsg.Render("error: "+dto.Error))
	}

	if dto.Groups == nil {
		for _, issue := range dto.Issues {
			f.writeIssue(&b, "  ", issue)
		}
	}
	for _, g := range dto.Groups {
		fmt.Fprintf(&b, "\n%s %s\n", s.group.Render(g.Key), s.muted.Render(fmt.Sprintf("(%d)", len(g.Issues))))
		for _, issue := range g.Issues {
			f.writeIssue(&b, "  ", issue)
		}
	}

	_, err := io.WriteString(f.writer, b.String())
	return err
}

// FormatPreference prints only a preference.
func (f *Formatter) FormatPreference(dto PreferenceDTO) error {
	if f.format != FormatText {
		return f.Encode(dto)
	}
	var b strings.Builder
	f.writePreference(&b, dto)
	_, err := io.WriteString(f.writer, b.String())
	return err
}

// FormatProjects prints a project table, marking the active project.
func (f *Formatter) FormatProjects(projects []issues.ProjectSummary, active string) error {
	if f.format != FormatText {
		return f.Encode(projects)
	}
	if len(projects) == 0 {
		_, err := fmt.Fprintln(f.writer, f.styles.muted.Render("no projects"))
		return err
	}

	width := 0
	for _, p := range projects {
		width = max(width, len(p.Identifier))
	}

	var b strings.Builder
	for _, p := range projects {
		marker := "  "
		if p.ID == active || (active != "" && p.Identifier == active) {
			marker = "* "
		}
		ident := fmt.Sprintf("%-*s", width, p.Identifier)
		fmt.Fprintf(&b, "%s%s  %s %s\n", marker, f.styles.key.Render(ident), p.Name,
			f.styles.muted.Render(fmt.Sprintf("(%s, %d issues)", p.ID, p.IssueCount)))
	}
	_, err := io.WriteString(f.writer, b.String())
	return err
}

func (f *Formatter) writePreference(b *strings.Builder, p PreferenceDTO) {
	s := f.styles
	fmt.Fprintf(b, "%s %s  %s %s  %s %s  %s %s\n",
		s.label.Render("view:"), p.ViewMode,
		s.label.Render("group:"), p.GroupBy,
		s.label.Render("order:"), p.OrderBy,
		s.label.Render("filter:"), p.Filter,
	)
}

func (f *Formatter) writeIssue(b *strings.Builder, indent string, i IssueDTO) {
	line := fmt.Sprintf("%s%s %s %s", indent, f.styles.key.Render(i.Key), i.Name,
		f.styles.muted.Render(fmt.Sprintf("[%s, %s]", i.State, i.Priority)))
	if len(i.Assignees) > 0 {
		line += " " + f.styles.muted.Render("@"+strings.Join(i.Assignees, " @"))
	}
	fmt.Fprintln(b, line)
}

// Encode writes v as YAML when the format is yaml and as indented JSON
// otherwise.
func (f *Formatter) Encode(v any) error {
	switch f.format {
	case FormatYAML:
		enc := yaml.NewEncoder(f.writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		encoder := json.NewEncoder(f.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	}
}
