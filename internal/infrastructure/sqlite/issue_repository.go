package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/issueview/internal/issues"
	"github.com/zjrosen/issueview/internal/preference"
	"github.com/zjrosen/issueview/internal/tracing"
)

// issueColumns selects an issue with its assignees folded into one
// comma separated, alphabetically ordered column.
const issueColumns = `i.id, i.project_id, i.sequence_id, i.name, i.state_name, i.state_group, i.priority,
	(SELECT group_concat(assignee, ',') FROM (
		SELECT assignee FROM issue_assignees WHERE issue_id = i.id ORDER BY assignee
	)) AS assignees,
	i.created_at, i.updated_at`

// IssueRepository implements issues.Source over the issues tables.
type IssueRepository struct {
	db *sql.DB
}

// NewIssueRepository creates an issue source.
func NewIssueRepository(db *sql.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

var _ issues.Source = (*IssueRepository)(nil)

func scanIssue(scanner interface{ Scan(...any) error }) (*IssueModel, error) {
	var m IssueModel
	err := scanner.Scan(
		&m.ID, &m.ProjectID, &m.SequenceID, &m.Name, &m.StateName, &m.StateGroup, &m.Priority,
		&m.Assignees, &m.CreatedAt, &m.UpdatedAt,
	)
	return &m, err
}

// orderClause maps an ordering key to SQL. Every branch is newest first on
// ties so results match issues.Sort.
func orderClause(by preference.OrderBy) string {
	switch by {
	case preference.OrderUpdatedAt:
		return `i.updated_at DESC, i.sequence_id DESC`
	case preference.OrderPriority:
		return `CASE i.priority
			WHEN 'urgent' THEN 0
			WHEN 'high' THEN 1
			WHEN 'medium' THEN 2
			WHEN 'low' THEN 3
			ELSE 4 END ASC, i.created_at DESC, i.sequence_id DESC`
	default:
		return `i.created_at DESC, i.sequence_id DESC`
	}
}

// Fetch returns the project's issues visible under q.Filter, ordered by
// q.OrderBy and grouped by q.GroupBy.
func (r *IssueRepository) Fetch(ctx context.Context, projectID string, q issues.Query) (issues.Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, tracing.SpanRepoFetch)
	defer span.End()
	span.SetAttributes(
		attribute.String(tracing.AttrProjectID, projectID),
		attribute.String(tracing.AttrFetchGroupBy, string(q.GroupBy)),
		attribute.String(tracing.AttrFetchOrderBy, string(q.OrderBy)),
		attribute.String(tracing.AttrFetchFilter, string(q.Filter)),
	)

	groups := issues.StateGroups(q.Filter)
	placeholders := make([]string, len(groups))
	args := make([]any, 0, len(groups)+1)
	args = append(args, projectID)
	for i, g := range groups {
		placeholders[i] = "?"
		args = append(args, string(g))
	}

	query := `SELECT ` + issueColumns + `
		FROM issues i
		WHERE i.project_id = ? AND i.state_group IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY ` + orderClause(q.OrderBy)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		tracing.RecordError(span, err)
		return issues.Result{}, fmt.Errorf("query issues: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ordered := make([]issues.Issue, 0)
	for rows.Next() {
		m, err := scanIssue(rows)
		if err != nil {
			tracing.RecordError(span, err)
			return issues.Result{}, fmt.Errorf("scan issue: %w", err)
		}
		ordered = append(ordered, m.toDomain())
	}
	if err := rows.Err(); err != nil {
		tracing.RecordError(span, err)
		return issues.Result{}, fmt.Errorf("iterate issues: %w", err)
	}

	span.SetAttributes(attribute.Int(tracing.AttrFetchCount, len(ordered)))
	return issues.Project(ordered, q.GroupBy), nil
}

const projectColumns = `p.id, p.identifier, p.name, p.created_at,
	(SELECT COUNT(*) FROM issues WHERE project_id = p.id) AS issue_count`

func scanProject(scanner interface{ Scan(...any) error }) (*ProjectModel, error) {
	var m ProjectModel
	err := scanner.Scan(&m.ID, &m.Identifier, &m.Name, &m.CreatedAt, &m.IssueCount)
	return &m, err
}

// Projects lists every project ordered by name.
func (r *IssueRepository) Projects(ctx context.Context) ([]issues.ProjectSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects p ORDER BY p.name, p.id`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []issues.ProjectSummary
	for rows.Next() {
		m, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, m.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return out, nil
}

// Project looks up one project by id or identifier.
func (r *IssueRepository) Project(ctx context.Context, idOrIdentifier string) (issues.ProjectSummary, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects p WHERE p.id = ? OR p.identifier = ? ORDER BY p.id = ? DESC LIMIT 1`,
		idOrIdentifier, idOrIdentifier, idOrIdentifier,
	)
	m, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return issues.ProjectSummary{}, fmt.Errorf("%w: %s", issues.ErrProjectNotFound, idOrIdentifier)
	}
	if err != nil {
		return issues.ProjectSummary{}, fmt.Errorf("find project: %w", err)
	}
	return m.toDomain(), nil
}
