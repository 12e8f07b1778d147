package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/issueview/internal/log"
	"github.com/zjrosen/issueview/internal/preference"
	"github.com/zjrosen/issueview/internal/tracing"
)

const tracerName = "github.com/zjrosen/issueview/internal/infrastructure/sqlite"

// PreferenceRepository stores remembered preferences in
// project_member_views, scoped to one user.
type PreferenceRepository struct {
	db     *sql.DB
	userID string
	now    func() time.Time
}

// NewPreferenceRepository creates a repository bound to userID.
func NewPreferenceRepository(db *sql.DB, userID string) *PreferenceRepository {
	return &PreferenceRepository{db: db, userID: userID, now: time.Now}
}

var _ preference.Gateway = (*PreferenceRepository)(nil)

// Load returns both slots for the project, or preference.ErrNotFound when
// the user has no record. A slot holding unreadable JSON is treated as
// absent.
func (r *PreferenceRepository) Load(ctx context.Context, projectID string) (preference.Remembered, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, tracing.SpanRepoLoad)
	defer span.End()
	span.SetAttributes(
		attribute.String(tracing.AttrProjectID, projectID),
		attribute.String(tracing.AttrUserID, r.userID),
	)

	var m ViewModel
	err := r.db.QueryRowContext(ctx,
		`SELECT project_id, user_id, view_props, default_props, updated_at
		   FROM project_member_views
		  WHERE project_id = ? AND user_id = ?`,
		projectID, r.userID,
	).Scan(&m.ProjectID, &m.UserID, &m.ViewProps, &m.DefaultProps, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return preference.Remembered{}, preference.ErrNotFound
	}
	if err != nil {
		tracing.RecordError(span, err)
		return preference.Remembered{}, fmt.Errorf("load remembered preference: %w", err)
	}

	return preference.Remembered{
		Current: r.decodeSlot(projectID, "current", m.ViewProps),
		Default: r.decodeSlot(projectID, "default", m.DefaultProps),
	}, nil
}

func (r *PreferenceRepository) decodeSlot(projectID, slot string, raw *string) *preference.Snapshot {
	if raw == nil || *raw == "" {
		return nil
	}
	snap, err := preference.UnmarshalSnapshot(*raw)
	if err != nil {
		log.Warn(log.CatDB, "ignoring unreadable preference slot",
			"project", projectID, "user", r.userID, "slot", slot, "error", err)
		return nil
	}
	return &snap
}

// Save writes the current slot, leaving the default slot untouched.
func (r *PreferenceRepository) Save(ctx context.Context, projectID string, current preference.Snapshot) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, tracing.SpanRepoSave)
	defer span.End()
	span.SetAttributes(
		attribute.String(tracing.AttrProjectID, projectID),
		attribute.String(tracing.AttrPrefSlot, "current"),
	)

	raw, err := preference.MarshalSnapshot(current)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO project_member_views (project_id, user_id, view_props, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (project_id, user_id) DO UPDATE SET
		     view_props = excluded.view_props,
		     updated_at = excluded.updated_at`,
		projectID, r.userID, raw, r.now().UnixMilli(),
	)
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("save current preference: %w", err)
	}
	return nil
}

// SaveAsDefault writes the snapshot into both slots.
func (r *PreferenceRepository) SaveAsDefault(ctx context.Context, projectID string, snapshot preference.Snapshot) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, tracing.SpanRepoSave)
	defer span.End()
	span.SetAttributes(
		attribute.String(tracing.AttrProjectID, projectID),
		attribute.String(tracing.AttrPrefSlot, "default"),
	)

	raw, err := preference.MarshalSnapshot(snapshot)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO project_member_views (project_id, user_id, view_props, default_props, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (project_id, user_id) DO UPDATE SET
		     view_props = excluded.view_props,
		     default_props = excluded.default_props,
		     updated_at = excluded.updated_at`,
		projectID, r.userID, raw, raw, r.now().UnixMilli(),
	)
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("save default preference: %w", err)
	}
	return nil
}
