package preference

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Gateway.Load when no record exists for the
// project and user.
var ErrNotFound = errors.New("remembered preference not found")

// Gateway loads and stores the remembered preference for one user.
// Implementations are keyed by (project, user) with the user bound at
// construction. Writes are blind: the last save wins.
type Gateway interface {
	// Load returns both slots of the record, or ErrNotFound.
	Load(ctx context.Context, projectID string) (Remembered, error)

	// Save updates the current slot only.
	Save(ctx context.Context, projectID string, current Snapshot) error

	// SaveAsDefault writes the snapshot into both the current and the
	// default slot.
	SaveAsDefault(ctx context.Context, projectID string, snapshot Snapshot) error
}
