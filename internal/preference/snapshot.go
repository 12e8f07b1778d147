package preference

import (
	"encoding/json"
	"fmt"
)

// Snapshot is a preference as stored by the remembered-preference record.
// Fields are optional: a record written by an older client may carry only
// some of them. A nil GroupBy means no grouping.
type Snapshot struct {
	ViewMode *string `json:"issueView,omitempty"`
	GroupBy  *string `json:"group_by"`
	OrderBy  *string `json:"order_by,omitempty"`
	Filter   *string `json:"type,omitempty"`
}

// State merges the snapshot over Defaults. Missing or unrecognized fields
// take the default value. A kanban snapshot is always grouped by state.
func (s Snapshot) State() State {
	st := Defaults()
	if s.ViewMode != nil {
		if v, ok := ParseViewMode(*s.ViewMode); ok {
			st.ViewMode = v
		}
	}
	if s.GroupBy != nil {
		if g, ok := ParseGroupBy(*s.GroupBy); ok {
			st.GroupBy = g
		}
	}
	if s.OrderBy != nil {
		if o, ok := ParseOrderBy(*s.OrderBy); ok {
			st.OrderBy = o
		}
	}
	if s.Filter != nil {
		if f, ok := ParseFilter(*s.Filter); ok {
			st.Filter = f
		}
	}
	if st.ViewMode == ViewKanban {
		st.GroupBy = GroupState
	}
	return st
}

// MarshalSnapshot encodes a snapshot for storage.
func MarshalSnapshot(s Snapshot) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding preference snapshot: %w", err)
	}
	return string(data), nil
}

// UnmarshalSnapshot decodes a stored snapshot.
func UnmarshalSnapshot(raw string) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Snapshot{}, fmt.Errorf("decoding preference snapshot: %w", err)
	}
	return s, nil
}

// Remembered is the (project, user) record held by the persistence side.
// Current is restored on the next visit; Default is restored only by an
// explicit reset. Either slot may be absent.
type Remembered struct {
	Current *Snapshot
	Default *Snapshot
}
