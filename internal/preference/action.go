package preference

// ActionType identifies a preference transition.
type ActionType int

const (
	ActionRehydrate ActionType = iota
	ActionSetViewMode
	ActionSetGroupBy
	ActionSetOrderBy
	ActionSetFilter
	ActionResetToDefault
)

func (t ActionType) String() string {
	switch t {
	case ActionRehydrate:
		return "REHYDRATE"
	case ActionSetViewMode:
		return "SET_VIEW_MODE"
	case ActionSetGroupBy:
		return "SET_GROUP_BY"
	case ActionSetOrderBy:
		return "SET_ORDER_BY"
	case ActionSetFilter:
		return "SET_FILTER"
	case ActionResetToDefault:
		return "RESET_TO_DEFAULT"
	default:
		return "UNKNOWN"
	}
}

// Field is the raw payload of a SET_* action. Set is false when the caller
// supplied no value, which some transitions treat differently from a value
// that fails to parse.
type Field struct {
	Value string
	Set   bool
}

// Value returns a present payload field.
func Value(s string) Field {
	return Field{Value: s, Set: true}
}

// Missing is an absent payload field.
var Missing = Field{}

// Action is a preference transition. SET_* actions carry Field; REHYDRATE and
// RESET_TO_DEFAULT carry Snapshot.
type Action struct {
	Type     ActionType
	Field    Field
	Snapshot Snapshot
}

// Rehydrate replaces the whole state with snapshot merged over Defaults.
func Rehydrate(snapshot Snapshot) Action {
	return Action{Type: ActionRehydrate, Snapshot: snapshot}
}

// ResetToDefault replaces the whole state with the remembered default slot.
func ResetToDefault(snapshot Snapshot) Action {
	return Action{Type: ActionResetToDefault, Snapshot: snapshot}
}

// SetViewMode switches the layout.
func SetViewMode(mode ViewMode) Action {
	return Action{Type: ActionSetViewMode, Field: Value(string(mode))}
}

// SetGroupBy changes the grouping key.
func SetGroupBy(key GroupBy) Action {
	return Action{Type: ActionSetGroupBy, Field: Value(string(key))}
}

// SetOrderBy changes the ordering key.
func SetOrderBy(key OrderBy) Action {
	return Action{Type: ActionSetOrderBy, Field: Value(string(key))}
}

// SetFilter changes the visible state groups.
func SetFilter(key Filter) Action {
	return Action{Type: ActionSetFilter, Field: Value(string(key))}
}

// Set builds a SET_* action from an unvalidated payload, as received from a
// command line or a remote caller.
func Set(t ActionType, field Field) Action {
	return Action{Type: t, Field: field}
}
