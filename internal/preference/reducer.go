package preference

// Reduce applies an action to a state and returns the next state.
//
// Reduce is pure and total. Every result satisfies State.Valid when the
// input does:
//   - REHYDRATE and RESET_TO_DEFAULT replace the whole state; a field missing
//     from the snapshot falls back to Defaults, never to the prior state.
//   - A SET_* payload that does not parse leaves that field unchanged.
//   - SET_VIEW_MODE couples grouping: kanban groups by state, list clears it.
//     An absent mode means list.
//   - SET_GROUP_BY with an absent key clears grouping. While in kanban only
//     the state grouping is accepted; any other key is ignored.
//   - SET_ORDER_BY with an absent key keeps the current ordering.
//   - SET_FILTER with an absent key shows all issues.
func Reduce(s State, a Action) State {
	switch a.Type {
	case ActionRehydrate, ActionResetToDefault:
		return a.Snapshot.State()

	case ActionSetViewMode:
		mode := ViewList
		if a.Field.Set {
			parsed, ok := ParseViewMode(a.Field.Value)
			if !ok {
				return s
			}
			mode = parsed
		}
		s.ViewMode = mode
		if mode == ViewKanban {
			s.GroupBy = GroupState
		} else {
			s.GroupBy = GroupNone
		}
		return s

	case ActionSetGroupBy:
		key := GroupNone
		if a.Field.Set {
			parsed, ok := ParseGroupBy(a.Field.Value)
			if !ok {
				return s
			}
			key = parsed
		}
		if s.ViewMode == ViewKanban && key != GroupState {
			return s
		}
		s.GroupBy = key
		return s

	case ActionSetOrderBy:
		if !a.Field.Set {
			return s
		}
		key, ok := ParseOrderBy(a.Field.Value)
		if !ok {
			return s
		}
		s.OrderBy = key
		return s

	case ActionSetFilter:
		key := FilterAll
		if a.Field.Set {
			parsed, ok := ParseFilter(a.Field.Value)
			if !ok {
				return s
			}
			key = parsed
		}
		s.Filter = key
		return s
	}
	return s
}
