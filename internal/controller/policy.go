package controller

import (
	"fmt"
	"strings"
)

// RehydratePolicy decides what happens when the remembered preference
// arrives after the user already changed the view locally.
type RehydratePolicy int

const (
	// RehydrateSuppress keeps the local state once any transition has been
	// applied. The remembered record is only restored into an untouched view.
	RehydrateSuppress RehydratePolicy = iota
	// RehydrateOverwrite always restores the remembered record, replacing
	// whatever the user did while it was loading.
	RehydrateOverwrite
)

func (p RehydratePolicy) String() string {
	switch p {
	case RehydrateSuppress:
		return "suppress"
	case RehydrateOverwrite:
		return "overwrite"
	default:
		return fmt.Sprintf("RehydratePolicy(%d)", int(p))
	}
}

// ParseRehydratePolicy parses "suppress" or "overwrite". Empty means suppress.
func ParseRehydratePolicy(s string) (RehydratePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "suppress":
		return RehydrateSuppress, nil
	case "overwrite":
		return RehydrateOverwrite, nil
	default:
		return RehydrateSuppress, fmt.Errorf("invalid rehydrate policy %q (must be suppress or overwrite)", s)
	}
}
