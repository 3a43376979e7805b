package services

// ToggleState is the two-state membership behind follow, like and save.
// A toggle call moves from the current state to Next; there is no separate add or remove.
type ToggleState int

const (
	Inactive ToggleState = iota
	Active
)

// StateOf returns the state for a membership test
func StateOf(member bool) ToggleState {
	if member {
		return Active
	}
	return Inactive
}

// Next is the state after one toggle
func (s ToggleState) Next() ToggleState {
	if s == Active {
		return Inactive
	}
	return Active
}

// IsActive reports whether the membership is present
func (s ToggleState) IsActive() bool {
	return s == Active
}
