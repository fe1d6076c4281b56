package shared

import "fmt"

// Transitions is a status transition table: each status maps to the
// statuses it may move to. A status with no entry is terminal.
type Transitions[S ~string] map[S][]S

// Allows reports whether from -> to is a permitted transition
func (t Transitions[S]) Allows(from, to S) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the status
func (t Transitions[S]) IsTerminal(status S) bool {
	return len(t[status]) == 0
}

// Guard returns a state error when from -> to is not in the table
func (t Transitions[S]) Guard(entity string, from, to S) error {
	if t.Allows(from, to) {
		return nil
	}
	return NewStateError("INVALID_TRANSITION", fmt.Sprintf("%s cannot transition from %s to %s", entity, from, to))
}
