package ticket

import "aetherticket/storage"

// State is the per-channel lifecycle state. The repository only stores the
// open/closed distinction; NoRecord and Deleted are observed states, not
// persisted ones.
type State int

const (
	StateNoRecord State = iota
	StateOpen
	StateClosed
	StateDeleted
)

func (s State) String() string {
	switch s {
	case StateNoRecord:
		return "no-record"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// transitions is the legal lifecycle:
//
//	no-record -> open    (create, including reconciliation)
//	open      -> open    (add-participant, side effect only)
//	open      -> closed  (close)
//	closed    -> deleted (deferred deletion)
//
// Closed without deletion permission is terminal by fallback; Deleted is
// terminal.
var transitions = map[State]map[State]bool{
	StateNoRecord: {StateOpen: true},
	StateOpen:     {StateOpen: true, StateClosed: true},
	StateClosed:   {StateDeleted: true},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to State) bool {
	return transitions[from][to]
}

// StateOf derives the lifecycle state from a repository record.
func StateOf(rec *storage.TicketRecord) State {
	switch {
	case rec == nil:
		return StateNoRecord
	case rec.Open():
		return StateOpen
	default:
		return StateClosed
	}
}
