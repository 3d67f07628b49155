// Package interaction holds the per-view request state machine:
// Idle -> Loading -> Success | Error -> Idle.
package interaction

// Phase is the tag of a State.
type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Error
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// State is one snapshot of a Machine. Payload is set only in Success,
// Message only in Error.
type State[T any] struct {
	Phase   Phase
	Payload T
	Message string
}

// Ticket identifies one submission. Completions and timers holding an older
// ticket are stale and ignored.
type Ticket uint64

// Machine is owned by a single view and is not safe for concurrent use;
// Bubble Tea calls Update from one goroutine.
type Machine[T any] struct {
	state  State[T]
	ticket Ticket
	closed bool
}

// State returns the current snapshot.
func (m *Machine[T]) State() State[T] { return m.state }

// Phase is shorthand for State().Phase.
func (m *Machine[T]) Phase() Phase { return m.state.Phase }

// Busy reports whether a submission is in flight.
func (m *Machine[T]) Busy() bool { return m.state.Phase == Loading }

// Submit moves to Loading and returns the ticket the completion must carry.
// It refuses while Loading or after Close.
func (m *Machine[T]) Submit() (Ticket, bool) {
	if m.closed || m.state.Phase == Loading {
		return 0, false
	}
	m.ticket++
	m.state = State[T]{Phase: Loading}
	return m.ticket, true
}

// Resolve stores payload and moves to Success.
func (m *Machine[T]) Resolve(t Ticket, payload T) bool {
	if !m.current(t) || m.state.Phase != Loading {
		return false
	}
	m.state = State[T]{Phase: Success, Payload: payload}
	return true
}

// Fail stores a human-readable message and moves to Error.
func (m *Machine[T]) Fail(t Ticket, message string) bool {
	if !m.current(t) || m.state.Phase != Loading {
		return false
	}
	m.state = State[T]{Phase: Error, Message: message}
	return true
}

// Dismiss returns a Success to Idle. Used by the auto-dismiss timer.
func (m *Machine[T]) Dismiss(t Ticket) bool {
	if !m.current(t) || m.state.Phase != Success {
		return false
	}
	m.state = State[T]{Phase: Idle}
	return true
}

// Close invalidates every outstanding ticket. After Close no completion or
// timer can change the state and Submit is refused.
func (m *Machine[T]) Close() {
	m.closed = true
	m.ticket++
}

func (m *Machine[T]) current(t Ticket) bool {
	return !m.closed && t == m.ticket
}
