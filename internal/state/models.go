package state

import "time"

// Phase is a stage of the build lifecycle
type Phase string

const (
	Idle      Phase = "idle"
	Reading   Phase = "reading"
	Rendering Phase = "rendering"
	Writing   Phase = "writing"
	Done      Phase = "done"
	Failed    Phase = "failed"
)

// next lists the forward transitions. Failed is reachable from every
// non-terminal phase and is not listed.
var next = map[Phase]Phase{
	Idle:      Reading,
	Reading:   Rendering,
	Rendering: Writing,
	Writing:   Done,
}

// IsTerminal returns true for Done and Failed
func (p Phase) IsTerminal() bool {
	return p == Done || p == Failed
}

// CanTransition reports whether the lifecycle allows from -> to
func CanTransition(from, to Phase) bool {
	if from.IsTerminal() {
		return false
	}
	if to == Failed {
		return true
	}
	return next[from] == to
}

// Transition records one phase change
type Transition struct {
	From Phase     `json:"from"`
	To   Phase     `json:"to"`
	At   time.Time `json:"at"`
	// Elapsed is the time spent in From
	Elapsed time.Duration `json:"elapsed"`
	// Err is set on transitions to Failed
	Err error `json:"-"`
}

// Listener observes transitions. It is called after the machine state is
// updated and outside of any lock.
type Listener func(Transition)
