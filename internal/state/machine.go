package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/quantmind-br/folio/internal/utils"
)

// Machine tracks the lifecycle of one build
type Machine struct {
	mu       sync.RWMutex
	current  Phase
	entered  time.Time
	history  []Transition
	listener Listener
	logger   *utils.Logger
	now      func() time.Time
}

// MachineOptions contains options for creating a Machine
type MachineOptions struct {
	Logger   *utils.Logger
	OnChange Listener
}

// NewMachine creates a machine in the Idle phase
func NewMachine(opts MachineOptions) *Machine {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	m := &Machine{
		current:  Idle,
		listener: opts.OnChange,
		logger:   logger,
		now:      time.Now,
	}
	m.entered = m.now()
	return m
}

// Current returns the current phase
func (m *Machine) Current() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Elapsed returns the time spent in the current phase so far
func (m *Machine) Elapsed() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now().Sub(m.entered)
}

// Advance moves to the given phase
func (m *Machine) Advance(to Phase) error {
	if to == Failed {
		return fmt.Errorf("%w: use Fail to enter %s", ErrInvalidTransition, Failed)
	}
	return m.transition(to, nil)
}

// Fail moves to Failed from any non-terminal phase
func (m *Machine) Fail(cause error) error {
	return m.transition(Failed, cause)
}

func (m *Machine) transition(to Phase, cause error) error {
	m.mu.Lock()
	from := m.current
	if from.IsTerminal() {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTerminal, from)
	}
	if !CanTransition(from, to) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	now := m.now()
	t := Transition{From: from, To: to, At: now, Elapsed: now.Sub(m.entered), Err: cause}
	m.current = to
	m.entered = now
	m.history = append(m.history, t)
	listener := m.listener
	m.mu.Unlock()

	event := m.logger.Debug()
	if cause != nil {
		event = m.logger.Debug().Err(cause)
	}
	event.
		Str("from", string(from)).
		Str("to", string(to)).
		Dur("elapsed", t.Elapsed).
		Msg("State transition")

	if listener != nil {
		listener(t)
	}
	return nil
}

// History returns a copy of all transitions so far
func (m *Machine) History() []Transition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Transition, len(m.history))
	copy(out, m.history)
	return out
}

// Durations returns the time spent in each phase that has been left
func (m *Machine) Durations() map[Phase]time.Duration {
	history := m.History()
	out := make(map[Phase]time.Duration, len(history))
	for _, t := range history {
		out[t.From] += t.Elapsed
	}
	return out
}
