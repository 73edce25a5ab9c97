package ingest

import "fmt"

// State is a stage of the batch state machine.
type State string

const (
	StateIdle       State = "idle"
	StateScanning   State = "scanning"
	StatePreparing  State = "preparing"
	StateProcessing State = "processing"
	StatePersisting State = "persisting"
	StateDone       State = "done"
	StateAborted    State = "aborted"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted
}

// Machine tracks a single run through its states. Persisting is reachable
// only from a run in which every item was processed, which is what keeps a
// failed run from ever writing the catalog.
type Machine struct {
	state State
	total int
	index int
}

// NewMachine returns a machine in the idle state.
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Completed returns the number of items processed successfully so far.
func (m *Machine) Completed() int { return m.index }

// Total returns the number of scanned items.
func (m *Machine) Total() int { return m.total }

// Scan moves idle to scanning.
func (m *Machine) Scan() error {
	return m.transition(StateScanning)
}

// Prepare records the number of scanned items and moves to preparing.
func (m *Machine) Prepare(total int) error {
	if total < 0 {
		return fmt.Errorf("invalid item count %d", total)
	}
	if err := m.transition(StatePreparing); err != nil {
		return err
	}
	m.total = total
	return nil
}

// Begin enters processing at the first item.
func (m *Machine) Begin() error {
	if err := m.transition(StateProcessing); err != nil {
		return err
	}
	m.index = 0
	return nil
}

// Complete marks the current item as successfully processed.
func (m *Machine) Complete() error {
	if m.state != StateProcessing {
		return fmt.Errorf("disallowed transition: %s -> %s(%d)", m.state, StateProcessing, m.index+1)
	}
	if m.index >= m.total {
		return fmt.Errorf("item %d exceeds scanned count %d", m.index+1, m.total)
	}
	m.index++
	return nil
}

// Persist moves to persisting once every item has been processed.
func (m *Machine) Persist() error {
	if m.state == StateProcessing && m.index != m.total {
		return fmt.Errorf("disallowed transition: %s -> %s with %d of %d items processed", m.state, StatePersisting, m.index, m.total)
	}
	return m.transition(StatePersisting)
}

// Finish moves persisting to done.
func (m *Machine) Finish() error {
	return m.transition(StateDone)
}

// Abort moves any active state to aborted.
func (m *Machine) Abort() error {
	return m.transition(StateAborted)
}

func (m *Machine) transition(to State) error {
	if !isAllowedTransition(m.state, to) {
		return fmt.Errorf("disallowed transition: %s -> %s", m.state, to)
	}
	m.state = to
	return nil
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateScanning
	case StateScanning:
		return to == StatePreparing || to == StateAborted
	case StatePreparing:
		return to == StateProcessing || to == StateAborted
	case StateProcessing:
		return to == StatePersisting || to == StateAborted
	case StatePersisting:
		return to == StateDone || to == StateAborted
	default:
		return false
	}
}
