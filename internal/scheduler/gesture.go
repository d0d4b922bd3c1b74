package scheduler

import "fmt"

// GestureState tracks one drag gesture through its lifecycle.
type GestureState string

const (
	StateIdle       GestureState = "idle"
	StateDragging   GestureState = "dragging"
	StateCommitting GestureState = "committing"
	StateSettled    GestureState = "settled"
	StateRolledBack GestureState = "rolled_back"
)

// Gesture is a single drag gesture. Gestures are serialized by the
// user's input, so the type is not safe for concurrent use.
type Gesture struct {
	state GestureState
}

// NewGesture returns a gesture in the idle state.
func NewGesture() *Gesture {
	return &Gesture{state: StateIdle}
}

// State returns the current state.
func (g *Gesture) State() GestureState {
	return g.state
}

// Begin moves the gesture from idle to dragging.
func (g *Gesture) Begin() error {
	return g.transition(StateIdle, StateDragging)
}

// Commit moves the gesture from dragging to committing. The remote
// mutation is in flight while the gesture is committing.
func (g *Gesture) Commit() error {
	return g.transition(StateDragging, StateCommitting)
}

// Settle marks the remote mutation as succeeded.
func (g *Gesture) Settle() error {
	return g.transition(StateCommitting, StateSettled)
}

// Rollback marks the remote mutation as failed; the optimistic move
// must be reverted by the caller.
func (g *Gesture) Rollback() error {
	return g.transition(StateCommitting, StateRolledBack)
}

func (g *Gesture) transition(from, to GestureState) error {
	if g.state != from {
		return fmt.Errorf("invalid gesture transition from %s to %s", g.state, to)
	}
	g.state = to
	return nil
}
