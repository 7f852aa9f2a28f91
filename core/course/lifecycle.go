package course

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/pkg/errors"
)

// State is derived from the course data, it is never stored.
type State string

const (
	StateDraft    State = "draft"    // no sessions, all-empty grid
	StateActive   State = "active"   // has sessions or marked cells
	StateFinished State = "finished" // terminal, read-only
)

// lifecycle events
const (
	eventRecord = "record" // cells painted or cycled
	eventAmend  = "amend"  // dimensions changed or a session removed
	eventReset  = "reset"  // attendance wiped in place
	eventFinish = "finish"
)

var (
	draft, active, finished = string(StateDraft), string(StateActive), string(StateFinished)

	lifecycleEvents = fsm.Events{
		{Name: eventRecord, Src: []string{draft, active}, Dst: active},
		{Name: eventAmend, Src: []string{draft}, Dst: draft},
		{Name: eventAmend, Src: []string{active}, Dst: active},
		{Name: eventReset, Src: []string{draft, active}, Dst: draft},
		{Name: eventFinish, Src: []string{draft, active}, Dst: finished},
	}
)

// State returns the lifecycle state of the course.
func (c *Course) State() State {
	switch {
	case c.VehicleType == Finished:
		return StateFinished
	case len(c.Sessions) > 0 || c.Attendance.Marked():
		return StateActive
	default:
		return StateDraft
	}
}

func (c *Course) IsFinished() bool {
	return c.VehicleType == Finished
}

// transition checks that event is allowed from the current state of the course.
// No event leaves the finished state.
func (c *Course) transition(ctx context.Context, event string) error {
	machine := fsm.NewFSM(string(c.State()), lifecycleEvents, fsm.Callbacks{})

	err := machine.Event(ctx, event)
	if err == nil {
		return nil
	}
	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return nil
	}
	var invalid fsm.InvalidEventError
	if errors.As(err, &invalid) && c.IsFinished() {
		return ErrFinished
	}
	return errors.Wrapf(err, "%s on course %s", event, c.ID)
}
