package domain

import (
	"errors"
	"fmt"
)

// Action is an operation that changes a volunteer's standing.
type Action string

const (
	ActionApprove   Action = "approve"
	ActionSuspend   Action = "suspend"
	ActionReinstate Action = "reinstate"
)

type Transition struct {
	Action Action
	From   Status
	To     Status
}

// Transitions lists every permitted status change. Anything else is a conflict.
var Transitions = []Transition{
	{Action: ActionApprove, From: StatusPending, To: StatusApproved},
	{Action: ActionSuspend, From: StatusApproved, To: StatusSuspended},
	{Action: ActionReinstate, From: StatusSuspended, To: StatusApproved},
}

var ErrInvalidTransition = errors.New("volunteer transition not allowed")

// TransitionError reports an action attempted from a status that does not permit it.
type TransitionError struct {
	Action Action
	From   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s volunteer in status %s", e.Action, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Next returns the status reached by applying action in from.
func Next(from Status, action Action) (Status, error) {
	for _, t := range Transitions {
		if t.Action == action && t.From == from {
			return t.To, nil
		}
	}
	return "", &TransitionError{Action: action, From: from}
}
