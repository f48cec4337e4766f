package domain

import (
	"errors"
	"fmt"
)

// Action is an operation that moves an adoption between statuses.
type Action string

const (
	ActionApprove Action = "approve"
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
)

// Transition is one permitted edge of the lifecycle.
type Transition struct {
	Action Action
	From   Status
	To     Status
}

// Transitions is the complete adoption lifecycle. Any pair not listed is rejected.
var Transitions = []Transition{
	{Action: ActionApprove, From: StatusRequested, To: StatusApproved},
	{Action: ActionConfirm, From: StatusApproved, To: StatusConfirmed},
	{Action: ActionCancel, From: StatusRequested, To: StatusCanceled},
	{Action: ActionCancel, From: StatusApproved, To: StatusCanceled},
}

// ErrInvalidTransition is wrapped by every TransitionError.
var ErrInvalidTransition = errors.New("adoption transition not allowed")

// TransitionError reports an action attempted from a status that does not permit it.
type TransitionError struct {
	Action Action
	From   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s adoption in status %s", e.Action, e.From)
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
