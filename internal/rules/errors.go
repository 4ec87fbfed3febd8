// internal/rules/errors.go
package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrFromWithoutChanged is returned when From is used on a trigger that does not react to changes
	ErrFromWithoutChanged = errors.New("from is only valid after changed")

	// ErrOperationAlreadySet is returned when a trigger's operation is switched to a different one
	ErrOperationAlreadySet = errors.New("operation already set")

	// ErrForWithoutState is returned when For is used without a changed-to state to hold
	ErrForWithoutState = errors.New("for requires changed with a target state")

	// ErrUnknownOperation is returned when an operation falls outside the known set
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrIncompleteTrigger is returned when an incomplete trigger is converted
	ErrIncompleteTrigger = errors.New("trigger is incomplete")

	// ErrUncommittedTrigger is recorded when a new trigger is started before the previous one was combined
	ErrUncommittedTrigger = errors.New("trigger started before previous trigger was committed with Or, Then or If")

	// ErrNoTriggers is returned when a rule is built without any triggers
	ErrNoTriggers = errors.New("rule has no triggers")

	// ErrNoAction is returned when a rule is built without an action
	ErrNoAction = errors.New("rule has no action")
)

// TriggerError attaches the compact description of the offending trigger to an error
type TriggerError struct {
	Trigger string
	Err     error
}

func (e *TriggerError) Error() string {
	return fmt.Sprintf("trigger %s: %v", e.Trigger, e.Err)
}

func (e *TriggerError) Unwrap() error {
	return e.Err
}
