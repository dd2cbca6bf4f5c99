package workflow

import (
	"errors"
	"fmt"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
)

var (
	// ErrInvalidTransition indicates the event is not legal from the current status.
	ErrInvalidTransition = errors.New("workflow: transition not allowed")
	// ErrReasonRequired indicates a rejection was requested without a reason.
	ErrReasonRequired = errors.New("workflow: rejection reason required")
)

// TransitionError carries the status the item was in and the event that was
// refused, so callers can tell the user what happened.
type TransitionError struct {
	From  domain.Status
	Event domain.Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("workflow: cannot %s content in %s status", e.Event, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
