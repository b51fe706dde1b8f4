// internal/loan/submit-application/models.go
package submitapplication

import (
	validateapplication "loan-approval-client/internal/loan/validate-application"
	"loan-approval-client/internal/models"
)

// State is the display state of one application session.
type State string

const (
	StateIdleEditing   State = "idle-editing"
	StateSubmitting    State = "submitting"
	StateShowingResult State = "showing-result"
	StateShowingError  State = "showing-error"
)

// SubmitOutcome says what a Submit call did.
type SubmitOutcome string

const (
	// OutcomeStarted means validation passed and the request is in flight.
	OutcomeStarted SubmitOutcome = "started"
	// OutcomeInvalid means validation failed; Snapshot().Errors lists the fields.
	OutcomeInvalid SubmitOutcome = "invalid"
	// OutcomeIgnored means a request was already in flight.
	OutcomeIgnored SubmitOutcome = "ignored"
)

// Snapshot is a copy of the session state, safe to read without locking.
type Snapshot struct {
	SessionID    string
	Generation   uint64
	State        State
	Draft        models.LoanApplication
	Errors       validateapplication.ValidationErrors
	Result       *models.LoanResult
	ErrorMessage string
	// Err is the underlying client error behind ErrorMessage.
	Err error
}
