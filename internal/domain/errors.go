package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates malformed or out of range input; nothing was written
	ErrValidation = errors.New("validation failed")

	// ErrAuthentication indicates the caller has no identity
	ErrAuthentication = errors.New("authentication required")

	// ErrAuthorization indicates the caller may not act on the record
	ErrAuthorization = errors.New("not authorized")

	ErrNotFound = errors.New("not found")

	// ErrStateConflict indicates the record is not in a state that allows the transition
	ErrStateConflict = errors.New("state conflict")

	ErrDuplicateApplication = errors.New("already applied for this job")
	ErrDuplicateRating      = errors.New("rating already submitted")

	// ErrStore indicates the record store failed; the message is safe to show
	ErrStore = errors.New("record store unavailable")
)

// ValidationError wraps ErrValidation with a field level reason
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundError wraps ErrNotFound with the kind and id of the missing record
func NotFoundError(kind, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
}

// StateConflictError wraps ErrStateConflict with a reason
func StateConflictError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStateConflict, fmt.Sprintf(format, args...))
}

// AuthorizationError wraps ErrAuthorization with a reason
func AuthorizationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, fmt.Sprintf(format, args...))
}

// StoreError hides the underlying store failure behind ErrStore while keeping it for logs
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s", ErrStore.Error(), e.Op)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// Acceptance steps, in execution order
const (
	StepAssignJob         = "assign_job"
	StepAcceptApplication = "accept_application"
	StepRejectSiblings    = "reject_siblings"
	StepOpenTicket        = "open_ticket"
	StepClearMarker       = "clear_marker"
)

// PartialAcceptanceError is returned when the job was assigned but a later
// acceptance step failed. The job carries a marker until the acceptance is resumed.
type PartialAcceptanceError struct {
	JobID         string
	ApplicationID string
	ApplicantID   string
	FailedStep    string
	Err           error
}

func (e *PartialAcceptanceError) Error() string {
	return fmt.Sprintf("acceptance of application %s on job %s stopped at %s: %v",
		e.ApplicationID, e.JobID, e.FailedStep, e.Err)
}

func (e *PartialAcceptanceError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

func IsAuthorizationError(err error) bool {
	return errors.Is(err, ErrAuthorization)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsStateConflictError(err error) bool {
	return errors.Is(err, ErrStateConflict)
}

func IsDuplicateApplicationError(err error) bool {
	return errors.Is(err, ErrDuplicateApplication)
}

func IsDuplicateRatingError(err error) bool {
	return errors.Is(err, ErrDuplicateRating)
}

func IsStoreError(err error) bool {
	return errors.Is(err, ErrStore)
}

// AsPartialAcceptance extracts a PartialAcceptanceError from the chain
func AsPartialAcceptance(err error) (*PartialAcceptanceError, bool) {
	var partial *PartialAcceptanceError
	if errors.As(err, &partial) {
		return partial, true
	}
	return nil, false
}
