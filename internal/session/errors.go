package session

import (
	"errors"
	"fmt"
)

// CreationError indicates a session could not be created for a model.
// The model degrades to stateless queries for the rest of the run.
type CreationError struct {
	Model   string
	Message string
	Err     error
}

// NewCreationError creates a CreationError for the given model.
func NewCreationError(model, message string, err error) *CreationError {
	return &CreationError{Model: model, Message: message, Err: err}
}

func (e *CreationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session creation failed for %s: %s: %v", e.Model, e.Message, e.Err)
	}
	return fmt.Sprintf("session creation failed for %s: %s", e.Model, e.Message)
}

func (e *CreationError) Unwrap() error { return e.Err }

// LostError indicates a previously valid session no longer exists on the
// vendor side. Recoverable via recreation in auto-recreate mode.
type LostError struct {
	Model     string
	SessionID string
	Message   string
}

// NewLostError creates a LostError for the given model and session.
func NewLostError(model, sessionID, message string) *LostError {
	return &LostError{Model: model, SessionID: sessionID, Message: message}
}

func (e *LostError) Error() string {
	return fmt.Sprintf("session %s lost for %s: %s", e.SessionID, e.Model, e.Message)
}

// QueryError indicates a session query failed for a reason other than loss:
// timeout, missing executable, or a non-zero exit without a loss signature.
type QueryError struct {
	Model   string
	Message string
	Err     error
}

// NewQueryError creates a QueryError for the given model.
func NewQueryError(model, message string, err error) *QueryError {
	return &QueryError{Model: model, Message: message, Err: err}
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session query failed for %s: %s: %v", e.Model, e.Message, e.Err)
	}
	return fmt.Sprintf("session query failed for %s: %s", e.Model, e.Message)
}

func (e *QueryError) Unwrap() error { return e.Err }

// IsCreationError checks if the error is or wraps a CreationError.
func IsCreationError(err error) bool {
	var ce *CreationError
	return errors.As(err, &ce)
}

// IsLostError checks if the error is or wraps a LostError.
func IsLostError(err error) bool {
	var le *LostError
	return errors.As(err, &le)
}

// IsQueryError checks if the error is or wraps a QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}
