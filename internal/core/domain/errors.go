package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTodoNotFound       = errors.New("todo not found")
	ErrForbidden          = errors.New("todo belongs to another user")
	ErrTitleRequired      = &ValidationError{Field: "title", Message: "Title is required."}
	ErrNoFieldsToUpdate   = &ValidationError{Field: "body", Message: "No fields to update provided."}
	ErrInvalidState       = &ValidationError{Field: "state", Message: "Invalid state. Must be 'pending' or 'completed'."}
	ErrNothingToSummarize = errors.New("no pending todos to summarize")
)

type AuthFailure int

const (
	AuthMissingCredential AuthFailure = iota
	AuthMalformedCredential
	AuthExpiredCredential
	AuthInvalidCredential
)

func (f AuthFailure) String() string {
	switch f {
	case AuthMissingCredential:
		return "missing"
	case AuthMalformedCredential:
		return "malformed"
	case AuthExpiredCredential:
		return "expired"
	default:
		return "invalid"
	}
}

// AuthError reports why a bearer credential was rejected.
type AuthError struct {
	Reason AuthFailure
	Err    error
}

func NewAuthError(reason AuthFailure, err error) *AuthError {
	return &AuthError{Reason: reason, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed (%s): %v", e.Reason, e.Err)
	}

	return fmt.Sprintf("authentication failed (%s)", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type UpstreamStage string

const (
	StageGeneration UpstreamStage = "generation"
	StageDelivery   UpstreamStage = "delivery"
)

// UpstreamError wraps a failure of an external collaborator in the summary pipeline.
type UpstreamError struct {
	Stage UpstreamStage
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func WrapStorage(op string, err error) error {
	if err == nil || errors.Is(err, ErrTodoNotFound) {
		return err
	}

	var se *StorageError
	if errors.As(err, &se) {
		return err
	}

	return &StorageError{Op: op, Err: err}
}
