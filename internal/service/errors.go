package service

import (
	"fmt"
)

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id string, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewErrAnalysisNotFound(id string) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "analysis")
}

type ErrValidation struct {
	error
}

func NewErrValidation(message string) *ErrValidation {
	return &ErrValidation{fmt.Errorf("bad request: %s", message)}
}

func NewErrInvalidUpload(message string) *ErrValidation {
	return NewErrValidation(fmt.Sprintf("invalid upload: %s", message))
}

func NewErrInvalidEmail(email string) *ErrValidation {
	return NewErrValidation(fmt.Sprintf("invalid email address %q", email))
}

type ErrAnalysisNotCompleted struct {
	error
}

func NewErrAnalysisNotCompleted(id string, status string) *ErrAnalysisNotCompleted {
	return &ErrAnalysisNotCompleted{fmt.Errorf("analysis %s is %s", id, status)}
}

// ErrUpstream wraps failures of external collaborators (renderer, mail server).
type ErrUpstream struct {
	error
}

func NewErrUpstream(operation string, err error) *ErrUpstream {
	return &ErrUpstream{fmt.Errorf("%s: %w", operation, err)}
}

func (e *ErrUpstream) Unwrap() error {
	return e.error
}
