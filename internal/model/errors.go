package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a task or a command did not go as planned
type ErrorKind string

const (
	ErrorKindValidation           ErrorKind = "validation"
	ErrorKindConcurrencyRejection ErrorKind = "concurrency_rejection"
	ErrorKindTransfer             ErrorKind = "transfer"
	ErrorKindPermanent            ErrorKind = "permanent"
	ErrorKindResumeInvalidated    ErrorKind = "resume_invalidated"
	ErrorKindCancelled            ErrorKind = "cancelled"
)

// Sentinel errors
var (
	ErrInvalidSpec       = errors.New("invalid transfer spec")
	ErrTaskNotFound      = errors.New("task not found")
	ErrResumeInvalidated = errors.New("remote object changed since the transfer started")
	ErrCancelled         = errors.New("transfer cancelled")
	ErrPaused            = errors.New("transfer paused")
	ErrDuplicateTaskID   = errors.New("duplicate task id")
	ErrInvalidPartNumber = errors.New("part number out of sequence")
	ErrPartsExceedTotal  = errors.New("completed parts exceed total size")
)

// TaskError is the failure note stored on a task
type TaskError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Error carries the operation and task an error occurred in.
type Error struct {
	Op     string
	TaskID string
	Kind   ErrorKind
	Err    error
}

func (e *Error) Error() string {
	if e.TaskID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.TaskID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, ErrorKindTransfer when err carries none.
func KindOf(err error) ErrorKind {
	var me *Error
	if errors.As(err, &me) && me.Kind != "" {
		return me.Kind
	}
	var te *TaskError
	if errors.As(err, &te) {
		return te.Kind
	}
	switch {
	case errors.Is(err, ErrInvalidSpec):
		return ErrorKindValidation
	case errors.Is(err, ErrResumeInvalidated):
		return ErrorKindResumeInvalidated
	case errors.Is(err, ErrCancelled):
		return ErrorKindCancelled
	}
	return ErrorKindTransfer
}
