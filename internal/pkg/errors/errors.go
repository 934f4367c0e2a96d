package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrForbidden means the actor is known but not allowed to act on the target.
	ErrForbidden = errors.New("forbidden")
	// ErrLocked means a student write hit a locked submission.
	ErrLocked = errors.New("locked")
	// ErrChannelUnavailable means a live notification could not be handed to the transport.
	ErrChannelUnavailable = errors.New("channel unavailable")
	// ErrSessionSuperseded means the token's session was replaced by a newer login.
	ErrSessionSuperseded = errors.New("检测到您在其他设备登陆，请重新登录")
)

const LockedMessage = "表格数据已被锁定，无法更改"

type LockedError struct {
	StudentID uuid.UUID
}

func (e *LockedError) Error() string { return LockedMessage }

func (e *LockedError) Is(target error) bool { return target == ErrLocked }

type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Field == "" {
		return "invalid payload"
	}
	return fmt.Sprintf("invalid %s", e.Field)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidArgument }

func (e *ValidationError) FieldName() string { return e.Field }

func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

type NotFoundError struct {
	Resource string
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Resource + " not found"
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(resource, message string) *NotFoundError {
	return &NotFoundError{Resource: resource, Message: message}
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrForbidden.Error()
}

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

func Forbidden(message string) *ForbiddenError { return &ForbiddenError{Message: message} }

type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrUnauthorized.Error()
}

func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

func Unauthorized(message string) *UnauthorizedError { return &UnauthorizedError{Message: message} }

type ChannelUnavailableError struct {
	Scope string
	Err   error
}

func (e *ChannelUnavailableError) Error() string {
	return fmt.Sprintf("channel %s unavailable: %v", e.Scope, e.Err)
}

func (e *ChannelUnavailableError) Unwrap() error { return e.Err }

func (e *ChannelUnavailableError) Is(target error) bool { return target == ErrChannelUnavailable }
