package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
)

const GenericMessage = "服务繁忙，请稍后重试"

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// PublicMessage hides internal failure detail from clients.
func (e *Error) PublicMessage() string {
	if e == nil || e.Status >= http.StatusInternalServerError && e.Status != http.StatusServiceUnavailable {
		return GenericMessage
	}
	return e.Error()
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError classifies err by the domain taxonomy.
func FromError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var locked *domainerrs.LockedError
	switch {
	case err == nil:
		return New(http.StatusInternalServerError, "internal", nil)
	case errors.As(err, &locked):
		return New(http.StatusLocked, "locked", locked)
	case errors.Is(err, domainerrs.ErrInvalidArgument):
		var ve *domainerrs.ValidationError
		if errors.As(err, &ve) {
			return New(http.StatusBadRequest, "validation_failed", ve)
		}
		return New(http.StatusBadRequest, "validation_failed", err)
	case errors.Is(err, domainerrs.ErrNotFound):
		var nf *domainerrs.NotFoundError
		if errors.As(err, &nf) {
			return New(http.StatusNotFound, "not_found", nf)
		}
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, domainerrs.ErrSessionSuperseded):
		return New(http.StatusUnauthorized, "session_superseded", domainerrs.ErrSessionSuperseded)
	case errors.Is(err, domainerrs.ErrUnauthorized):
		return New(http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, domainerrs.ErrForbidden):
		var fe *domainerrs.ForbiddenError
		if errors.As(err, &fe) {
			return New(http.StatusForbidden, "forbidden", fe)
		}
		return New(http.StatusForbidden, "forbidden", err)
	case errors.Is(err, domainerrs.ErrChannelUnavailable):
		return New(http.StatusServiceUnavailable, "channel_unavailable", err)
	default:
		return New(http.StatusInternalServerError, "internal", err)
	}
}
