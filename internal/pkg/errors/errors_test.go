package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		target error
	}{
		{"locked", &LockedError{StudentID: uuid.New()}, ErrLocked},
		{"validation", Invalid("items", "bad"), ErrInvalidArgument},
		{"not found", NotFound("user", "用户不存在"), ErrNotFound},
		{"forbidden", Forbidden("无权限访问"), ErrForbidden},
		{"unauthorized", Unauthorized("用户不存在"), ErrUnauthorized},
		{"channel", &ChannelUnavailableError{Scope: "student:x", Err: errors.New("dial")}, ErrChannelUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("op: %w", tc.err)
			if !errors.Is(wrapped, tc.target) {
				t.Fatalf("errors.Is: want=true got=false for %v", tc.err)
			}
		})
	}
}

func TestLockedErrorMessage(t *testing.T) {
	err := &LockedError{}
	if err.Error() != LockedMessage {
		t.Fatalf("message: want=%q got=%q", LockedMessage, err.Error())
	}
}
