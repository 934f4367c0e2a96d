package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"

	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"locked", fmt.Errorf("write: %w", &domainerrs.LockedError{StudentID: uuid.New()}), http.StatusLocked, "locked", domainerrs.LockedMessage},
		{"validation", domainerrs.Invalid("parent_note", "家长寄语需在300字以内"), http.StatusBadRequest, "validation_failed", "家长寄语需在300字以内"},
		{"not found", domainerrs.NotFound("user", "用户不存在"), http.StatusNotFound, "not_found", "用户不存在"},
		{"forbidden", domainerrs.Forbidden("无权限访问该学生"), http.StatusForbidden, "forbidden", "无权限访问该学生"},
		{"superseded", domainerrs.ErrSessionSuperseded, http.StatusUnauthorized, "session_superseded", "检测到您在其他设备登陆，请重新登录"},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal", GenericMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromError(tc.err)
			if got.Status != tc.status || got.Code != tc.code {
				t.Fatalf("status/code: want=%d/%s got=%d/%s", tc.status, tc.code, got.Status, got.Code)
			}
			if got.PublicMessage() != tc.msg {
				t.Fatalf("message: want=%q got=%q", tc.msg, got.PublicMessage())
			}
		})
	}
}

func TestFromErrorKeepsExplicitAPIError(t *testing.T) {
	in := New(http.StatusTeapot, "teapot", errors.New("short and stout"))
	if got := FromError(fmt.Errorf("wrap: %w", in)); got != in {
		t.Fatalf("explicit api error: want same pointer")
	}
}
