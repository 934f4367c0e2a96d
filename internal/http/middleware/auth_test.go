package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/MAximeXX/AIEval/internal/domain"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
	"github.com/MAximeXX/AIEval/internal/services"
)

type stubAuth struct {
	users map[string]*types.User
}

func (s *stubAuth) Login(context.Context, string, string, string) (*services.LoginResult, error) {
	return nil, nil
}
func (s *stubAuth) Logout(context.Context) error { return nil }
func (s *stubAuth) GetAccessTTL() time.Duration  { return time.Hour }
func (s *stubAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	if token == "old" {
		return ctx, domainerrs.ErrSessionSuperseded
	}
	u, ok := s.users[token]
	if !ok {
		return ctx, domainerrs.Unauthorized("用户不存在")
	}
	return services.WithActor(ctx, u), nil
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	am := NewAuthMiddleware(log, &stubAuth{users: map[string]*types.User{
		"stu": {ID: uuid.New(), Role: types.RoleStudent},
		"tea": {ID: uuid.New(), Role: types.RoleTeacher},
	}})
	r := gin.New()
	g := r.Group("/", am.RequireAuth())
	g.GET("/any", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	g.GET("/staff", am.RequireRole(types.RoleTeacher, types.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestRequireAuthAndRole(t *testing.T) {
	r := newAuthRouter(t)
	cases := []struct {
		name   string
		path   string
		header string
		query  string
		want   int
	}{
		{"missing token", "/any", "", "", http.StatusUnauthorized},
		{"unknown token", "/any", "Bearer nope", "", http.StatusUnauthorized},
		{"superseded", "/any", "Bearer old", "", http.StatusUnauthorized},
		{"bearer ok", "/any", "Bearer stu", "", http.StatusNoContent},
		{"query ok", "/any", "", "stu", http.StatusNoContent},
		{"student on staff route", "/staff", "Bearer stu", "", http.StatusForbidden},
		{"teacher on staff route", "/staff", "Bearer tea", "", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := tc.path
			if tc.query != "" {
				target += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status: want=%d got=%d body=%s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAttachTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get(headerRequestID); got != "req-1" {
		t.Fatalf("request id: want=req-1 got=%q", got)
	}
	if rec.Header().Get(headerTraceID) == "" {
		t.Fatalf("trace id: want generated got empty")
	}
}
