package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MAximeXX/AIEval/internal/data/repos"
	"github.com/MAximeXX/AIEval/internal/data/repos/testutil"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
)

const testSecret = "test-secret"

func newAuth(t *testing.T) (AuthService, *harness) {
	t.Helper()
	h := newHarness(t)
	log := testutil.Logger(t)
	return NewAuthService(h.db, log, repos.NewUserRepo(h.db, log), testSecret, time.Hour), h
}

func TestLoginAndResolveToken(t *testing.T) {
	auth, h := newAuth(t)
	c := seedClassroom(t, h)
	ctx := context.Background()

	res, err := auth.Login(ctx, IdentityStudent, c.alice.Username, testutil.Password)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.TokenType != "bearer" || res.ExpiresIn != 3600 || res.User.GradeBand != c.alice.Band() {
		t.Fatalf("login result: got=%+v", res)
	}
	authed, err := auth.SetContextFromToken(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if actor := ActorFromContext(authed); actor == nil || actor.ID != c.alice.ID {
		t.Fatalf("actor: want=%s got=%v", c.alice.ID, actor)
	}
}

func TestLoginRejections(t *testing.T) {
	auth, h := newAuth(t)
	c := seedClassroom(t, h)
	ctx := context.Background()

	cases := []struct {
		name     string
		identity string
		username string
		password string
		want     error
	}{
		{"wrong password", IdentityStudent, c.alice.Username, "nope", domainerrs.ErrNotFound},
		{"unknown user", IdentityStudent, "ghost", testutil.Password, domainerrs.ErrNotFound},
		{"student as teacher", IdentityTeacher, c.alice.Username, testutil.Password, domainerrs.ErrForbidden},
		{"teacher as student", IdentityStudent, c.teacher.Username, testutil.Password, domainerrs.ErrForbidden},
		{"blank", IdentityStudent, " ", "", domainerrs.ErrInvalidArgument},
		{"bad identity", "parent", c.alice.Username, testutil.Password, domainerrs.ErrInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := auth.Login(ctx, tc.identity, tc.username, tc.password); !errors.Is(err, tc.want) {
				t.Fatalf("Login: want=%v got=%v", tc.want, err)
			}
		})
	}
}

func TestNewLoginSupersedesOldToken(t *testing.T) {
	auth, h := newAuth(t)
	c := seedClassroom(t, h)
	ctx := context.Background()

	first, err := auth.Login(ctx, IdentityTeacher, c.teacher.Username, testutil.Password)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := auth.Login(ctx, IdentityTeacher, c.teacher.Username, testutil.Password)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if _, err := auth.SetContextFromToken(ctx, first.AccessToken); !errors.Is(err, domainerrs.ErrSessionSuperseded) {
		t.Fatalf("old token: want superseded got=%v", err)
	}
	authed, err := auth.SetContextFromToken(ctx, second.AccessToken)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if err := auth.Logout(authed); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := auth.SetContextFromToken(ctx, second.AccessToken); !IsAuthError(err) {
		t.Fatalf("after logout: want auth error got=%v", err)
	}
}

func TestTokenSignatureAndAlgorithmChecked(t *testing.T) {
	auth, h := newAuth(t)
	c := seedClassroom(t, h)
	ctx := context.Background()

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		Role:             "admin",
		SessionID:        "00000000-0000-0000-0000-000000000000",
		RegisteredClaims: jwt.RegisteredClaims{Subject: c.alice.ID.String()},
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	for name, tok := range map[string]string{"empty": "", "garbage": "abc.def", "wrong key": signed} {
		if _, err := auth.SetContextFromToken(ctx, tok); !errors.Is(err, domainerrs.ErrUnauthorized) {
			t.Fatalf("%s: want unauthorized got=%v", name, err)
		}
	}
	if err := auth.Logout(ctx); !errors.Is(err, domainerrs.ErrUnauthorized) {
		t.Fatalf("anonymous logout: want unauthorized got=%v", err)
	}
}
