package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/MAximeXX/AIEval/internal/data/repos"
	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/pkg/ctxutil"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

const (
	IdentityStudent = "student"
	IdentityTeacher = "teacher"

	msgUserNotFound = "用户不存在"
	msgNoPermission = "无权限访问"
)

type JWTClaims struct {
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type UserSummary struct {
	ID          uuid.UUID       `json:"id"`
	Username    string          `json:"username"`
	Role        types.Role      `json:"role"`
	SchoolName  string          `json:"school_name"`
	StudentName string          `json:"student_name,omitempty"`
	TeacherName string          `json:"teacher_name,omitempty"`
	ClassNo     string          `json:"class_no"`
	Grade       int             `json:"grade"`
	GradeBand   types.GradeBand `json:"grade_band,omitempty"`
}

func NewUserSummary(u *types.User) UserSummary {
	s := UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		SchoolName:  u.SchoolName,
		StudentName: u.StudentName,
		TeacherName: u.TeacherName,
		ClassNo:     u.ClassNo,
		Grade:       u.Grade,
	}
	if u.Role == types.RoleStudent {
		s.GradeBand = u.Band()
	}
	return s
}

type LoginResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	Role        types.Role  `json:"role"`
	SessionID   uuid.UUID   `json:"session_id"`
	ExpiresIn   int         `json:"expires_in"`
	User        UserSummary `json:"user"`
}

type AuthService interface {
	Login(ctx context.Context, identity, username, password string) (*LoginResult, error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	return &authService{
		db:           db,
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func (as *authService) Login(ctx context.Context, identity, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domainerrs.Invalid("username", "请输入账号和密码")
	}
	dbc := dbctx.Context{Ctx: ctx}
	user, err := as.userRepo.GetByUsername(dbc, username)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domainerrs.NotFound("user", msgUserNotFound)
	}
	if !user.IsActive {
		return nil, domainerrs.Forbidden(msgNoPermission)
	}
	switch identity {
	case IdentityTeacher:
		if !user.Role.Staff() {
			return nil, domainerrs.Forbidden(msgNoPermission)
		}
	case IdentityStudent:
		if user.Role != types.RoleStudent {
			return nil, domainerrs.Forbidden(msgNoPermission)
		}
	default:
		return nil, domainerrs.Invalid("identity", "请选择登录身份")
	}

	sessionID := uuid.New()
	if err := as.userRepo.SetActiveSession(dbc, user.ID, sessionID); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}
	token, err := as.generateAccessToken(user, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	as.log.Info("User logged in", "user_id", user.ID, "role", user.Role, "session_id", sessionID)
	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		Role:        user.Role,
		SessionID:   sessionID,
		ExpiresIn:   int(as.accessTTL.Seconds()),
		User:        NewUserSummary(user),
	}, nil
}

// Logout invalidates every outstanding token of the caller by rotating the
// active session id.
func (as *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return domainerrs.Unauthorized(msgUserNotFound)
	}
	if err := as.userRepo.SetActiveSession(dbctx.Context{Ctx: ctx}, rd.UserID, uuid.New()); err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	as.log.Info("User logged out", "user_id", rd.UserID)
	return nil
}

func (as *authService) generateAccessToken(user *types.User, sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Role:      string(user.Role),
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, domainerrs.Unauthorized(msgUserNotFound)
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		as.log.Debug("Token rejected", "error", err)
		return ctx, domainerrs.Unauthorized(msgUserNotFound)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, domainerrs.Unauthorized(msgUserNotFound)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, domainerrs.Unauthorized(msgUserNotFound)
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return ctx, domainerrs.Unauthorized(msgUserNotFound)
	}

	user, err := as.userRepo.GetByID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return ctx, fmt.Errorf("load user: %w", err)
	}
	if user == nil || !user.IsActive {
		return ctx, domainerrs.Unauthorized(msgUserNotFound)
	}
	if user.ActiveSessionID == nil || *user.ActiveSessionID != sessionID {
		return ctx, domainerrs.ErrSessionSuperseded
	}

	ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		SessionID:   sessionID,
		Role:        string(user.Role),
	})
	return WithActor(ctx, user), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

type actorKey struct{}

// WithActor attaches the authenticated user to ctx.
func WithActor(ctx context.Context, u *types.User) context.Context {
	return context.WithValue(ctx, actorKey{}, u)
}

// ActorFromContext returns the authenticated user, or nil.
func ActorFromContext(ctx context.Context) *types.User {
	if ctx == nil {
		return nil
	}
	u, _ := ctx.Value(actorKey{}).(*types.User)
	return u
}

// IsAuthError reports whether err should end the request with 401.
func IsAuthError(err error) bool {
	return errors.Is(err, domainerrs.ErrUnauthorized) || errors.Is(err, domainerrs.ErrSessionSuperseded)
}
