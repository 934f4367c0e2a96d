package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/MAximeXX/AIEval/internal/data/repos"
	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
)

// staffStudent loads a student on behalf of a teacher or admin. Teachers are
// confined to their own class; admins see every student.
func staffStudent(dbc dbctx.Context, users repos.UserRepo, actor *types.User, studentID uuid.UUID) (*types.User, error) {
	if actor == nil {
		return nil, domainerrs.ErrUnauthorized
	}
	if !actor.Role.Staff() {
		return nil, domainerrs.Forbidden("无权限访问")
	}
	student, err := users.GetByID(dbc, studentID)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if student == nil || student.Role != types.RoleStudent {
		return nil, domainerrs.NotFound("student", "学生不存在")
	}
	if actor.Role == types.RoleTeacher && !types.SameClass(actor, student) {
		return nil, domainerrs.Forbidden("无权限访问该学生")
	}
	return student, nil
}
