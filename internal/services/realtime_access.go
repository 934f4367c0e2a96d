package services

import (
	"fmt"

	"github.com/MAximeXX/AIEval/internal/data/repos"
	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
	"github.com/MAximeXX/AIEval/internal/realtime"
)

// RealtimeAccess decides who may subscribe to a scope and what a new
// subscriber is sent first.
type RealtimeAccess interface {
	Authorize(dbc dbctx.Context, actor *types.User, scope realtime.Scope) error
	// Snapshot is the reconciliation event delivered right after subscribe.
	Snapshot(dbc dbctx.Context, scope realtime.Scope) (realtime.Event, error)
}

type realtimeAccess struct {
	log   *logger.Logger
	users repos.UserRepo
	locks LockCoordinator
}

func NewRealtimeAccess(baseLog *logger.Logger, users repos.UserRepo, locks LockCoordinator) RealtimeAccess {
	return &realtimeAccess{log: baseLog.With("service", "RealtimeAccess"), users: users, locks: locks}
}

func (a *realtimeAccess) Authorize(dbc dbctx.Context, actor *types.User, scope realtime.Scope) error {
	if actor == nil {
		return domainerrs.ErrUnauthorized
	}
	if actor.Role == types.RoleAdmin {
		return nil
	}
	if id, ok := scope.StudentID(); ok {
		if actor.Role == types.RoleStudent {
			if actor.ID != id {
				return domainerrs.Forbidden(msgNoPermission)
			}
			return nil
		}
		_, err := staffStudent(dbc, a.users, actor, id)
		return err
	}
	if key, ok := scope.ClassKey(); ok {
		if actor.Role == types.RoleTeacher && actor.InClass(key) {
			return nil
		}
		return domainerrs.Forbidden(msgNoPermission)
	}
	return domainerrs.Invalid("scope", fmt.Sprintf("无效的订阅范围: %s", scope))
}

func (a *realtimeAccess) Snapshot(dbc dbctx.Context, scope realtime.Scope) (realtime.Event, error) {
	if id, ok := scope.StudentID(); ok {
		state, err := a.locks.Status(dbc, id)
		if err != nil {
			return realtime.Event{}, err
		}
		return realtime.LockChanged(id, state.IsLocked, ""), nil
	}
	return realtime.Resync(), nil
}
