package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MAximeXX/AIEval/internal/data/repos"
	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/observability"
	"github.com/MAximeXX/AIEval/internal/pkg/ctxutil"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

// LockCoordinator flips a student's lock and announces the new state. It is
// idempotent: a redundant transition succeeds and still notifies.
type LockCoordinator interface {
	Lock(dbc dbctx.Context, actor *types.User, studentID uuid.UUID) (types.LockState, error)
	Unlock(dbc dbctx.Context, actor *types.User, studentID uuid.UUID) (types.LockState, error)
	SetLocked(dbc dbctx.Context, actor *types.User, studentID uuid.UUID, locked bool) (types.LockState, error)
	Status(dbc dbctx.Context, studentID uuid.UUID) (types.LockState, error)
}

type lockCoordinator struct {
	db     *gorm.DB
	log    *logger.Logger
	users  repos.UserRepo
	store  SubmissionStore
	locks  repos.StudentLockRepo
	notify Notifier
}

func NewLockCoordinator(
	db *gorm.DB,
	baseLog *logger.Logger,
	users repos.UserRepo,
	store SubmissionStore,
	locks repos.StudentLockRepo,
	notify Notifier,
) LockCoordinator {
	return &lockCoordinator{
		db:     db,
		log:    baseLog.With("service", "LockCoordinator"),
		users:  users,
		store:  store,
		locks:  locks,
		notify: notify,
	}
}

func (c *lockCoordinator) Lock(dbc dbctx.Context, actor *types.User, studentID uuid.UUID) (types.LockState, error) {
	return c.SetLocked(dbc, actor, studentID, true)
}

func (c *lockCoordinator) Unlock(dbc dbctx.Context, actor *types.User, studentID uuid.UUID) (types.LockState, error) {
	return c.SetLocked(dbc, actor, studentID, false)
}

func (c *lockCoordinator) SetLocked(dbc dbctx.Context, actor *types.User, studentID uuid.UUID, locked bool) (types.LockState, error) {
	student, err := staffStudent(dbc, c.users, actor, studentID)
	if err != nil {
		return types.LockState{}, err
	}
	state, err := c.store.SetLock(dbc, studentID, actor.ID, locked)
	if err != nil {
		return types.LockState{}, err
	}
	observability.Current().ObserveLockTransition(state.IsLocked)
	c.log.Info("Student lock set", "student_id", studentID, "actor_id", actor.ID, "is_locked", state.IsLocked)

	// Announce the stored value, not the requested one.
	ctx, cancel := ctxutil.Detached(dbc.Ctx, emitTimeout)
	defer cancel()
	c.notify.LockChanged(ctx, student, state)
	return state, nil
}

func (c *lockCoordinator) Status(dbc dbctx.Context, studentID uuid.UUID) (types.LockState, error) {
	row, err := c.locks.GetByStudentID(dbc, studentID)
	if err != nil {
		return types.LockState{}, err
	}
	return lockState(studentID, row), nil
}
