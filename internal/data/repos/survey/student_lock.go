package survey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

type StudentLockRepo interface {
	GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) (*types.StudentLock, error)
	GetByStudentIDs(dbc dbctx.Context, studentIDs []uuid.UUID) ([]*types.StudentLock, error)
	// Set writes the flag unconditionally and returns the stored row.
	Set(dbc dbctx.Context, studentID uuid.UUID, locked bool, actorID uuid.UUID) (*types.StudentLock, error)
}

type studentLockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentLockRepo(db *gorm.DB, baseLog *logger.Logger) StudentLockRepo {
	return &studentLockRepo{db: db, log: baseLog.With("repo", "StudentLockRepo")}
}

func (r *studentLockRepo) GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) (*types.StudentLock, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.StudentLock
	found, err := findByStudent(transaction, dbc, studentID, &row)
	if err != nil || !found {
		return nil, err
	}
	return &row, nil
}

func (r *studentLockRepo) GetByStudentIDs(dbc dbctx.Context, studentIDs []uuid.UUID) ([]*types.StudentLock, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return findByStudents[types.StudentLock](transaction, dbc, studentIDs)
}

func (r *studentLockRepo) Set(dbc dbctx.Context, studentID uuid.UUID, locked bool, actorID uuid.UUID) (*types.StudentLock, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	row := &types.StudentLock{StudentID: studentID, IsLocked: locked, UpdatedAt: time.Now().UTC()}
	if actorID != uuid.Nil {
		row.LockedBy = &actorID
	}
	if err := upsertByStudent(transaction, dbc, row, []string{"is_locked", "locked_by", "updated_at"}); err != nil {
		return nil, err
	}
	return r.GetByStudentID(dbc, studentID)
}
