package survey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

type ParentNoteRepo interface {
	GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) (*types.ParentNote, error)
	Upsert(dbc dbctx.Context, studentID uuid.UUID, content string) (*types.ParentNote, error)
}

type parentNoteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewParentNoteRepo(db *gorm.DB, baseLog *logger.Logger) ParentNoteRepo {
	return &parentNoteRepo{db: db, log: baseLog.With("repo", "ParentNoteRepo")}
}

func (r *parentNoteRepo) GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) (*types.ParentNote, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.ParentNote
	found, err := findByStudent(transaction, dbc, studentID, &row)
	if err != nil || !found {
		return nil, err
	}
	return &row, nil
}

func (r *parentNoteRepo) Upsert(dbc dbctx.Context, studentID uuid.UUID, content string) (*types.ParentNote, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	row := &types.ParentNote{StudentID: studentID, Content: content, SubmittedAt: now, UpdatedAt: now}
	if err := upsertByStudent(transaction, dbc, row, []string{"content", "updated_at"}); err != nil {
		return nil, err
	}
	return r.GetByStudentID(dbc, studentID)
}
