package survey

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

type LLMEvalRepo interface {
	GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) (*types.LLMEval, error)
	Upsert(dbc dbctx.Context, row *types.LLMEval) (*types.LLMEval, error)
}

type llmEvalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLLMEvalRepo(db *gorm.DB, baseLog *logger.Logger) LLMEvalRepo {
	return &llmEvalRepo{db: db, log: baseLog.With("repo", "LLMEvalRepo")}
}

func (r *llmEvalRepo) GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) (*types.LLMEval, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.LLMEval
	found, err := findByStudent(transaction, dbc, studentID, &row)
	if err != nil || !found {
		return nil, err
	}
	return &row, nil
}

func (r *llmEvalRepo) Upsert(dbc dbctx.Context, row *types.LLMEval) (*types.LLMEval, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := upsertByStudent(transaction, dbc, row, []string{"content", "payload", "source", "generated_at"}); err != nil {
		return nil, err
	}
	return r.GetByStudentID(dbc, row.StudentID)
}
