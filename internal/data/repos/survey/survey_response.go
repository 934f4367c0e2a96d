package survey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

type SurveyResponseRepo interface {
	GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) (*types.SurveyResponse, error)
	GetByStudentIDs(dbc dbctx.Context, studentIDs []uuid.UUID) ([]*types.SurveyResponse, error)
	Upsert(dbc dbctx.Context, row *types.SurveyResponse) (*types.SurveyResponse, error)
}

type surveyResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSurveyResponseRepo(db *gorm.DB, baseLog *logger.Logger) SurveyResponseRepo {
	return &surveyResponseRepo{db: db, log: baseLog.With("repo", "SurveyResponseRepo")}
}

func (r *surveyResponseRepo) GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) (*types.SurveyResponse, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.SurveyResponse
	found, err := findByStudent(transaction, dbc, studentID, &row)
	if err != nil || !found {
		return nil, err
	}
	return &row, nil
}

func (r *surveyResponseRepo) GetByStudentIDs(dbc dbctx.Context, studentIDs []uuid.UUID) ([]*types.SurveyResponse, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return findByStudents[types.SurveyResponse](transaction, dbc, studentIDs)
}

func (r *surveyResponseRepo) Upsert(dbc dbctx.Context, row *types.SurveyResponse) (*types.SurveyResponse, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	row.SubmittedAt, row.UpdatedAt = now, now
	if err := upsertByStudent(transaction, dbc, row, []string{"grade_band", "items", "written_by", "updated_at"}); err != nil {
		return nil, err
	}
	return r.GetByStudentID(dbc, row.StudentID)
}
