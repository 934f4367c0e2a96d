package survey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

type TeacherReviewRepo interface {
	GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) (*types.TeacherReview, error)
	GetByStudentIDs(dbc dbctx.Context, studentIDs []uuid.UUID) ([]*types.TeacherReview, error)
	Upsert(dbc dbctx.Context, row *types.TeacherReview) (*types.TeacherReview, error)
}

type teacherReviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeacherReviewRepo(db *gorm.DB, baseLog *logger.Logger) TeacherReviewRepo {
	return &teacherReviewRepo{db: db, log: baseLog.With("repo", "TeacherReviewRepo")}
}

func (r *teacherReviewRepo) GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) (*types.TeacherReview, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.TeacherReview
	found, err := findByStudent(transaction, dbc, studentID, &row)
	if err != nil || !found {
		return nil, err
	}
	return &row, nil
}

func (r *teacherReviewRepo) GetByStudentIDs(dbc dbctx.Context, studentIDs []uuid.UUID) ([]*types.TeacherReview, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return findByStudents[types.TeacherReview](transaction, dbc, studentIDs)
}

func (r *teacherReviewRepo) Upsert(dbc dbctx.Context, row *types.TeacherReview) (*types.TeacherReview, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	row.SubmittedAt, row.UpdatedAt = now, now
	if err := upsertByStudent(transaction, dbc, row, []string{"teacher_id", "selected_traits", "rendered_text", "updated_at"}); err != nil {
		return nil, err
	}
	return r.GetByStudentID(dbc, row.StudentID)
}
