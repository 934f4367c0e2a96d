package survey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

// ClassProgress is one row of the admin progress dashboard.
type ClassProgress struct {
	SchoolName string `json:"school_name"`
	Grade      int    `json:"grade"`
	ClassNo    string `json:"class_no"`
	Total      int64  `json:"total"`
	Completed  int64  `json:"completed"`
}

type CompletionStatusRepo interface {
	GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) (*types.CompletionStatus, error)
	GetByStudentIDs(dbc dbctx.Context, studentIDs []uuid.UUID) ([]*types.CompletionStatus, error)
	Touch(dbc dbctx.Context, studentID uuid.UUID, patch types.CompletionPatch) (*types.CompletionStatus, error)
	ProgressByClass(dbc dbctx.Context) ([]ClassProgress, error)
}

type completionStatusRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompletionStatusRepo(db *gorm.DB, baseLog *logger.Logger) CompletionStatusRepo {
	return &completionStatusRepo{db: db, log: baseLog.With("repo", "CompletionStatusRepo")}
}

func (r *completionStatusRepo) GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) (*types.CompletionStatus, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.CompletionStatus
	found, err := findByStudent(transaction, dbc, studentID, &row)
	if err != nil || !found {
		return nil, err
	}
	return &row, nil
}

func (r *completionStatusRepo) GetByStudentIDs(dbc dbctx.Context, studentIDs []uuid.UUID) ([]*types.CompletionStatus, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return findByStudents[types.CompletionStatus](transaction, dbc, studentIDs)
}

// Touch upserts only the flags set in patch, so concurrent writers of
// different flags cannot undo each other.
func (r *completionStatusRepo) Touch(dbc dbctx.Context, studentID uuid.UUID, patch types.CompletionPatch) (*types.CompletionStatus, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	row := &types.CompletionStatus{StudentID: studentID, UpdatedAt: time.Now().UTC()}
	cols := []string{"updated_at"}
	if patch.Student != nil {
		row.StudentSubmitted = *patch.Student
		cols = append(cols, "student_submitted")
	}
	if patch.Parent != nil {
		row.ParentSubmitted = *patch.Parent
		cols = append(cols, "parent_submitted")
	}
	if patch.Teacher != nil {
		row.TeacherSubmitted = *patch.Teacher
		cols = append(cols, "teacher_submitted")
	}
	if patch.LLM != nil {
		row.LLMGenerated = *patch.LLM
		cols = append(cols, "llm_generated")
	}
	if err := upsertByStudent(transaction, dbc, row, cols); err != nil {
		return nil, err
	}
	return r.GetByStudentID(dbc, studentID)
}

func (r *completionStatusRepo) ProgressByClass(dbc dbctx.Context) ([]ClassProgress, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []ClassProgress
	err := transaction.WithContext(dbc.Ctx).
		Table("users").
		Select(`users.school_name AS school_name, users.grade AS grade, users.class_no AS class_no,
			COUNT(users.id) AS total,
			SUM(CASE WHEN completion_status.student_submitted AND completion_status.parent_submitted
				AND completion_status.teacher_submitted THEN 1 ELSE 0 END) AS completed`).
		Joins("LEFT JOIN completion_status ON completion_status.student_id = users.id").
		Where("users.role = ?", types.RoleStudent).
		Group("users.school_name, users.grade, users.class_no").
		Order("users.grade ASC, users.class_no ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
