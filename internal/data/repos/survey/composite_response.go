package survey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

type CompositeResponseRepo interface {
	GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) (*types.CompositeResponse, error)
	GetByStudentIDs(dbc dbctx.Context, studentIDs []uuid.UUID) ([]*types.CompositeResponse, error)
	ListAll(dbc dbctx.Context) ([]*types.CompositeResponse, error)
	Upsert(dbc dbctx.Context, row *types.CompositeResponse) (*types.CompositeResponse, error)
}

type compositeResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompositeResponseRepo(db *gorm.DB, baseLog *logger.Logger) CompositeResponseRepo {
	return &compositeResponseRepo{db: db, log: baseLog.With("repo", "CompositeResponseRepo")}
}

func (r *compositeResponseRepo) GetByStudentID(dbc dbctx.Context, studentID uuid.UUID) (*types.CompositeResponse, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.CompositeResponse
	found, err := findByStudent(transaction, dbc, studentID, &row)
	if err != nil || !found {
		return nil, err
	}
	return &row, nil
}

func (r *compositeResponseRepo) GetByStudentIDs(dbc dbctx.Context, studentIDs []uuid.UUID) ([]*types.CompositeResponse, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return findByStudents[types.CompositeResponse](transaction, dbc, studentIDs)
}

func (r *compositeResponseRepo) ListAll(dbc dbctx.Context) ([]*types.CompositeResponse, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.CompositeResponse
	if err := transaction.WithContext(dbc.Ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *compositeResponseRepo) Upsert(dbc dbctx.Context, row *types.CompositeResponse) (*types.CompositeResponse, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	row.SubmittedAt, row.UpdatedAt = now, now
	if err := upsertByStudent(transaction, dbc, row, []string{"payload", "written_by", "updated_at"}); err != nil {
		return nil, err
	}
	return r.GetByStudentID(dbc, row.StudentID)
}
