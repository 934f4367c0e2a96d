package survey

import (
	"gorm.io/gorm"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

type SurveyItemRepo interface {
	Create(dbc dbctx.Context, items []*types.SurveyItem) ([]*types.SurveyItem, error)
	Count(dbc dbctx.Context) (int64, error)
	ListByBand(dbc dbctx.Context, band types.GradeBand) ([]*types.SurveyItem, error)
	ListByIDs(dbc dbctx.Context, ids []int) ([]*types.SurveyItem, error)
}

type surveyItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSurveyItemRepo(db *gorm.DB, baseLog *logger.Logger) SurveyItemRepo {
	return &surveyItemRepo{db: db, log: baseLog.With("repo", "SurveyItemRepo")}
}

func (r *surveyItemRepo) Create(dbc dbctx.Context, items []*types.SurveyItem) ([]*types.SurveyItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(items) == 0 {
		return []*types.SurveyItem{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *surveyItemRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).Model(&types.SurveyItem{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *surveyItemRepo) ListByBand(dbc dbctx.Context, band types.GradeBand) ([]*types.SurveyItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.SurveyItem
	if err := transaction.WithContext(dbc.Ctx).
		Where("grade_band = ?", band).
		Order("sort_key ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *surveyItemRepo) ListByIDs(dbc dbctx.Context, ids []int) ([]*types.SurveyItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.SurveyItem
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
