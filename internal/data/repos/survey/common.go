package survey

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
)

// upsertByStudent inserts row or, when the student already has one, rewrites
// only cols. Every section table is keyed by student_id, so each call is a
// single atomic statement that never touches another section.
func upsertByStudent(t *gorm.DB, dbc dbctx.Context, row any, cols []string) error {
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns(cols),
		}).
		Create(row).Error
}

func findByStudent[T any](t *gorm.DB, dbc dbctx.Context, studentID uuid.UUID, out *T) (bool, error) {
	res := t.WithContext(dbc.Ctx).
		Where("student_id = ?", studentID).
		Limit(1).
		Find(out)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func findByStudents[T any](t *gorm.DB, dbc dbctx.Context, studentIDs []uuid.UUID) ([]*T, error) {
	var out []*T
	if len(studentIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("student_id IN ?", studentIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
