package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/MAximeXX/AIEval/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Accounts
		// =========================
		&types.User{},

		// =========================
		// Questionnaire bank
		// =========================
		&types.SurveyItem{},

		// =========================
		// Submission sections (one row per student each)
		// =========================
		&types.SurveyResponse{},
		&types.CompositeResponse{},
		&types.ParentNote{},
		&types.TeacherReview{},
		&types.StudentLock{},

		// =========================
		// Derived state
		// =========================
		&types.CompletionStatus{},
		&types.LLMEval{},
	)
}

func EnsureIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_users_roster
		ON users(role, school_name, grade, class_no, student_no);
	`).Error; err != nil {
		return fmt.Errorf("create idx_users_roster: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_completion_flags
		ON completion_status(student_submitted, parent_submitted, teacher_submitted);
	`).Error; err != nil {
		return fmt.Errorf("create idx_completion_flags: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureIndexes(s.db); err != nil {
		s.log.Error("Index migration failed", "error", err)
		return err
	}
	return nil
}
