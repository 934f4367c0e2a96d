package repos

import (
	"gorm.io/gorm"

	"github.com/MAximeXX/AIEval/internal/data/repos/survey"
	"github.com/MAximeXX/AIEval/internal/data/repos/user"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

type UserRepo = user.UserRepo

type SurveyItemRepo = survey.SurveyItemRepo
type SurveyResponseRepo = survey.SurveyResponseRepo
type CompositeResponseRepo = survey.CompositeResponseRepo
type ParentNoteRepo = survey.ParentNoteRepo
type TeacherReviewRepo = survey.TeacherReviewRepo
type StudentLockRepo = survey.StudentLockRepo
type CompletionStatusRepo = survey.CompletionStatusRepo
type LLMEvalRepo = survey.LLMEvalRepo

type ClassProgress = survey.ClassProgress

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewSurveyItemRepo(db *gorm.DB, baseLog *logger.Logger) SurveyItemRepo {
	return survey.NewSurveyItemRepo(db, baseLog)
}
func NewSurveyResponseRepo(db *gorm.DB, baseLog *logger.Logger) SurveyResponseRepo {
	return survey.NewSurveyResponseRepo(db, baseLog)
}
func NewCompositeResponseRepo(db *gorm.DB, baseLog *logger.Logger) CompositeResponseRepo {
	return survey.NewCompositeResponseRepo(db, baseLog)
}
func NewParentNoteRepo(db *gorm.DB, baseLog *logger.Logger) ParentNoteRepo {
	return survey.NewParentNoteRepo(db, baseLog)
}
func NewTeacherReviewRepo(db *gorm.DB, baseLog *logger.Logger) TeacherReviewRepo {
	return survey.NewTeacherReviewRepo(db, baseLog)
}
func NewStudentLockRepo(db *gorm.DB, baseLog *logger.Logger) StudentLockRepo {
	return survey.NewStudentLockRepo(db, baseLog)
}
func NewCompletionStatusRepo(db *gorm.DB, baseLog *logger.Logger) CompletionStatusRepo {
	return survey.NewCompletionStatusRepo(db, baseLog)
}
func NewLLMEvalRepo(db *gorm.DB, baseLog *logger.Logger) LLMEvalRepo {
	return survey.NewLLMEvalRepo(db, baseLog)
}
