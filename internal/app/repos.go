package app

import (
	"gorm.io/gorm"

	"github.com/MAximeXX/AIEval/internal/data/repos"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

type Repos struct {
	User             repos.UserRepo
	SurveyItem       repos.SurveyItemRepo
	SurveyResponse   repos.SurveyResponseRepo
	Composite        repos.CompositeResponseRepo
	ParentNote       repos.ParentNoteRepo
	TeacherReview    repos.TeacherReviewRepo
	StudentLock      repos.StudentLockRepo
	CompletionStatus repos.CompletionStatusRepo
	LLMEval          repos.LLMEvalRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:             repos.NewUserRepo(db, log),
		SurveyItem:       repos.NewSurveyItemRepo(db, log),
		SurveyResponse:   repos.NewSurveyResponseRepo(db, log),
		Composite:        repos.NewCompositeResponseRepo(db, log),
		ParentNote:       repos.NewParentNoteRepo(db, log),
		TeacherReview:    repos.NewTeacherReviewRepo(db, log),
		StudentLock:      repos.NewStudentLockRepo(db, log),
		CompletionStatus: repos.NewCompletionStatusRepo(db, log),
		LLMEval:          repos.NewLLMEvalRepo(db, log),
	}
}
