package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MAximeXX/AIEval/internal/data/repos"
	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/domain/survey"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
	"github.com/MAximeXX/AIEval/internal/questionnaire"
)

type CompletionService interface {
	Touch(dbc dbctx.Context, studentID uuid.UUID, patch types.CompletionPatch) (*types.CompletionStatus, error)
	Get(dbc dbctx.Context, studentID uuid.UUID) (*types.CompletionStatus, error)
	IsStudentSubmissionComplete(dbc dbctx.Context, student *types.User) (bool, error)
	// RefreshStudent recomputes student_submitted from the stored sections.
	RefreshStudent(dbc dbctx.Context, student *types.User) (*types.CompletionStatus, error)
	// Recompute rebuilds every student's flags and returns how many were written.
	Recompute(dbc dbctx.Context) (int, error)
}

type completionService struct {
	db         *gorm.DB
	log        *logger.Logger
	bank       *questionnaire.Bank
	users      repos.UserRepo
	items      repos.SurveyItemRepo
	store      SubmissionStore
	completion repos.CompletionStatusRepo
	evals      repos.LLMEvalRepo
}

func NewCompletionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	bank *questionnaire.Bank,
	users repos.UserRepo,
	items repos.SurveyItemRepo,
	store SubmissionStore,
	completion repos.CompletionStatusRepo,
	evals repos.LLMEvalRepo,
) CompletionService {
	return &completionService{
		db:         db,
		log:        baseLog.With("service", "CompletionService"),
		bank:       bank,
		users:      users,
		items:      items,
		store:      store,
		completion: completion,
		evals:      evals,
	}
}

func (s *completionService) Touch(dbc dbctx.Context, studentID uuid.UUID, patch types.CompletionPatch) (*types.CompletionStatus, error) {
	if patch.Empty() {
		return s.Get(dbc, studentID)
	}
	return s.completion.Touch(dbc, studentID, patch)
}

func (s *completionService) Get(dbc dbctx.Context, studentID uuid.UUID) (*types.CompletionStatus, error) {
	row, err := s.completion.GetByStudentID(dbc, studentID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return &types.CompletionStatus{StudentID: studentID}, nil
	}
	return row, nil
}

func (s *completionService) IsStudentSubmissionComplete(dbc dbctx.Context, student *types.User) (bool, error) {
	sub, err := s.store.Get(dbc, student.ID)
	if err != nil {
		return false, err
	}
	return s.submissionComplete(dbc, student, sub)
}

func (s *completionService) submissionComplete(dbc dbctx.Context, student *types.User, sub *types.StudentSubmission) (bool, error) {
	bandItems, err := s.items.ListByBand(dbc, student.Band())
	if err != nil {
		return false, fmt.Errorf("list survey items: %w", err)
	}
	if len(bandItems) == 0 || len(sub.Survey.Items) != len(bandItems) {
		return false, nil
	}
	answered := make(map[int]types.SurveyAnswer, len(sub.Survey.Items))
	for _, a := range sub.Survey.Items {
		answered[a.SurveyItemID] = a
	}
	for _, it := range bandItems {
		a, ok := answered[it.ID]
		if !ok || a.Frequency == "" || a.Skill == "" {
			return false, nil
		}
	}
	return compositeComplete(s.bank, student, sub.Composite.Composite), nil
}

func compositeComplete(bank *questionnaire.Bank, student *types.User, c types.Composite) bool {
	for _, phase := range survey.Phases {
		if strings.TrimSpace(c.Q1[phase]) == "" || strings.TrimSpace(c.Q2[phase]) == "" {
			return false
		}
	}
	if bank == nil {
		return true
	}
	for _, stage := range bank.RequiredStages(student.Grade, student.Band()) {
		row := c.Q3[stage]
		for _, col := range bank.Q3Columns() {
			if row == nil || row[col] == nil {
				return false
			}
		}
	}
	return true
}

func (s *completionService) RefreshStudent(dbc dbctx.Context, student *types.User) (*types.CompletionStatus, error) {
	done, err := s.IsStudentSubmissionComplete(dbc, student)
	if err != nil {
		return nil, err
	}
	return s.completion.Touch(dbc, student.ID, types.CompletionPatch{Student: &done})
}

func (s *completionService) Recompute(dbc dbctx.Context) (int, error) {
	students, err := s.users.ListAllStudents(dbc)
	if err != nil {
		return 0, fmt.Errorf("list students: %w", err)
	}
	n := 0
	for _, st := range students {
		err := inTx(s.db, dbc, func(dbc dbctx.Context) error {
			sub, err := s.store.Get(dbc, st.ID)
			if err != nil {
				return err
			}
			done, err := s.submissionComplete(dbc, st, sub)
			if err != nil {
				return err
			}
			parent := strings.TrimSpace(sub.ParentNote.Content) != ""
			teacher := sub.TeacherReview != nil
			eval, err := s.evals.GetByStudentID(dbc, st.ID)
			if err != nil {
				return err
			}
			llm := eval != nil
			_, err = s.completion.Touch(dbc, st.ID, types.CompletionPatch{
				Student: &done,
				Parent:  &parent,
				Teacher: &teacher,
				LLM:     &llm,
			})
			return err
		})
		if err != nil {
			return n, fmt.Errorf("recompute %s: %w", st.Username, err)
		}
		n++
	}
	s.log.Info("Completion recomputed", "students", n)
	return n, nil
}
