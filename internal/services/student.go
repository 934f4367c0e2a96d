package services

import (
	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/domain/survey"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
)

// StudentService is the read side of the student's own submission.
type StudentService interface {
	Submission(dbc dbctx.Context, actor *types.User) (*types.StudentSubmission, error)
	TeacherReview(dbc dbctx.Context, actor *types.User) (*survey.ReviewSection, error)
}

type studentService struct {
	store SubmissionStore
}

func NewStudentService(store SubmissionStore) StudentService {
	return &studentService{store: store}
}

func (s *studentService) Submission(dbc dbctx.Context, actor *types.User) (*types.StudentSubmission, error) {
	if actor == nil {
		return nil, domainerrs.ErrUnauthorized
	}
	if actor.Role != types.RoleStudent {
		return nil, domainerrs.Forbidden(msgNoPermission)
	}
	return s.store.Get(dbc, actor.ID)
}

func (s *studentService) TeacherReview(dbc dbctx.Context, actor *types.User) (*survey.ReviewSection, error) {
	sub, err := s.Submission(dbc, actor)
	if err != nil {
		return nil, err
	}
	if sub.TeacherReview == nil {
		return nil, domainerrs.NotFound("teacher_review", msgReviewMissing)
	}
	return sub.TeacherReview, nil
}
