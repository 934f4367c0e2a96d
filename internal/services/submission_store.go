package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MAximeXX/AIEval/internal/data/repos"
	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/domain/survey"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

// SubmissionStore is the only component that touches section rows. It owns
// the lock flag alongside the sections but never couples the two.
type SubmissionStore interface {
	Get(dbc dbctx.Context, studentID uuid.UUID) (*types.StudentSubmission, error)
	UpsertSection(dbc dbctx.Context, studentID uuid.UUID, write types.SectionWrite, writer survey.Writer) (*types.StudentSubmission, error)
	SetLock(dbc dbctx.Context, studentID, actorID uuid.UUID, locked bool) (types.LockState, error)
	IsLocked(dbc dbctx.Context, studentID uuid.UUID) (bool, error)
}

type submissionStore struct {
	db         *gorm.DB
	log        *logger.Logger
	users      repos.UserRepo
	surveys    repos.SurveyResponseRepo
	composites repos.CompositeResponseRepo
	notes      repos.ParentNoteRepo
	reviews    repos.TeacherReviewRepo
	locks      repos.StudentLockRepo
}

func NewSubmissionStore(
	db *gorm.DB,
	baseLog *logger.Logger,
	users repos.UserRepo,
	surveys repos.SurveyResponseRepo,
	composites repos.CompositeResponseRepo,
	notes repos.ParentNoteRepo,
	reviews repos.TeacherReviewRepo,
	locks repos.StudentLockRepo,
) SubmissionStore {
	return &submissionStore{
		db:         db,
		log:        baseLog.With("service", "SubmissionStore"),
		users:      users,
		surveys:    surveys,
		composites: composites,
		notes:      notes,
		reviews:    reviews,
		locks:      locks,
	}
}

func (s *submissionStore) Get(dbc dbctx.Context, studentID uuid.UUID) (*types.StudentSubmission, error) {
	out := survey.EmptySubmission(studentID)

	sr, err := s.surveys.GetByStudentID(dbc, studentID)
	if err != nil {
		return nil, fmt.Errorf("load survey: %w", err)
	}
	if sr != nil {
		items, err := decodeAnswers(sr.Items)
		if err != nil {
			return nil, err
		}
		out.Survey = survey.SurveySection{
			Items:       items,
			WrittenBy:   sr.WrittenBy,
			SubmittedAt: timePtr(sr.SubmittedAt),
			UpdatedAt:   timePtr(sr.UpdatedAt),
		}
	}

	cr, err := s.composites.GetByStudentID(dbc, studentID)
	if err != nil {
		return nil, fmt.Errorf("load composite: %w", err)
	}
	if cr != nil {
		comp, err := decodeComposite(cr.Payload)
		if err != nil {
			return nil, err
		}
		out.Composite = survey.CompositeSection{
			Composite:   comp,
			WrittenBy:   cr.WrittenBy,
			SubmittedAt: timePtr(cr.SubmittedAt),
			UpdatedAt:   timePtr(cr.UpdatedAt),
		}
	}

	pn, err := s.notes.GetByStudentID(dbc, studentID)
	if err != nil {
		return nil, fmt.Errorf("load parent note: %w", err)
	}
	if pn != nil {
		out.ParentNote = survey.ParentNoteSection{
			Content:     pn.Content,
			SubmittedAt: timePtr(pn.SubmittedAt),
			UpdatedAt:   timePtr(pn.UpdatedAt),
		}
	}

	tr, err := s.reviews.GetByStudentID(dbc, studentID)
	if err != nil {
		return nil, fmt.Errorf("load teacher review: %w", err)
	}
	if tr != nil {
		traits, err := decodeStrings(tr.SelectedTraits)
		if err != nil {
			return nil, err
		}
		out.TeacherReview = &survey.ReviewSection{
			TeacherID:      tr.TeacherID,
			SelectedTraits: traits,
			RenderedText:   tr.RenderedText,
			SubmittedAt:    tr.SubmittedAt,
			UpdatedAt:      tr.UpdatedAt,
		}
	}

	lk, err := s.locks.GetByStudentID(dbc, studentID)
	if err != nil {
		return nil, fmt.Errorf("load lock: %w", err)
	}
	out.Lock = lockState(studentID, lk)
	return out, nil
}

func (s *submissionStore) UpsertSection(dbc dbctx.Context, studentID uuid.UUID, write types.SectionWrite, writer survey.Writer) (*types.StudentSubmission, error) {
	if write == nil {
		return nil, domainerrs.Invalid("section", "缺少提交内容")
	}
	var out *types.StudentSubmission
	err := inTx(s.db, dbc, func(dbc dbctx.Context) error {
		student, err := s.users.GetByID(dbc, studentID)
		if err != nil {
			return fmt.Errorf("load student: %w", err)
		}
		if student == nil || student.Role != types.RoleStudent {
			return domainerrs.NotFound("student", "学生不存在")
		}
		switch w := write.(type) {
		case survey.SurveyWrite:
			raw, err := json.Marshal(nonNilAnswers(w.Items))
			if err != nil {
				return err
			}
			if _, err := s.surveys.Upsert(dbc, &types.SurveyResponse{
				StudentID: studentID,
				GradeBand: student.Band(),
				Items:     datatypes.JSON(raw),
				WrittenBy: writer,
			}); err != nil {
				return fmt.Errorf("upsert survey: %w", err)
			}
		case survey.CompositeWrite:
			raw, err := json.Marshal(w.Composite.Normalized())
			if err != nil {
				return err
			}
			if _, err := s.composites.Upsert(dbc, &types.CompositeResponse{
				StudentID: studentID,
				Payload:   datatypes.JSON(raw),
				WrittenBy: writer,
			}); err != nil {
				return fmt.Errorf("upsert composite: %w", err)
			}
		case survey.ParentNoteWrite:
			if _, err := s.notes.Upsert(dbc, studentID, w.Content); err != nil {
				return fmt.Errorf("upsert parent note: %w", err)
			}
		case survey.TeacherReviewWrite:
			raw, err := json.Marshal(w.SelectedTraits)
			if err != nil {
				return err
			}
			if _, err := s.reviews.Upsert(dbc, &types.TeacherReview{
				StudentID:      studentID,
				TeacherID:      w.TeacherID,
				SelectedTraits: datatypes.JSON(raw),
				RenderedText:   w.RenderedText,
			}); err != nil {
				return fmt.Errorf("upsert teacher review: %w", err)
			}
		default:
			return fmt.Errorf("unsupported section write %T", write)
		}
		out, err = s.Get(dbc, studentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *submissionStore) SetLock(dbc dbctx.Context, studentID, actorID uuid.UUID, locked bool) (types.LockState, error) {
	row, err := s.locks.Set(dbc, studentID, locked, actorID)
	if err != nil {
		return types.LockState{}, fmt.Errorf("set lock: %w", err)
	}
	return lockState(studentID, row), nil
}

func (s *submissionStore) IsLocked(dbc dbctx.Context, studentID uuid.UUID) (bool, error) {
	row, err := s.locks.GetByStudentID(dbc, studentID)
	if err != nil {
		return false, fmt.Errorf("load lock: %w", err)
	}
	return row != nil && row.IsLocked, nil
}

func lockState(studentID uuid.UUID, row *types.StudentLock) types.LockState {
	if row == nil {
		return types.LockState{StudentID: studentID}
	}
	return types.LockState{StudentID: studentID, IsLocked: row.IsLocked, UpdatedAt: timePtr(row.UpdatedAt)}
}

func decodeAnswers(raw datatypes.JSON) ([]types.SurveyAnswer, error) {
	out := []types.SurveyAnswer{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode survey items: %w", err)
	}
	return nonNilAnswers(out), nil
}

func decodeComposite(raw datatypes.JSON) (types.Composite, error) {
	var c types.Composite
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c); err != nil {
			return types.Composite{}, fmt.Errorf("decode composite: %w", err)
		}
	}
	return c.Normalized(), nil
}

func decodeStrings(raw datatypes.JSON) ([]string, error) {
	out := []string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode string list: %w", err)
	}
	return out, nil
}

func nonNilAnswers(items []types.SurveyAnswer) []types.SurveyAnswer {
	if items == nil {
		return []types.SurveyAnswer{}
	}
	for i := range items {
		if items[i].Traits == nil {
			items[i].Traits = []string{}
		}
	}
	return items
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
