package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MAximeXX/AIEval/internal/data/repos"
	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/domain/survey"
	"github.com/MAximeXX/AIEval/internal/observability"
	"github.com/MAximeXX/AIEval/internal/pkg/ctxutil"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

// WriteGate is the single path for student-originated writes. Teacher and
// admin writes go through TeacherService and never consult the lock.
type WriteGate interface {
	AttemptStudentWrite(dbc dbctx.Context, actor *types.User, studentID uuid.UUID, write types.SectionWrite) (*types.StudentSubmission, error)
}

type writeGate struct {
	db         *gorm.DB
	log        *logger.Logger
	store      SubmissionStore
	items      repos.SurveyItemRepo
	completion CompletionService
	notify     Notifier
}

func NewWriteGate(
	db *gorm.DB,
	baseLog *logger.Logger,
	store SubmissionStore,
	items repos.SurveyItemRepo,
	completion CompletionService,
	notify Notifier,
) WriteGate {
	return &writeGate{
		db:         db,
		log:        baseLog.With("service", "WriteGate"),
		store:      store,
		items:      items,
		completion: completion,
		notify:     notify,
	}
}

func (g *writeGate) AttemptStudentWrite(dbc dbctx.Context, actor *types.User, studentID uuid.UUID, write types.SectionWrite) (*types.StudentSubmission, error) {
	if actor == nil {
		return nil, domainerrs.ErrUnauthorized
	}
	if actor.Role != types.RoleStudent || actor.ID != studentID {
		return nil, domainerrs.Forbidden("无权限访问")
	}
	if write == nil || !write.Section().StudentWritable() {
		return nil, domainerrs.Forbidden("无权限修改该内容")
	}
	if err := write.Validate(); err != nil {
		observability.Current().ObserveStudentWrite(string(write.Section()), "invalid")
		return nil, err
	}
	if sw, ok := write.(survey.SurveyWrite); ok {
		if err := checkBandItems(dbc, g.items, actor.Band(), sw.Items); err != nil {
			return nil, err
		}
	}

	var out *types.StudentSubmission
	err := inTx(g.db, dbc, func(dbc dbctx.Context) error {
		locked, err := g.store.IsLocked(dbc, studentID)
		if err != nil {
			return err
		}
		if locked {
			return &domainerrs.LockedError{StudentID: studentID}
		}
		out, err = g.store.UpsertSection(dbc, studentID, write, survey.WriterStudent)
		if err != nil {
			return err
		}
		return g.refreshCompletion(dbc, actor, write.Section())
	})
	if err != nil {
		if errors.Is(err, domainerrs.ErrLocked) {
			observability.Current().ObserveStudentWrite(string(write.Section()), "locked")
			g.log.Info("Student write rejected; submission locked", "student_id", studentID, "section", write.Section())
		} else {
			observability.Current().ObserveStudentWrite(string(write.Section()), "error")
		}
		return nil, err
	}

	observability.Current().ObserveStudentWrite(string(write.Section()), "saved")
	g.log.Debug("Student section saved", "student_id", studentID, "section", write.Section())
	ctx, cancel := ctxutil.Detached(dbc.Ctx, emitTimeout)
	defer cancel()
	g.notify.SectionUpdated(ctx, actor, write.Section())
	return out, nil
}

func (g *writeGate) refreshCompletion(dbc dbctx.Context, student *types.User, section types.Section) error {
	switch section {
	case types.SectionParentNote:
		done := true
		_, err := g.completion.Touch(dbc, student.ID, types.CompletionPatch{Parent: &done})
		return err
	default:
		_, err := g.completion.RefreshStudent(dbc, student)
		return err
	}
}

// checkBandItems rejects answers that reference items outside the band.
func checkBandItems(dbc dbctx.Context, items repos.SurveyItemRepo, band types.GradeBand, answers []types.SurveyAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	ids := make([]int, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.SurveyItemID)
	}
	found, err := items.ListByIDs(dbc, ids)
	if err != nil {
		return fmt.Errorf("load survey items: %w", err)
	}
	known := make(map[int]types.GradeBand, len(found))
	for _, it := range found {
		known[it.ID] = it.GradeBand
	}
	for i, a := range answers {
		if b, ok := known[a.SurveyItemID]; !ok || b != band {
			return &domainerrs.ValidationError{
				Field:   fmt.Sprintf("items[%d].survey_item_id", i),
				Rule:    "oneof",
				Message: fmt.Sprintf("题目 %d 不属于当前学段", a.SurveyItemID),
			}
		}
	}
	return nil
}
