package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MAximeXX/AIEval/internal/data/repos"
	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/domain/survey"
	"github.com/MAximeXX/AIEval/internal/pkg/ctxutil"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

type RosterEntry struct {
	StudentID        uuid.UUID       `json:"student_id"`
	StudentNo        string          `json:"student_no"`
	StudentName      string          `json:"student_name"`
	ClassNo          string          `json:"class_no"`
	Grade            int             `json:"grade"`
	GradeBand        types.GradeBand `json:"grade_band"`
	SurveyCompleted  bool            `json:"survey_completed"`
	ParentSubmitted  bool            `json:"parent_submitted"`
	TeacherSubmitted bool            `json:"teacher_submitted"`
	InfoCompleted    bool            `json:"info_completed"`
	IsLocked         bool            `json:"is_locked"`
	SelectedTraits   []string        `json:"selected_traits"`
}

type StudentSummary struct {
	ID          uuid.UUID       `json:"id"`
	StudentNo   string          `json:"student_no"`
	StudentName string          `json:"student_name"`
	SchoolName  string          `json:"school_name"`
	ClassNo     string          `json:"class_no"`
	Grade       int             `json:"grade"`
	GradeBand   types.GradeBand `json:"grade_band"`
}

type StudentDetail struct {
	Student StudentSummary `json:"student"`
	*types.StudentSubmission
}

// TeacherService holds the staff-side operations. Overrides and reviews are
// never blocked by the student's lock.
type TeacherService interface {
	Roster(dbc dbctx.Context, actor *types.User) ([]RosterEntry, error)
	StudentDetail(dbc dbctx.Context, actor *types.User, studentID uuid.UUID) (*StudentDetail, error)
	OverrideSurvey(dbc dbctx.Context, actor *types.User, studentID uuid.UUID, items []types.SurveyAnswer) (*types.StudentSubmission, error)
	OverrideComposite(dbc dbctx.Context, actor *types.User, studentID uuid.UUID, composite types.Composite) (*types.StudentSubmission, error)
	SubmitReview(dbc dbctx.Context, actor *types.User, studentID uuid.UUID, traits []string) (*survey.ReviewSection, error)
}

type teacherService struct {
	db         *gorm.DB
	log        *logger.Logger
	users      repos.UserRepo
	items      repos.SurveyItemRepo
	surveys    repos.SurveyResponseRepo
	reviews    repos.TeacherReviewRepo
	locks      repos.StudentLockRepo
	statuses   repos.CompletionStatusRepo
	store      SubmissionStore
	completion CompletionService
	notify     Notifier
}

func NewTeacherService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users repos.UserRepo,
	items repos.SurveyItemRepo,
	surveys repos.SurveyResponseRepo,
	reviews repos.TeacherReviewRepo,
	locks repos.StudentLockRepo,
	statuses repos.CompletionStatusRepo,
	store SubmissionStore,
	completion CompletionService,
	notify Notifier,
) TeacherService {
	return &teacherService{
		db:         db,
		log:        baseLog.With("service", "TeacherService"),
		users:      users,
		items:      items,
		surveys:    surveys,
		reviews:    reviews,
		locks:      locks,
		statuses:   statuses,
		store:      store,
		completion: completion,
		notify:     notify,
	}
}

func (s *teacherService) Roster(dbc dbctx.Context, actor *types.User) ([]RosterEntry, error) {
	if actor == nil {
		return nil, domainerrs.ErrUnauthorized
	}
	var (
		students []*types.User
		err      error
	)
	switch actor.Role {
	case types.RoleAdmin:
		students, err = s.users.ListAllStudents(dbc)
	case types.RoleTeacher:
		students, err = s.users.ListStudentsInClass(dbc, actor.SchoolName, actor.Grade, actor.ClassNo)
	default:
		return nil, domainerrs.Forbidden("无权限访问")
	}
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	if len(students) == 0 {
		return []RosterEntry{}, nil
	}

	ids := make([]uuid.UUID, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.ID)
	}
	surveyRows, err := s.surveys.GetByStudentIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	reviewRows, err := s.reviews.GetByStudentIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	lockRows, err := s.locks.GetByStudentIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	statusRows, err := s.statuses.GetByStudentIDs(dbc, ids)
	if err != nil {
		return nil, err
	}

	surveysBy := make(map[uuid.UUID]*types.SurveyResponse, len(surveyRows))
	for _, r := range surveyRows {
		surveysBy[r.StudentID] = r
	}
	reviewsBy := make(map[uuid.UUID]*types.TeacherReview, len(reviewRows))
	for _, r := range reviewRows {
		reviewsBy[r.StudentID] = r
	}
	locksBy := make(map[uuid.UUID]bool, len(lockRows))
	for _, r := range lockRows {
		locksBy[r.StudentID] = r.IsLocked
	}
	statusBy := make(map[uuid.UUID]*types.CompletionStatus, len(statusRows))
	for _, r := range statusRows {
		statusBy[r.StudentID] = r
	}

	expected := map[types.GradeBand]int{}
	out := make([]RosterEntry, 0, len(students))
	for _, st := range students {
		band := st.Band()
		if _, ok := expected[band]; !ok {
			bandItems, err := s.items.ListByBand(dbc, band)
			if err != nil {
				return nil, err
			}
			expected[band] = len(bandItems)
		}
		entry := RosterEntry{
			StudentID:      st.ID,
			StudentNo:      st.StudentNo,
			StudentName:    st.DisplayName(),
			ClassNo:        st.ClassNo,
			Grade:          st.Grade,
			GradeBand:      band,
			IsLocked:       locksBy[st.ID],
			SelectedTraits: []string{},
		}
		if sr := surveysBy[st.ID]; sr != nil {
			answers, err := decodeAnswers(sr.Items)
			if err != nil {
				return nil, err
			}
			entry.SurveyCompleted = answersComplete(answers, expected[band])
		}
		if cs := statusBy[st.ID]; cs != nil {
			entry.ParentSubmitted = cs.ParentSubmitted
			entry.TeacherSubmitted = cs.TeacherSubmitted
		}
		if tr := reviewsBy[st.ID]; tr != nil {
			if traits, err := decodeStrings(tr.SelectedTraits); err == nil {
				entry.SelectedTraits = traits
			}
		}
		entry.InfoCompleted = entry.SurveyCompleted && entry.ParentSubmitted && entry.TeacherSubmitted
		out = append(out, entry)
	}
	return out, nil
}

// answersComplete is the roster's quick check: right count, every item rated.
func answersComplete(answers []types.SurveyAnswer, expected int) bool {
	if expected == 0 || len(answers) != expected {
		return false
	}
	for _, a := range answers {
		if strings.TrimSpace(a.Frequency) == "" || strings.TrimSpace(a.Skill) == "" {
			return false
		}
	}
	return true
}

func (s *teacherService) StudentDetail(dbc dbctx.Context, actor *types.User, studentID uuid.UUID) (*StudentDetail, error) {
	student, err := staffStudent(dbc, s.users, actor, studentID)
	if err != nil {
		return nil, err
	}
	sub, err := s.store.Get(dbc, studentID)
	if err != nil {
		return nil, err
	}
	return &StudentDetail{Student: summarize(student), StudentSubmission: sub}, nil
}

func summarize(u *types.User) StudentSummary {
	return StudentSummary{
		ID:          u.ID,
		StudentNo:   u.StudentNo,
		StudentName: u.DisplayName(),
		SchoolName:  u.SchoolName,
		ClassNo:     u.ClassNo,
		Grade:       u.Grade,
		GradeBand:   u.Band(),
	}
}

func (s *teacherService) OverrideSurvey(dbc dbctx.Context, actor *types.User, studentID uuid.UUID, items []types.SurveyAnswer) (*types.StudentSubmission, error) {
	student, err := staffStudent(dbc, s.users, actor, studentID)
	if err != nil {
		return nil, err
	}
	write := survey.SurveyWrite{Items: items}
	if err := write.Validate(); err != nil {
		return nil, err
	}
	if err := checkBandItems(dbc, s.items, student.Band(), items); err != nil {
		return nil, err
	}
	return s.override(dbc, actor, student, write)
}

func (s *teacherService) OverrideComposite(dbc dbctx.Context, actor *types.User, studentID uuid.UUID, composite types.Composite) (*types.StudentSubmission, error) {
	student, err := staffStudent(dbc, s.users, actor, studentID)
	if err != nil {
		return nil, err
	}
	write := survey.CompositeWrite{Composite: composite}
	if err := write.Validate(); err != nil {
		return nil, err
	}
	return s.override(dbc, actor, student, write)
}

func (s *teacherService) override(dbc dbctx.Context, actor, student *types.User, write types.SectionWrite) (*types.StudentSubmission, error) {
	var out *types.StudentSubmission
	err := inTx(s.db, dbc, func(dbc dbctx.Context) error {
		var err error
		out, err = s.store.UpsertSection(dbc, student.ID, write, survey.WriterTeacherOverride)
		if err != nil {
			return err
		}
		_, err = s.completion.RefreshStudent(dbc, student)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Section overridden", "student_id", student.ID, "actor_id", actor.ID, "section", write.Section())

	ctx, cancel := ctxutil.Detached(dbc.Ctx, emitTimeout)
	defer cancel()
	s.notify.SurveyOverridden(ctx, student, write.Section())
	return out, nil
}

func (s *teacherService) SubmitReview(dbc dbctx.Context, actor *types.User, studentID uuid.UUID, traits []string) (*survey.ReviewSection, error) {
	student, err := staffStudent(dbc, s.users, actor, studentID)
	if err != nil {
		return nil, err
	}
	write := survey.TeacherReviewWrite{TeacherID: actor.ID, SelectedTraits: traits}
	if err := write.Validate(); err != nil {
		return nil, err
	}
	band := student.Band()
	for i, t := range traits {
		if !survey.IsReviewTrait(band, t) {
			return nil, &domainerrs.ValidationError{
				Field:   fmt.Sprintf("selected_traits[%d]", i),
				Rule:    "oneof",
				Message: "请选择与学段匹配的关键词",
			}
		}
	}
	write.RenderedText = RenderReviewText(traits)

	var out *types.StudentSubmission
	err = inTx(s.db, dbc, func(dbc dbctx.Context) error {
		var err error
		out, err = s.store.UpsertSection(dbc, studentID, write, survey.WriterTeacherOverride)
		if err != nil {
			return err
		}
		done := true
		_, err = s.completion.Touch(dbc, studentID, types.CompletionPatch{Teacher: &done})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Teacher review submitted", "student_id", studentID, "teacher_id", actor.ID, "traits", len(traits))

	ctx, cancel := ctxutil.Detached(dbc.Ctx, emitTimeout)
	defer cancel()
	s.notify.ReviewReady(ctx, student)
	return out.TeacherReview, nil
}
