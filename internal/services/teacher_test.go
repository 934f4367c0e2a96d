package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/MAximeXX/AIEval/internal/data/repos/testutil"
	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/domain/survey"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/realtime"
)

func TestOverrideBypassesLockAndNotifiesStudent(t *testing.T) {
	h := newHarness(t)
	c := seedClassroom(t, h)

	if _, err := h.locks.Lock(h.dbc, c.teacher, c.alice.ID); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	h.emit.reset()

	sub, err := h.teacher.OverrideSurvey(h.dbc, c.teacher, c.alice.ID, answersFor(c.itemIDs, "偶尔"))
	if err != nil {
		t.Fatalf("OverrideSurvey: %v", err)
	}
	if !sub.IsLocked() {
		t.Fatalf("override changed lock: want locked")
	}
	if sub.Survey.WrittenBy != types.WriterTeacherOverride {
		t.Fatalf("written_by: want=%s got=%s", types.WriterTeacherOverride, sub.Survey.WrittenBy)
	}
	evs := h.emit.forScope(realtime.StudentScope(c.alice.ID))
	if len(evs) != 1 || evs[0].Kind != realtime.EventSurveyOverridden || evs[0].Section != types.SectionSurvey {
		t.Fatalf("student events: got=%+v", evs)
	}

	if _, err := h.teacher.OverrideComposite(h.dbc, c.teacher, c.alice.ID, fullComposite(70)); err != nil {
		t.Fatalf("OverrideComposite: %v", err)
	}
	status, _ := h.completion.Get(h.dbc, c.alice.ID)
	if !status.StudentSubmitted {
		t.Fatalf("student_submitted after full override: want=true got=false")
	}
}

func TestOverrideValidatesPayload(t *testing.T) {
	h := newHarness(t)
	c := seedClassroom(t, h)

	bad := fullComposite(70)
	bad.Q3["三年级下学期"]["合作智慧"] = testutil.PtrInt(-1)
	if _, err := h.teacher.OverrideComposite(h.dbc, c.teacher, c.alice.ID, bad); !errors.Is(err, domainerrs.ErrInvalidArgument) {
		t.Fatalf("negative score: want validation error got=%v", err)
	}
	highIDs := testutil.SeedSurveyItems(t, h.db, types.GradeBandHigh, 1)
	if _, err := h.teacher.OverrideSurvey(h.dbc, c.teacher, c.alice.ID, answersFor(highIDs, "每天")); !errors.Is(err, domainerrs.ErrInvalidArgument) {
		t.Fatalf("foreign item: want validation error got=%v", err)
	}
	if got := h.emit.forScope(realtime.StudentScope(c.alice.ID)); len(got) != 0 {
		t.Fatalf("rejected override emitted %+v", got)
	}
}

func TestSubmitReview(t *testing.T) {
	h := newHarness(t)
	c := seedClassroom(t, h)

	t.Run("off band trait", func(t *testing.T) {
		_, err := h.teacher.SubmitReview(h.dbc, c.teacher, c.alice.ID, []string{"坚强", "坚持"})
		var ve *domainerrs.ValidationError
		if !errors.As(err, &ve) || ve.Message != "请选择与学段匹配的关键词" {
			t.Fatalf("want band validation error got=%v", err)
		}
	})
	t.Run("too many traits", func(t *testing.T) {
		traits := append(survey.ReviewTraitsFor(types.GradeBandMid), "坚强")
		if _, err := h.teacher.SubmitReview(h.dbc, c.teacher, c.alice.ID, traits); !errors.Is(err, domainerrs.ErrInvalidArgument) {
			t.Fatalf("want validation error got=%v", err)
		}
	})
	t.Run("empty", func(t *testing.T) {
		if _, err := h.teacher.SubmitReview(h.dbc, c.teacher, c.alice.ID, nil); !errors.Is(err, domainerrs.ErrInvalidArgument) {
			t.Fatalf("want validation error got=%v", err)
		}
	})

	h.emit.reset()
	review, err := h.teacher.SubmitReview(h.dbc, c.teacher, c.alice.ID, []string{"坚强", "协作"})
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
	if !strings.Contains(review.RenderedText, "坚强、协作") {
		t.Fatalf("rendered text: got=%q", review.RenderedText)
	}
	if review.TeacherID != c.teacher.ID {
		t.Fatalf("teacher id: want=%s got=%s", c.teacher.ID, review.TeacherID)
	}
	evs := h.emit.forScope(realtime.StudentScope(c.alice.ID))
	if len(evs) != 1 || evs[0].Kind != realtime.EventTeacherReviewReady {
		t.Fatalf("student events: got=%+v", evs)
	}
	status, _ := h.completion.Get(h.dbc, c.alice.ID)
	if !status.TeacherSubmitted {
		t.Fatalf("teacher_submitted: want=true got=false")
	}

	got, err := h.students.TeacherReview(h.dbc, c.alice)
	if err != nil || got.RenderedText != review.RenderedText {
		t.Fatalf("student view: got=%+v err=%v", got, err)
	}
	if _, err := h.students.TeacherReview(h.dbc, c.bob); !errors.Is(err, domainerrs.ErrNotFound) {
		t.Fatalf("bob review: want not found got=%v", err)
	}
}

func TestRejectedReviewKeepsPriorSelection(t *testing.T) {
	h := newHarness(t)
	c := seedClassroom(t, h)

	first, err := h.teacher.SubmitReview(h.dbc, c.teacher, c.alice.ID, []string{"负责", "探究"})
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
	traits := append(survey.ReviewTraitsFor(types.GradeBandMid), "坚强")
	if _, err := h.teacher.SubmitReview(h.dbc, c.teacher, c.alice.ID, traits); !errors.Is(err, domainerrs.ErrInvalidArgument) {
		t.Fatalf("7 traits: want validation error got=%v", err)
	}

	sub, err := h.store.Get(h.dbc, c.alice.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got := sub.TeacherReview
	if got == nil {
		t.Fatalf("review: want kept got=nil")
	}
	if strings.Join(got.SelectedTraits, ",") != "负责,探究" {
		t.Fatalf("traits: want=负责,探究 got=%v", got.SelectedTraits)
	}
	if got.RenderedText != first.RenderedText {
		t.Fatalf("rendered text: want=%q got=%q", first.RenderedText, got.RenderedText)
	}
}

func TestRoster(t *testing.T) {
	h := newHarness(t)
	c := seedClassroom(t, h)
	testutil.SeedStudent(t, h.db, 3, "32", "01")

	if _, err := h.gate.AttemptStudentWrite(h.dbc, c.alice, c.alice.ID, types.SurveyWrite{Items: answersFor(c.itemIDs, "每天")}); err != nil {
		t.Fatalf("survey: %v", err)
	}
	if _, err := h.locks.Lock(h.dbc, c.teacher, c.bob.ID); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	roster, err := h.teacher.Roster(h.dbc, c.teacher)
	if err != nil {
		t.Fatalf("Roster: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("roster size: want=2 got=%d", len(roster))
	}
	byID := map[string]RosterEntry{}
	for _, e := range roster {
		byID[e.StudentID.String()] = e
	}
	if a := byID[c.alice.ID.String()]; !a.SurveyCompleted || a.IsLocked {
		t.Fatalf("alice: got=%+v", a)
	}
	if b := byID[c.bob.ID.String()]; b.SurveyCompleted || !b.IsLocked {
		t.Fatalf("bob: got=%+v", b)
	}

	admin := testutil.SeedAdmin(t, h.db)
	all, err := h.teacher.Roster(h.dbc, admin)
	if err != nil || len(all) != 3 {
		t.Fatalf("admin roster: want=3 got=%d err=%v", len(all), err)
	}
	if _, err := h.teacher.Roster(h.dbc, c.alice); !errors.Is(err, domainerrs.ErrForbidden) {
		t.Fatalf("student roster: want forbidden got=%v", err)
	}
}

func TestStudentDetailIsClassScoped(t *testing.T) {
	h := newHarness(t)
	c := seedClassroom(t, h)
	other := testutil.SeedTeacher(t, h.db, 4, "41")

	detail, err := h.teacher.StudentDetail(h.dbc, c.teacher, c.alice.ID)
	if err != nil {
		t.Fatalf("StudentDetail: %v", err)
	}
	if detail.Student.GradeBand != types.GradeBandMid || detail.StudentSubmission == nil {
		t.Fatalf("detail: got=%+v", detail)
	}
	if _, err := h.teacher.StudentDetail(h.dbc, other, c.alice.ID); !errors.Is(err, domainerrs.ErrForbidden) {
		t.Fatalf("other teacher: want forbidden got=%v", err)
	}
}
