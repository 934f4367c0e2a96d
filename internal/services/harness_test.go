package services

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/MAximeXX/AIEval/internal/data/repos"
	"github.com/MAximeXX/AIEval/internal/data/repos/testutil"
	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	"github.com/MAximeXX/AIEval/internal/platform/openai"
	"github.com/MAximeXX/AIEval/internal/questionnaire"
	"github.com/MAximeXX/AIEval/internal/realtime"
)

type emitted struct {
	Scope realtime.Scope
	Event realtime.Event
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
	err    error
}

func (r *recordingEmitter) Emit(ctx context.Context, scope realtime.Scope, ev realtime.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{Scope: scope, Event: ev})
	return r.err
}

func (r *recordingEmitter) forScope(scope realtime.Scope) []realtime.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []realtime.Event
	for _, e := range r.events {
		if e.Scope == scope {
			out = append(out, e.Event)
		}
	}
	return out
}

func (r *recordingEmitter) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type harness struct {
	db         *gorm.DB
	dbc        dbctx.Context
	emit       *recordingEmitter
	bank       *questionnaire.Bank
	items      repos.SurveyItemRepo
	store      SubmissionStore
	completion CompletionService
	gate       WriteGate
	locks      LockCoordinator
	teacher    TeacherService
	students   StudentService
	analytics  AnalyticsService
	access     RealtimeAccess
	evalSvc    EvaluationService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithLLM(t, nil)
}

func newHarnessWithLLM(t *testing.T, llm openai.Client) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	bank, err := questionnaire.Load()
	if err != nil {
		t.Fatalf("questionnaire: %v", err)
	}

	users := repos.NewUserRepo(db, log)
	items := repos.NewSurveyItemRepo(db, log)
	surveys := repos.NewSurveyResponseRepo(db, log)
	composites := repos.NewCompositeResponseRepo(db, log)
	notes := repos.NewParentNoteRepo(db, log)
	reviews := repos.NewTeacherReviewRepo(db, log)
	lockRepo := repos.NewStudentLockRepo(db, log)
	statuses := repos.NewCompletionStatusRepo(db, log)
	evals := repos.NewLLMEvalRepo(db, log)

	emit := &recordingEmitter{}
	notify := NewNotifier(emit, log)
	store := NewSubmissionStore(db, log, users, surveys, composites, notes, reviews, lockRepo)
	completion := NewCompletionService(db, log, bank, users, items, store, statuses, evals)
	locks := NewLockCoordinator(db, log, users, store, lockRepo, notify)

	h := &harness{
		db:         db,
		dbc:        dbctx.Context{Ctx: context.Background()},
		emit:       emit,
		bank:       bank,
		items:      items,
		store:      store,
		completion: completion,
		gate:       NewWriteGate(db, log, store, items, completion, notify),
		locks:      locks,
		teacher:    NewTeacherService(db, log, users, items, surveys, reviews, lockRepo, statuses, store, completion, notify),
		students:   NewStudentService(store),
		analytics:  NewAnalyticsService(log, users, composites, statuses),
		access:     NewRealtimeAccess(log, users, locks),
	}
	h.evalSvc = NewEvaluationService(db, log, llm, items, evals, store, completion)
	return h
}

// classroom is a grade-3 class with one teacher, two students and a seeded
// mid-band item bank.
type classroom struct {
	teacher *types.User
	alice   *types.User
	bob     *types.User
	itemIDs []int
}

func seedClassroom(t *testing.T, h *harness) classroom {
	t.Helper()
	return classroom{
		teacher: testutil.SeedTeacher(t, h.db, 3, "31"),
		alice:   testutil.SeedStudent(t, h.db, 3, "31", "01"),
		bob:     testutil.SeedStudent(t, h.db, 3, "31", "02"),
		itemIDs: testutil.SeedSurveyItems(t, h.db, types.GradeBandMid, 4),
	}
}

func answersFor(ids []int, freq string) []types.SurveyAnswer {
	out := make([]types.SurveyAnswer, 0, len(ids))
	for _, id := range ids {
		out = append(out, types.SurveyAnswer{SurveyItemID: id, Frequency: freq, Skill: "熟练", Traits: []string{"坚持"}})
	}
	return out
}

// fullComposite answers q1, q2 and every grade-3 stage.
func fullComposite(score int) types.Composite {
	c := types.Composite{
		Q1: map[string]string{"原来": "偶尔", "现在": "每天"},
		Q2: map[string]string{"原来": "部分同意", "现在": "完全同意"},
		Q3: map[string]map[string]*int{},
	}
	for _, stage := range []string{"三年级上学期", "三年级下学期"} {
		c.Q3[stage] = map[string]*int{
			"坚毅担责": testutil.PtrInt(score),
			"勤劳诚实": testutil.PtrInt(score),
			"合作智慧": testutil.PtrInt(score),
		}
	}
	return c
}
