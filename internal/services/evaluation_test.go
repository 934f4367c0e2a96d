package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	types "github.com/MAximeXX/AIEval/internal/domain"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
)

type fakeLLM struct {
	text  string
	err   error
	calls atomic.Int32
}

func (f *fakeLLM) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.calls.Add(1)
	if !strings.HasPrefix(user, evalPromptHeader) {
		return "", errors.New("prompt header missing")
	}
	return f.text, f.err
}

// completeStudent fills every section evaluation depends on.
func completeStudent(t *testing.T, h *harness, c classroom) {
	t.Helper()
	writes := []types.SectionWrite{
		types.SurveyWrite{Items: answersFor(c.itemIDs, "每天")},
		types.CompositeWrite{Composite: fullComposite(85)},
		types.ParentNoteWrite{Content: "在家主动洗碗"},
	}
	for _, w := range writes {
		if _, err := h.gate.AttemptStudentWrite(h.dbc, c.alice, c.alice.ID, w); err != nil {
			t.Fatalf("write %s: %v", w.Section(), err)
		}
	}
	if _, err := h.teacher.SubmitReview(h.dbc, c.teacher, c.alice.ID, []string{"负责"}); err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
}

func TestEvaluationPreconditions(t *testing.T) {
	h := newHarness(t)
	c := seedClassroom(t, h)

	steps := []struct {
		write types.SectionWrite
		want  string
	}{
		{nil, msgSurveyMissing},
		{types.SurveyWrite{Items: answersFor(c.itemIDs[:2], "每天")}, msgSurveyIncomplete},
		{types.SurveyWrite{Items: answersFor(c.itemIDs, "每天")}, msgNoteMissing},
		{types.ParentNoteWrite{Content: "加油"}, msgReviewMissing},
	}
	for _, step := range steps {
		if step.write != nil {
			if _, err := h.gate.AttemptStudentWrite(h.dbc, c.alice, c.alice.ID, step.write); err != nil {
				t.Fatalf("write %s: %v", step.write.Section(), err)
			}
		}
		_, err := h.evalSvc.Generate(h.dbc, c.alice)
		var ve *domainerrs.ValidationError
		if !errors.As(err, &ve) || ve.Message != step.want {
			t.Fatalf("Generate: want=%q got=%v", step.want, err)
		}
	}

	if _, err := h.teacher.SubmitReview(h.dbc, c.teacher, c.alice.ID, []string{"探究"}); err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
	_, err := h.evalSvc.Generate(h.dbc, c.alice)
	var ve *domainerrs.ValidationError
	if !errors.As(err, &ve) || ve.Message != msgCompositeMissing {
		t.Fatalf("Generate: want=%q got=%v", msgCompositeMissing, err)
	}
	if _, err := h.evalSvc.Generate(h.dbc, c.teacher); !errors.Is(err, domainerrs.ErrForbidden) {
		t.Fatalf("teacher Generate: want forbidden got=%v", err)
	}
}

func TestEvaluationHeuristicIsStoredOnce(t *testing.T) {
	h := newHarness(t)
	c := seedClassroom(t, h)
	completeStudent(t, h, c)

	first, err := h.evalSvc.Generate(h.dbc, c.alice)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if first.Source != EvalSourceHeuristic || !strings.Contains(first.Content, "家务劳动") {
		t.Fatalf("heuristic: got source=%s content=%q", first.Source, first.Content)
	}
	second, err := h.evalSvc.Generate(h.dbc, c.alice)
	if err != nil || second.Content != first.Content {
		t.Fatalf("cached: want=%q got=%v err=%v", first.Content, second, err)
	}
	status, _ := h.completion.Get(h.dbc, c.alice.ID)
	if !status.LLMGenerated {
		t.Fatalf("llm_generated: want=true got=false")
	}
}

func TestEvaluationUsesLLMOnce(t *testing.T) {
	llm := &fakeLLM{text: "  亲爱的小彩蝶：你特别擅长家务劳动。  "}
	h := newHarnessWithLLM(t, llm)
	c := seedClassroom(t, h)
	completeStudent(t, h, c)

	var wg sync.WaitGroup
	results := make([]*types.LLMEval, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = h.evalSvc.Generate(h.dbc, c.alice)
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		if r == nil || r.Content != "亲爱的小彩蝶：你特别擅长家务劳动。" || r.Source != EvalSourceLLM {
			t.Fatalf("result %d: got=%+v", i, r)
		}
	}
	if n := llm.calls.Load(); n != 1 {
		t.Fatalf("llm calls: want=1 got=%d", n)
	}
}

func TestEvaluationFallsBackWhenLLMFails(t *testing.T) {
	h := newHarnessWithLLM(t, &fakeLLM{err: errors.New("upstream 502")})
	c := seedClassroom(t, h)
	completeStudent(t, h, c)

	out, err := h.evalSvc.Generate(h.dbc, c.alice)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Source != EvalSourceHeuristic {
		t.Fatalf("source: want=%s got=%s", EvalSourceHeuristic, out.Source)
	}
}

func TestHighlights(t *testing.T) {
	items := []EvalSurveyItem{
		{Category: "家务劳动", Frequency: "偶尔"},
		{Category: "班级劳动", Frequency: "每天"},
		{Category: "校园劳动", Frequency: "经常"},
		{Category: "社会实践", Frequency: "经常"},
		{Category: "", Frequency: "从不"},
	}
	got := Highlights(items)
	want := []string{"班级劳动", "校园劳动", "社会实践"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Highlights: want=%v got=%v", want, got)
	}
	if text := HeuristicEvaluation(nil); !strings.Contains(text, "多种劳动实践") {
		t.Fatalf("empty highlights: got=%q", text)
	}
}
