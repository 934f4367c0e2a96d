package services

import (
	"testing"

	types "github.com/MAximeXX/AIEval/internal/domain"
)

func TestChartsAverageByBand(t *testing.T) {
	h := newHarness(t)
	c := seedClassroom(t, h)

	for _, w := range []struct {
		student *types.User
		score   int
	}{{c.alice, 80}, {c.bob, 61}} {
		if _, err := h.gate.AttemptStudentWrite(h.dbc, w.student, w.student.ID, types.CompositeWrite{Composite: fullComposite(w.score)}); err != nil {
			t.Fatalf("composite: %v", err)
		}
	}

	charts, err := h.analytics.Charts(h.dbc)
	if err != nil {
		t.Fatalf("Charts: %v", err)
	}
	a := charts.ChartA["坚毅担责"]
	if len(a.Stages) != 2 {
		t.Fatalf("stages: want=2 got=%v", a.Stages)
	}
	if got := a.Series[types.GradeBandMid][0]; got != 70.5 {
		t.Fatalf("mid average: want=70.5 got=%v", got)
	}
	if got := a.Series[types.GradeBandLow]; len(got) != 2 || got[0] != 0 {
		t.Fatalf("low series: want zeros got=%v", got)
	}
	if got := charts.ChartB[types.GradeBandMid]["现在"]; got != 100 {
		t.Fatalf("chart b: want=100 got=%v", got)
	}
	if got := charts.OverallC["原来"]; got != 33 {
		t.Fatalf("overall c: want=33 got=%v", got)
	}
}

func TestProgressCountsCompletedStudents(t *testing.T) {
	h := newHarness(t)
	c := seedClassroom(t, h)
	completeStudent(t, h, c)

	rows, err := h.analytics.Progress(h.dbc)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if len(rows) != 1 || rows[0].Total != 2 || rows[0].Completed != 1 {
		t.Fatalf("progress: want total=2 completed=1 got=%+v", rows)
	}
}
