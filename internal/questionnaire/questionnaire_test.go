package questionnaire

import (
	"testing"

	"github.com/MAximeXX/AIEval/internal/domain/user"
)

func TestLoadEmbeddedBank(t *testing.T) {
	b, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, band := range user.GradeBands {
		gb, ok := b.Band(band)
		if !ok || gb.ItemCount() == 0 {
			t.Fatalf("band %s: want items got=%d ok=%v", band, gb.ItemCount(), ok)
		}
	}
	if cols := b.Q3Columns(); len(cols) != 3 {
		t.Fatalf("q3 columns: want=3 got=%v", cols)
	}
}

func TestRequiredStages(t *testing.T) {
	b, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := b.RequiredStages(1, user.GradeBandLow); len(got) != 0 {
		t.Fatalf("grade 1: want none got=%v", got)
	}
	if got := b.RequiredStages(4, user.GradeBandMid); len(got) != 4 {
		t.Fatalf("grade 4: want=4 stages got=%v", got)
	}
	// A grade missing from rows_by_grade uses its band's fallback row set.
	if got, want := b.RequiredStages(7, user.GradeBandHigh), b.RequiredStages(5, user.GradeBandHigh); len(got) != len(want) || len(got) == 0 {
		t.Fatalf("fallback: want=%v got=%v", want, got)
	}
}

func TestParseRejectsMissingBand(t *testing.T) {
	if _, err := Parse([]byte("grade_bands:\n  low: {sections: []}\n")); err == nil {
		t.Fatalf("want error for missing mid/high bands")
	}
}
