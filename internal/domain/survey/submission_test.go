package survey

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
)

func intPtr(v int) *int { return &v }

func TestSurveyWriteValidate(t *testing.T) {
	ok := SurveyAnswer{SurveyItemID: 1, Frequency: "每天", Skill: "熟练", Traits: []string{"坚持"}}
	cases := []struct {
		name    string
		items   []SurveyAnswer
		wantErr bool
	}{
		{"valid", []SurveyAnswer{ok}, false},
		{"empty", nil, false},
		{"four traits", []SurveyAnswer{{SurveyItemID: 1, Frequency: "每天", Skill: "熟练", Traits: []string{"a", "b", "c", "d"}}}, true},
		{"bad frequency", []SurveyAnswer{{SurveyItemID: 1, Frequency: "总是", Skill: "熟练"}}, true},
		{"missing skill", []SurveyAnswer{{SurveyItemID: 1, Frequency: "每天"}}, true},
		{"duplicate id", []SurveyAnswer{ok, ok}, true},
		{"zero id", []SurveyAnswer{{Frequency: "每天", Skill: "熟练"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := SurveyWrite{Items: tc.items}.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate: wantErr=%v got=%v", tc.wantErr, err)
			}
			if err != nil && !errors.Is(err, domainerrs.ErrInvalidArgument) {
				t.Fatalf("error kind: want ErrInvalidArgument got=%v", err)
			}
		})
	}
}

func TestCompositeValidate(t *testing.T) {
	good := DefaultComposite()
	good.Q1[PhaseBefore] = "偶尔"
	good.Q2[PhaseNow] = "完全同意"
	good.Q3["阶段1"] = map[string]*int{"坚毅担责": intPtr(100), "勤劳诚实": nil}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid composite: want=nil got=%v", err)
	}

	over := DefaultComposite()
	over.Q3["阶段1"] = map[string]*int{"坚毅担责": intPtr(150)}
	err := over.Validate()
	var ve *domainerrs.ValidationError
	if !errors.As(err, &ve) || ve.Rule != "range" {
		t.Fatalf("score 150: want range ValidationError got=%v", err)
	}

	bad := []Composite{
		{Q1: map[string]string{"以后": "每天"}},
		{Q2: map[string]string{PhaseNow: "每天"}},
		{Q3: map[string]map[string]*int{"阶段1": {"未知": intPtr(1)}}},
		{Q3: map[string]map[string]*int{"阶段1": {"合作智慧": intPtr(-1)}}},
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("bad composite %d: want error", i)
		}
	}
}

func TestParentNoteWriteValidate(t *testing.T) {
	if err := (ParentNoteWrite{Content: strings.Repeat("好", 300)}).Validate(); err != nil {
		t.Fatalf("300 runes: want=nil got=%v", err)
	}
	err := ParentNoteWrite{Content: strings.Repeat("好", 301)}.Validate()
	if err == nil || err.Error() != "家长寄语需在300字以内" {
		t.Fatalf("301 runes: want length message got=%v", err)
	}
	if err := (ParentNoteWrite{Content: "   "}).Validate(); err == nil {
		t.Fatalf("blank note: want error")
	}
}

func TestTeacherReviewWriteValidate(t *testing.T) {
	if err := (TeacherReviewWrite{SelectedTraits: []string{"坚持"}}).Validate(); err != nil {
		t.Fatalf("one trait: want=nil got=%v", err)
	}
	if err := (TeacherReviewWrite{}).Validate(); err == nil {
		t.Fatalf("zero traits: want error")
	}
	seven := []string{"a", "b", "c", "d", "e", "f", "g"}
	if err := (TeacherReviewWrite{SelectedTraits: seven}).Validate(); err == nil {
		t.Fatalf("seven traits: want error")
	}
}

func TestEmptySubmissionDefaults(t *testing.T) {
	id := uuid.New()
	s := EmptySubmission(id)
	if s.IsLocked() || s.TeacherReview != nil || len(s.Survey.Items) != 0 {
		t.Fatalf("empty submission: got=%+v", s)
	}
	if _, ok := s.Composite.Q1[PhaseBefore]; !ok {
		t.Fatalf("default composite: want q1 原来 key")
	}
	if !SectionParentNote.StudentWritable() || SectionTeacherReview.StudentWritable() {
		t.Fatalf("StudentWritable: wrong classification")
	}
}
