package realtime

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestEventWireShape(t *testing.T) {
	id := uuid.New()
	raw, err := json.Marshal(LockChanged(id, false, "解锁成功"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(raw)
	for _, want := range []string{`"event":"lock_changed"`, `"student_id":"` + id.String() + `"`, `"is_locked":false`, `"message":"解锁成功"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("wire missing %s: %s", want, s)
		}
	}

	raw, _ = json.Marshal(Resync())
	if strings.Contains(string(raw), "student_id") {
		t.Fatalf("resync should omit student_id: %s", raw)
	}
}

func TestParseEventRejectsMalformed(t *testing.T) {
	id := uuid.New().String()
	cases := map[string]string{
		"unknown kind":           `{"event":"bogus"}`,
		"lock without flag":      `{"event":"lock_changed","student_id":"` + id + `"}`,
		"lock without student":   `{"event":"lock_changed","is_locked":true}`,
		"section without name":   `{"event":"section_updated","student_id":"` + id + `"}`,
		"review without student": `{"event":"teacher_review_ready"}`,
		"not json":               `{`,
	}
	for name, in := range cases {
		if _, err := ParseEvent([]byte(in)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	ev, err := ParseEvent([]byte(`{"event":"section_updated","student_id":"` + id + `","section":"composite"}`))
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if ev.Section != "composite" {
		t.Fatalf("section: want=composite got=%q", ev.Section)
	}
}

func TestParseScope(t *testing.T) {
	id := uuid.New()
	s, err := ParseScope("student:" + id.String())
	if err != nil {
		t.Fatalf("ParseScope student: %v", err)
	}
	if got, ok := s.StudentID(); !ok || got != id {
		t.Fatalf("StudentID: want=%v got=%v", id, got)
	}
	s, err = ParseScope("class:earon小学-3-31")
	if err != nil {
		t.Fatalf("ParseScope class: %v", err)
	}
	if key, ok := s.ClassKey(); !ok || key != "earon小学-3-31" {
		t.Fatalf("ClassKey: want=earon小学-3-31 got=%q", key)
	}
	for _, bad := range []string{"", "student:nope", "class:", "room:1"} {
		if _, err := ParseScope(bad); err == nil {
			t.Fatalf("ParseScope(%q): expected error", bad)
		}
	}
}
