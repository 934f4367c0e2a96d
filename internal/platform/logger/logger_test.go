package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVs(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"password", "hunter2",
		"student_id", "4f1c",
		"path", "/api/students/me/survey",
		"dangling",
	})
	if len(out) != 7 {
		t.Fatalf("len: want=7 got=%d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("password: want=[REDACTED] got=%v", out[1])
	}
	if s, _ := out[3].(string); !strings.HasPrefix(s, "hash:") {
		t.Fatalf("student_id: want hash prefix got=%v", out[3])
	}
	if out[5] != "/api/students/me/survey" {
		t.Fatalf("path: want passthrough got=%v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("dangling key: want kept got=%v", out[6])
	}
}

func TestSanitizeValueRedactsJWTShapedStrings(t *testing.T) {
	jwtish := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"
	if got := sanitizeValue("note", jwtish); got != "[REDACTED]" {
		t.Fatalf("jwt value: want=[REDACTED] got=%v", got)
	}
	nested := sanitizeValue("payload", map[string]interface{}{"api_key": "k", "grade": 3})
	m := nested.(map[string]interface{})
	if m["api_key"] != "[REDACTED]" || m["grade"] != 3 {
		t.Fatalf("nested map: got=%v", m)
	}
}

func TestSanitizeValueMasksNames(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"张小明", "张**"},
		{"李", "李"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := sanitizeValue("student_name", tc.in); got != tc.want {
			t.Fatalf("mask %q: want=%q got=%v", tc.in, tc.want, got)
		}
	}
	if got := sanitizeValue("parent_note", "今天很棒"); got != "[REDACTED]" {
		t.Fatalf("parent_note: want=[REDACTED] got=%v", got)
	}
}
