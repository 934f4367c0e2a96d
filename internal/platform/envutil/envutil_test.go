package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", 5 * time.Second},
		{"30", 30 * time.Second},
		{"250ms", 250 * time.Millisecond},
		{"garbage", 5 * time.Second},
	}
	for _, tc := range cases {
		t.Setenv("ENVUTIL_TEST_DURATION", tc.raw)
		if got := Duration("ENVUTIL_TEST_DURATION", 5*time.Second); got != tc.want {
			t.Fatalf("Duration(%q): want=%v got=%v", tc.raw, tc.want, got)
		}
	}
}

func TestListAndBool(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_LIST", " a, ,b ,")
	got := List("ENVUTIL_TEST_LIST")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: want=[a b] got=%v", got)
	}
	t.Setenv("ENVUTIL_TEST_BOOL", "off")
	if Bool("ENVUTIL_TEST_BOOL", true) {
		t.Fatalf("Bool(off): want=false got=true")
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_FLOAT", "0.25")
	if got := Float("ENVUTIL_TEST_FLOAT", 1); got != 0.25 {
		t.Fatalf("Float: want=0.25 got=%v", got)
	}
	t.Setenv("ENVUTIL_TEST_FLOAT", "x")
	if got := Float("ENVUTIL_TEST_FLOAT", 1); got != 1 {
		t.Fatalf("Float(bad): want=1 got=%v", got)
	}
}
