package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", 200, time.Millisecond)
	m.ObserveStudentWrite("survey", "locked")
	m.IncRealtimeDropped()
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil WritePrometheus: %v", err)
	}
}

func TestWritePrometheus(t *testing.T) {
	m := New()
	m.ObserveAPI("PUT", "/api/students/me/survey", 423, 20*time.Millisecond)
	m.ObserveStudentWrite("survey", "locked")
	m.ObserveStudentWrite("survey", "locked")
	m.ObserveLockTransition(true)
	m.RealtimeClients(1)

	if got := m.studentWrites.Value("survey", "locked"); got != 2 {
		t.Fatalf("student writes: want=2 got=%v", got)
	}
	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`bf_api_requests_total{method="PUT",route="/api/students/me/survey",status="423"} 1.000000`,
		`bf_api_request_duration_seconds_bucket{method="PUT",route="/api/students/me/survey",le="0.025"} 1`,
		`bf_student_writes_total{section="survey",outcome="locked"} 2.000000`,
		`bf_lock_transitions_total{is_locked="true"} 1.000000`,
		"bf_realtime_clients 1.000000",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition: want line %q in\n%s", want, out)
		}
	}
}
