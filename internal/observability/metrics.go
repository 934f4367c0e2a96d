package observability

import (
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MAximeXX/AIEval/internal/platform/envutil"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

type Metrics struct {
	apiRequests     *CounterVec
	apiLatency      *HistogramVec
	apiInflight     *Gauge
	studentWrites   *CounterVec
	lockTransitions *CounterVec
	realtimeEvents  *CounterVec
	realtimeDropped *Counter
	realtimeClients *Gauge
	surveyTasks     *CounterVec
	evaluations     *CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Enabled reports METRICS_ENABLED.
func Enabled() bool { return envutil.Bool("METRICS_ENABLED", false) }

// Current is the process-wide registry, nil until Init ran with metrics on.
// Every method is safe on a nil receiver.
func Current() *Metrics { return instance }

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// New builds a standalone registry.
func New() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("bf_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"bf_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight:     NewGauge("bf_api_inflight_requests", "In-flight API requests."),
		studentWrites:   NewCounterVec("bf_student_writes_total", "Student section writes by section/outcome.", []string{"section", "outcome"}),
		lockTransitions: NewCounterVec("bf_lock_transitions_total", "Lock coordinator transitions by resulting state.", []string{"is_locked"}),
		realtimeEvents:  NewCounterVec("bf_realtime_events_total", "Realtime events emitted by kind/result.", []string{"kind", "result"}),
		realtimeDropped: NewCounter("bf_realtime_dropped_total", "Realtime events dropped on a full client buffer."),
		realtimeClients: NewGauge("bf_realtime_clients", "Connected realtime clients."),
		surveyTasks:     NewCounterVec("bf_survey_tasks_total", "Async survey tasks by final status.", []string{"status"}),
		evaluations:     NewCounterVec("bf_evaluations_total", "Generated evaluations by source.", []string{"source"}),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.studentWrites, m.lockTransitions,
		m.realtimeEvents, m.realtimeDropped, m.realtimeClients,
		m.surveyTasks, m.evaluations,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflight(delta float64) {
	if m == nil {
		return
	}
	m.apiInflight.Add(delta)
}

// ObserveStudentWrite records a gate outcome: saved, locked, invalid or error.
func (m *Metrics) ObserveStudentWrite(section, outcome string) {
	if m == nil {
		return
	}
	m.studentWrites.Inc(section, outcome)
}

func (m *Metrics) ObserveLockTransition(locked bool) {
	if m == nil {
		return
	}
	m.lockTransitions.Inc(strconv.FormatBool(locked))
}

func (m *Metrics) ObserveRealtimeEvent(kind, result string) {
	if m == nil {
		return
	}
	m.realtimeEvents.Inc(kind, result)
}

func (m *Metrics) IncRealtimeDropped() {
	if m == nil {
		return
	}
	m.realtimeDropped.Inc()
}

func (m *Metrics) RealtimeClients(delta float64) {
	if m == nil {
		return
	}
	m.realtimeClients.Add(delta)
}

func (m *Metrics) ObserveSurveyTask(status string) {
	if m == nil {
		return
	}
	m.surveyTasks.Inc(status)
}

func (m *Metrics) ObserveEvaluation(source string) {
	if m == nil {
		return
	}
	m.evaluations.Inc(source)
}
