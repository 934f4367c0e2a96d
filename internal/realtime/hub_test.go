package realtime

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return NewHub(logger.Nop(), HubOptions{Buffer: 4, Heartbeat: time.Second})
}

func mustClient(t *testing.T, h *Hub) *Client {
	t.Helper()
	c, err := h.NewClient(uuid.New())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func recvEvent(t *testing.T, c *Client, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-c.Outbound:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}

func TestHubPublishReachesOnlySubscribedScope(t *testing.T) {
	h := newTestHub(t)
	studentA, studentB := uuid.New(), uuid.New()

	a := mustClient(t, h)
	b := mustClient(t, h)
	if err := h.Subscribe(a, StudentScope(studentA)); err != nil {
		t.Fatalf("Subscribe a: %v", err)
	}
	if err := h.Subscribe(b, StudentScope(studentB)); err != nil {
		t.Fatalf("Subscribe b: %v", err)
	}

	n := h.Publish(StudentScope(studentA), LockChanged(studentA, true, "locked"))
	if n != 1 {
		t.Fatalf("delivered: want=1 got=%d", n)
	}
	ev := recvEvent(t, a, time.Second)
	if ev.Kind != EventLockChanged || ev.StudentID != studentA || ev.IsLocked == nil || !*ev.IsLocked {
		t.Fatalf("unexpected event: %+v", ev)
	}
	select {
	case ev := <-b.Outbound:
		t.Fatalf("scope isolation broken, b got %+v", ev)
	default:
	}
}

func TestHubPublishPreservesOrderPerSubscriber(t *testing.T) {
	h := newTestHub(t)
	id := uuid.New()
	c := mustClient(t, h)
	_ = h.Subscribe(c, StudentScope(id))

	h.Publish(StudentScope(id), LockChanged(id, true, ""))
	h.Publish(StudentScope(id), LockChanged(id, false, ""))

	first := recvEvent(t, c, time.Second)
	second := recvEvent(t, c, time.Second)
	if !*first.IsLocked || *second.IsLocked {
		t.Fatalf("order: want=locked,unlocked got=%v,%v", *first.IsLocked, *second.IsLocked)
	}
}

func TestHubPublishDoesNotBlockOnFullBuffer(t *testing.T) {
	h := newTestHub(t)
	id := uuid.New()
	slow := mustClient(t, h)
	fast := mustClient(t, h)
	_ = h.Subscribe(slow, StudentScope(id))
	_ = h.Subscribe(fast, StudentScope(id))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			h.Publish(StudentScope(id), SectionUpdated(id, "survey"))
			select {
			case <-fast.Outbound:
			default:
			}
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Publish blocked on a full subscriber")
	}
	if got := len(slow.Outbound); got != 4 {
		t.Fatalf("slow buffer: want=4 got=%d", got)
	}
}

func TestHubCloseRemovesClientAndIsIdempotent(t *testing.T) {
	h := newTestHub(t)
	id := uuid.New()
	c := mustClient(t, h)
	_ = h.Subscribe(c, StudentScope(id))
	_ = h.Subscribe(c, ClassScope("earon小学-3-31"))

	h.Close(c)
	h.Close(c)

	if got := h.SubscriberCount(StudentScope(id)); got != 0 {
		t.Fatalf("student subscribers: want=0 got=%d", got)
	}
	if got := h.SubscriberCount(ClassScope("earon小学-3-31")); got != 0 {
		t.Fatalf("class subscribers: want=0 got=%d", got)
	}
	if n := h.Publish(StudentScope(id), Resync()); n != 0 {
		t.Fatalf("delivered after close: want=0 got=%d", n)
	}
	select {
	case <-c.Done():
	default:
		t.Fatalf("done channel not closed")
	}
	if err := h.Subscribe(c, StudentScope(id)); err == nil {
		t.Fatalf("expected error subscribing a closed client")
	}
}

func TestHubDrainRefusesNewClients(t *testing.T) {
	h := newTestHub(t)
	c := mustClient(t, h)
	h.Drain()
	select {
	case <-c.Done():
	default:
		t.Fatalf("client not closed by Drain")
	}
	if _, err := h.NewClient(uuid.New()); err != ErrHubClosed {
		t.Fatalf("NewClient after drain: want=%v got=%v", ErrHubClosed, err)
	}
}

func TestServeSSEWritesEventFrames(t *testing.T) {
	h := newTestHub(t)
	id := uuid.New()
	c := mustClient(t, h)
	_ = h.Subscribe(c, StudentScope(id))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer h.Close(c)
		h.ServeSSE(w, r, c)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type: want=text/event-stream got=%q", ct)
	}

	h.Publish(StudentScope(id), LockChanged(id, true, "表格数据已被锁定，无法更改"))

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		ev, err := ParseEvent([]byte(strings.TrimPrefix(line, "data: ")))
		if err != nil {
			t.Fatalf("ParseEvent: %v", err)
		}
		if ev.Kind != EventLockChanged || ev.StudentID != id {
			t.Fatalf("unexpected event: %+v", ev)
		}
		return
	}
	t.Fatalf("stream ended without an event: %v", sc.Err())
}

func TestWSServerDeliversJSONFrames(t *testing.T) {
	h := newTestHub(t)
	ws := NewWSServer(h, WSOptions{CheckOrigin: func(*http.Request) bool { return true }})
	id := uuid.New()
	c := mustClient(t, h)
	_ = h.Subscribe(c, StudentScope(id))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.Serve(w, r, c)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	h.Publish(StudentScope(id), TeacherReviewReady(id))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	ev, err := ParseEvent(raw)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if ev.Kind != EventTeacherReviewReady || ev.StudentID != id {
		t.Fatalf("unexpected event: %+v", ev)
	}

	_ = conn.Close()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("client not closed after websocket disconnect")
	}
}
