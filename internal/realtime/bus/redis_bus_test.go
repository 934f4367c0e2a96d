package bus

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MAximeXX/AIEval/internal/platform/logger"
	"github.com/MAximeXX/AIEval/internal/realtime"
)

func TestRedisBusRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	b, err := NewRedisBus(log, RedisConfig{Addr: addr, Channel: "butterfly:test:" + uuid.NewString()})
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan Envelope, 1)
	if err := b.StartForwarder(ctx, func(env Envelope) { got <- env }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	id := uuid.New()
	want := Envelope{Scope: realtime.StudentScope(id), Event: realtime.LockChanged(id, true, "")}
	if err := b.Publish(ctx, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case env := <-got:
		if env.Scope != want.Scope || env.Event.Kind != realtime.EventLockChanged || !*env.Event.IsLocked {
			t.Fatalf("envelope: want=%+v got=%+v", want, env)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("envelope: want delivered got=timeout")
	}
}

func TestForwardPublishesToHub(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	hub := realtime.NewHub(log, realtime.HubOptions{})
	id := uuid.New()
	c, _ := hub.NewClient(id)
	if err := hub.Subscribe(c, realtime.StudentScope(id)); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	Forward(hub)(Envelope{Scope: realtime.StudentScope(id), Event: realtime.TeacherReviewReady(id)})
	select {
	case ev := <-c.Outbound:
		if ev.Kind != realtime.EventTeacherReviewReady {
			t.Fatalf("kind: want=%s got=%s", realtime.EventTeacherReviewReady, ev.Kind)
		}
	default:
		t.Fatalf("forwarded event: want delivered got=none")
	}
}
