package ctxutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRequestDataRoundTrip(t *testing.T) {
	if GetRequestData(context.Background()) != nil {
		t.Fatalf("empty ctx: want=nil")
	}
	rd := &RequestData{UserID: uuid.New(), Role: "teacher"}
	got := GetRequestData(WithRequestData(context.Background(), rd))
	if got != rd {
		t.Fatalf("request data: want=%p got=%p", rd, got)
	}
}

func TestDetachedSurvivesParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(WithTraceData(context.Background(), &TraceData{TraceID: "t1"}))
	child, stop := Detached(parent, time.Second)
	defer stop()
	cancel()
	if child.Err() != nil {
		t.Fatalf("detached ctx: want=nil err got=%v", child.Err())
	}
	if td := GetTraceData(child); td == nil || td.TraceID != "t1" {
		t.Fatalf("trace data: want=t1 got=%v", td)
	}
}
