package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

func TestNormalizeBaseURL(t *testing.T) {
	cases := map[string]string{
		"":                           "https://api.openai.com/v1",
		"https://llm.example.com/":   "https://llm.example.com/v1",
		"https://llm.example.com/v1": "https://llm.example.com/v1",
	}
	for in, want := range cases {
		if got := NormalizeBaseURL(in); got != want {
			t.Fatalf("NormalizeBaseURL(%q): want=%q got=%q", in, want, got)
		}
	}
}

func TestGenerateTextRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path: want=/v1/chat/completions got=%s", r.URL.Path)
		}
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages: got=%+v", req.Messages)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" 你好 "}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(logger.Nop(), Config{BaseURL: srv.URL, APIKey: "k", MaxRetries: 2, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	got, err := c.GenerateText(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "你好" {
		t.Fatalf("text: want=你好 got=%q", got)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls: want=2 got=%d", calls)
	}
}

func TestGenerateTextDoesNotRetryClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c, _ := NewClient(logger.Nop(), Config{BaseURL: srv.URL, APIKey: "k", MaxRetries: 3})
	if _, err := c.GenerateText(context.Background(), "s", "u"); err == nil {
		t.Fatalf("want error for 400")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls: want=1 got=%d", calls)
	}
}
