package engine

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLLMCompleteErrorLogsModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad request"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	before := metrics.LLMErrors.Load()
	l := NewLLM("classifier", LLMOptions{APIBase: srv.URL, APIKey: "k", Model: "m", MaxTokens: 64})
	if _, err := l.Complete(context.Background(), "system", "prompt"); err == nil {
		t.Fatal("Complete() error = nil, want error")
	}
	if metrics.LLMErrors.Load() != before+1 {
		t.Error("LLMErrors not incremented")
	}
	if !strings.Contains(buf.String(), "model=classifier") {
		t.Errorf("log = %q, want model=classifier", buf.String())
	}
}
