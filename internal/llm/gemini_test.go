package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KazuakiWatanabe/agentic-bizflow/internal/config"
)

func newTestGemini(t *testing.T, baseURL string) *geminiProvider {
	t.Helper()
	p, err := newGeminiProvider(config.LLMConfig{
		Enabled:  true,
		Provider: "gemini",
		APIKey:   "test-key",
		BaseURL:  baseURL,
	})
	if err != nil {
		t.Fatalf("newGeminiProvider() error = %v", err)
	}
	gp := p.(*geminiProvider)
	gp.baseBackoff = time.Millisecond
	return gp
}

func geminiReply(text string) string {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]string{{"text": text}},
				},
			},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestGeminiProvider_Complete(t *testing.T) {
	var gotPath, gotKey string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Goog-Api-Key")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiReply(`{"title":"経費精算"}`)))
	}))
	defer server.Close()

	p := newTestGemini(t, server.URL)

	got, err := p.Complete(context.Background(), "summarize this")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != `{"title":"経費精算"}` {
		t.Errorf("Complete() = %q", got)
	}
	if gotPath != "/v1beta/models/"+defaultGeminiModel+":generateContent" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if !strings.Contains(string(gotBody), "summarize this") {
		t.Errorf("request body = %s", gotBody)
	}
}

func TestGeminiProvider_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(geminiReply("ok")))
	}))
	defer server.Close()

	p := newTestGemini(t, server.URL)

	got, err := p.Complete(context.Background(), "x")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Complete() = %q, want ok", got)
	}
	if calls.Load() != 2 {
		t.Errorf("server calls = %d, want 2", calls.Load())
	}
}

func TestGeminiProvider_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"invalid argument","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	p := newTestGemini(t, server.URL)

	_, err := p.Complete(context.Background(), "x")
	if err == nil {
		t.Fatal("Complete() error = nil, want API error")
	}
	if !strings.Contains(err.Error(), "invalid argument") {
		t.Errorf("Complete() error = %v, want API message", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1", calls.Load())
	}
}

func TestGeminiProvider_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	p := newTestGemini(t, server.URL)

	_, err := p.Complete(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "empty response") {
		t.Errorf("Complete() error = %v, want empty response", err)
	}
}
