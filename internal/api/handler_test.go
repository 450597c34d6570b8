package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mimohealth/triage/internal/session"
	"github.com/mimohealth/triage/internal/triage"
	"go.uber.org/zap"
)

// failingGenerator simulates a fully unavailable provider chain so replies
// come from the deterministic local fallback.
type failingGenerator struct{}

func (failingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("no providers configured")
}

// fakeHealth reports a fixed provider status map.
type fakeHealth struct {
	status map[string]string
}

func (f fakeHealth) Health(ctx context.Context) map[string]string { return f.status }

// newTestHandler wires a Handler with an engine running in fallback-only
// mode (no Neo4j, no Redis, no Postgres, no provider chain).
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	engine := triage.NewEngine(context.Background(), nil, session.NewInMemoryStore(), failingGenerator{}, logger)
	return NewHandler(engine, nil, nil, logger).Router()
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body interface{}) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	ts := httptest.NewServer(newTestHandler(t))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	decodeJSON(t, resp, &body)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestHealthReportsProviderStatus(t *testing.T) {
	logger := zap.NewNop()
	engine := triage.NewEngine(context.Background(), nil, session.NewInMemoryStore(), failingGenerator{}, logger)
	health := fakeHealth{status: map[string]string{"groq": "ok", "anthropic": "timeout"}}
	ts := httptest.NewServer(NewHandler(engine, nil, health, logger).Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	var body struct {
		Status    string            `json:"status"`
		Providers map[string]string `json:"providers"`
	}
	decodeJSON(t, resp, &body)
	if body.Status != "ok" {
		t.Errorf("status %q, want ok", body.Status)
	}
	if body.Providers["groq"] != "ok" || body.Providers["anthropic"] != "timeout" {
		t.Errorf("providers %v, want groq ok and anthropic timeout", body.Providers)
	}
}

func TestChatReturnsReply(t *testing.T) {
	ts := httptest.NewServer(newTestHandler(t))
	defer ts.Close()

	resp := postJSON(t, ts, "/api/chat", map[string]string{
		"session_key": "u1",
		"message":     "hello",
	})
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Reply string `json:"reply"`
	}
	decodeJSON(t, resp, &body)
	if body.Reply == "" {
		t.Error("expected non-empty reply")
	}
}

func TestChatValidation(t *testing.T) {
	ts := httptest.NewServer(newTestHandler(t))
	defer ts.Close()

	resp := postJSON(t, ts, "/api/chat", map[string]string{"message": "hi"})
	if resp.StatusCode != 400 {
		t.Errorf("missing session_key: expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, ts, "/api/chat", map[string]string{"session_key": "u1"})
	if resp.StatusCode != 400 {
		t.Errorf("missing message: expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestChatHistoryUnavailableWithoutStore(t *testing.T) {
	ts := httptest.NewServer(newTestHandler(t))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/chat/history?session_key=u1")
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	if resp.StatusCode != 503 {
		t.Errorf("expected 503 without transcript store, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
