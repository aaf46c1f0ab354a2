package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/sibyl/internal/model"
)

type stubService struct {
	answer   *model.Answer
	err      error
	question string
}

func (s *stubService) Ask(ctx context.Context, question string) (*model.Answer, error) {
	s.question = question
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

func newTestHandler(service QueryService) http.Handler {
	return NewServer(service, nil).Handler()
}

func TestQueryHandler_Success(t *testing.T) {
	service := &stubService{answer: &model.Answer{
		Question:   "What is hypertension?",
		Generation: "High blood pressure.",
		Source:     model.SourceCorpus,
	}}

	req := httptest.NewRequest(http.MethodPost, "/query",
		strings.NewReader(`{"question": "What is hypertension?"}`))
	rec := httptest.NewRecorder()
	newTestHandler(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["generation"] != "High blood pressure." {
		t.Errorf("unexpected generation: %q", resp["generation"])
	}
	if _, ok := resp["source"]; ok {
		t.Error("response must expose only the generation")
	}
	if service.question != "What is hypertension?" {
		t.Errorf("question not forwarded: %q", service.question)
	}
}

func TestQueryHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid JSON", body: `{"question": `},
		{name: "missing question", body: `{}`},
		{name: "blank question", body: `{"question": "   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubService{answer: &model.Answer{}}
			req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			newTestHandler(service).ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			if service.question != "" {
				t.Error("malformed request must not reach the service")
			}
		})
	}
}

func TestQueryHandler_ServiceError(t *testing.T) {
	service := &stubService{err: errors.New("context store: database unreachable")}

	req := httptest.NewRequest(http.MethodPost, "/query",
		strings.NewReader(`{"question": "q"}`))
	rec := httptest.NewRecorder()
	newTestHandler(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	// Internal details stay out of the response body
	if strings.Contains(rec.Body.String(), "database") {
		t.Errorf("response leaks internals: %s", rec.Body.String())
	}
}

func TestQueryHandler_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/query", nil)
	rec := httptest.NewRecorder()
	newTestHandler(&stubService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	newTestHandler(&stubService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := chain(panicking, recoveryMiddleware(slog.Default()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 after panic, got %d", rec.Code)
	}
}
