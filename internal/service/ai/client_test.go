package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"vibeguide/internal/config"
	"vibeguide/internal/domain/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(t *testing.T, baseURL string, cache Cache) *Client {
	t.Helper()
	cfg := &config.Config{
		AIBaseURL:    baseURL,
		AITimeout:    5 * time.Second,
		AIMaxRetries: 2,
	}
	return NewClient(cfg, cache, discardLogger())
}

func TestClientGenerateQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ai/generate-questions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req GenerateQuestionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ProjectDescription != "a described project" {
			t.Errorf("projectDescription = %q", req.ProjectDescription)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"questions": []map[string]any{
					{"id": "1", "question": "Who?", "type": "text", "required": true},
					{"id": "2", "question": "Scale?", "type": "multiple_choice", "options": []string{"small", "large"}},
					{"id": "3", "question": "Odd?", "type": "carrier_pigeon"},
				},
				"analysis": "looks good",
			},
		})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	result, err := c.GenerateQuestions(context.Background(), &GenerateQuestionsRequest{
		ProjectDescription: "a described project",
	})
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if result.Analysis != "looks good" {
		t.Errorf("Analysis = %q", result.Analysis)
	}
	if len(result.Questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(result.Questions))
	}
	if result.Questions[0].Type != models.QuestionTypeText {
		t.Errorf("questions[0].Type = %q", result.Questions[0].Type)
	}
	if result.Questions[1].Type != models.QuestionTypeChoice {
		t.Errorf("multiple_choice mapped to %q, want %q", result.Questions[1].Type, models.QuestionTypeChoice)
	}
	if result.Questions[2].Type != models.QuestionTypeText {
		t.Errorf("unknown type mapped to %q, want text", result.Questions[2].Type)
	}
}

func TestClientErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "model overloaded"})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	_, err := c.AnalyzeAnswers(context.Background(), &AnalyzeAnswersRequest{ProjectDescription: "x"})
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("err = %v, want the service's error message", err)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"analysis": "third time lucky"},
		})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	analysis, err := c.AnalyzeAnswers(context.Background(), &AnalyzeAnswersRequest{ProjectDescription: "x"})
	if err != nil {
		t.Fatalf("AnalyzeAnswers: %v", err)
	}
	if analysis != "third time lucky" {
		t.Errorf("analysis = %q", analysis)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	if _, err := c.AnalyzeAnswers(context.Background(), &AnalyzeAnswersRequest{ProjectDescription: "x"}); err == nil {
		t.Fatal("expected an error from a 400 response")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1 (no retry on 4xx)", got)
	}
}

func TestClientPartialDocumentFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Type string `json:"type"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Type == "prd" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"content": "# " + req.Type},
		})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	update, err := c.GenerateDocuments(context.Background(), &GenerateDocumentsRequest{
		ProjectDescription: "x",
	})
	if err != nil {
		t.Fatalf("GenerateDocuments: %v (one failed type must not fail the call)", err)
	}
	if update.PRD != nil {
		t.Error("failed type should be absent from the update")
	}
	if update.UserJourney == nil || update.BackendDesign == nil {
		t.Error("successful types should be present in the update")
	}
}

func TestClientAllDocumentsFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	if _, err := c.GenerateDocuments(context.Background(), &GenerateDocumentsRequest{ProjectDescription: "x"}); err == nil {
		t.Error("expected an error when every document fails")
	}
}

func TestClientUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	cache := NewRedisCache(rdb, time.Minute)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"analysis": "cached analysis"},
		})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, cache)
	req := &AnalyzeAnswersRequest{ProjectDescription: "same payload"}

	for i := 0; i < 3; i++ {
		analysis, err := c.AnalyzeAnswers(context.Background(), req)
		if err != nil {
			t.Fatalf("AnalyzeAnswers #%d: %v", i, err)
		}
		if analysis != "cached analysis" {
			t.Errorf("analysis = %q", analysis)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1 (repeats served from cache)", got)
	}

	// A different payload is a different key.
	if _, err := c.AnalyzeAnswers(context.Background(), &AnalyzeAnswersRequest{ProjectDescription: "other payload"}); err != nil {
		t.Fatalf("AnalyzeAnswers: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server called %d times, want 2", got)
	}
}

func TestFallbackUsesSecondaryOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	srv.Close() // force transport errors

	primary := testClient(t, srv.URL, nil)
	f := NewFallback(primary, NewMock(), discardLogger())

	result, err := f.GenerateQuestions(context.Background(), &GenerateQuestionsRequest{
		ProjectDescription: "a described project",
	})
	if err != nil {
		t.Fatalf("fallback did not engage: %v", err)
	}
	if len(result.Questions) == 0 {
		t.Error("expected canned questions from the mock fallback")
	}
}

func TestFallbackStopsOnCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	primary := testClient(t, srv.URL, nil)
	f := NewFallback(primary, NewMock(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.GenerateQuestions(ctx, &GenerateQuestionsRequest{ProjectDescription: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled (no fallback after cancellation)", err)
	}
}
