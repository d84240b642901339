package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"vibeguide/internal/config"
	"vibeguide/internal/domain/models"
)

// Client is the remote Provider backed by the AI HTTP service. Calls
// are retried with linear backoff on network errors and 5xx responses;
// a non-2xx status or a success:false envelope surfaces as an error,
// never as a panic. Successful responses are memoized in the optional
// cache so re-generating for an unchanged description is free.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	cache      Cache
	logger     *slog.Logger
}

// NewClient creates a remote AI client. cache may be nil.
func NewClient(cfg *config.Config, cache Cache, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.AIBaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.AITimeout},
		maxRetries: cfg.AIMaxRetries,
		cache:      cache,
		logger:     logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return "remote" }

// envelope is the AI service's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// wireQuestion is a question as the AI service encodes it. Its type
// vocabulary differs from ours (multiple_choice vs choice).
type wireQuestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	Required bool     `json:"required"`
}

func (w wireQuestion) toModel() models.Question {
	qType := models.QuestionType(w.Type)
	switch w.Type {
	case "multiple_choice":
		qType = models.QuestionTypeChoice
	case "text", "choice", "rating":
		// already in our vocabulary
	default:
		qType = models.QuestionTypeText
	}
	return models.Question{
		ID:       w.ID,
		Question: w.Question,
		Type:     qType,
		Options:  w.Options,
		Required: w.Required,
	}
}

// GenerateQuestions calls POST /ai/generate-questions.
func (c *Client) GenerateQuestions(ctx context.Context, req *GenerateQuestionsRequest) (*QuestionsResult, error) {
	var data struct {
		Questions []wireQuestion `json:"questions"`
		Analysis  string         `json:"analysis"`
	}
	if err := c.post(ctx, "/ai/generate-questions", req, &data); err != nil {
		return nil, err
	}

	questions := make([]models.Question, 0, len(data.Questions))
	for _, wq := range data.Questions {
		questions = append(questions, wq.toModel())
	}
	return &QuestionsResult{Questions: questions, Analysis: data.Analysis}, nil
}

// AnalyzeAnswers calls POST /ai/analyze-answers.
func (c *Client) AnalyzeAnswers(ctx context.Context, req *AnalyzeAnswersRequest) (string, error) {
	var data struct {
		Analysis string `json:"analysis"`
	}
	if err := c.post(ctx, "/ai/analyze-answers", req, &data); err != nil {
		return "", err
	}
	return data.Analysis, nil
}

// GenerateDocuments calls POST /ai/generate-document once per document
// type. Types that fail are simply absent from the update; the whole
// call fails only if every document fails, so one bad generation never
// discards the four good ones.
func (c *Client) GenerateDocuments(ctx context.Context, req *GenerateDocumentsRequest) (*models.DocumentUpdate, error) {
	update := &models.DocumentUpdate{}
	var errs []error

	for _, tmpl := range DocumentTemplates() {
		payload := struct {
			Type               DocumentType `json:"type"`
			ProjectDescription string       `json:"projectDescription"`
			Requirements       string       `json:"requirements"`
		}{tmpl.Type, req.ProjectDescription, req.Requirements}

		var data struct {
			Content string `json:"content"`
		}
		if err := c.post(ctx, "/ai/generate-document", payload, &data); err != nil {
			c.logger.Warn("document generation failed",
				"type", tmpl.Type,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", tmpl.Type, err))
			continue
		}
		setDocument(update, tmpl.Type, data.Content)
	}

	if update.IsEmpty() {
		return nil, fmt.Errorf("generate documents: %w", errors.Join(errs...))
	}
	return update, nil
}

// post sends a JSON request and decodes the envelope's data field into
// out, consulting the cache first.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	key := CacheKey(path, body)
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, key); ok {
			return json.Unmarshal(cached, out)
		}
	}

	data, err := c.postWithRetry(ctx, path, body)
	if err != nil {
		return err
	}

	if c.cache != nil {
		c.cache.Set(ctx, key, data)
	}
	return json.Unmarshal(data, out)
}

func (c *Client) postWithRetry(ctx context.Context, path string, body []byte) (json.RawMessage, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			c.logger.Debug("retrying AI request", "path", path, "attempt", attempt)
		}

		data, retryable, err := c.doOnce(ctx, path, body)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

// doOnce performs a single request. retryable is true for transport
// errors and 5xx responses; application-level failures (4xx,
// success:false) are not retried.
func (c *Client) doOnce(ctx context.Context, path string, body []byte) (data json.RawMessage, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("AI service unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("AI service error: status %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("AI service rejected request: status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "AI service returned an error"
		}
		return nil, false, errors.New(msg)
	}
	return env.Data, false, nil
}
