// Package ai wraps the external AI collaborators the wizard core
// depends on: question generation, answer analysis and document
// assembly. The core only sees the Provider contract; whether it is
// backed by the remote AI service or by local templates is a wiring
// decision.
package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"vibeguide/internal/config"
	"vibeguide/internal/domain/models"
)

// AnsweredQuestion is the question/answer pair sent back to the AI
// service for analysis and document assembly.
type AnsweredQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GenerateQuestionsRequest asks for clarifying questions about a
// project description.
type GenerateQuestionsRequest struct {
	ProjectDescription string `json:"projectDescription"`
}

// QuestionsResult is an ordered question list plus a short analysis of
// the description. Answers are always empty; the caller initializes
// them before storing.
type QuestionsResult struct {
	Questions []models.Question `json:"questions"`
	Analysis  string            `json:"analysis"`
}

// AnalyzeAnswersRequest asks for a requirements analysis of the
// answered questions.
type AnalyzeAnswersRequest struct {
	ProjectDescription string             `json:"projectDescription"`
	Questions          []AnsweredQuestion `json:"questions"`
}

// GenerateDocumentsRequest asks for the five development documents.
// The requirements text carries the answer analysis, so the answered
// questions need no separate field on the wire.
type GenerateDocumentsRequest struct {
	ProjectDescription string
	Requirements       string
}

// Provider is the collaborator contract. Implementations must return
// errors rather than panic on failure; a document-assembly result may
// omit fields that failed individually (the update's nil fields), but
// a whole-call failure returns an error and no update at all.
type Provider interface {
	Name() string
	GenerateQuestions(ctx context.Context, req *GenerateQuestionsRequest) (*QuestionsResult, error)
	AnalyzeAnswers(ctx context.Context, req *AnalyzeAnswersRequest) (string, error)
	GenerateDocuments(ctx context.Context, req *GenerateDocumentsRequest) (*models.DocumentUpdate, error)
}

// SetupProvider wires the provider selected by configuration:
//
//	mock   - local templates only, no network
//	remote - the AI HTTP service only
//	auto   - remote with mock fallback on failure (default)
//
// A Redis client, when available, memoizes remote responses.
func SetupProvider(cfg *config.Config, rdb *redis.Client, logger *slog.Logger) (Provider, error) {
	var cache Cache
	if rdb != nil {
		cache = NewRedisCache(rdb, cfg.AICacheTTL)
	}

	switch cfg.AIProvider {
	case "mock":
		return NewMock(), nil
	case "remote":
		return NewClient(cfg, cache, logger), nil
	case "auto", "":
		return NewFallback(NewClient(cfg, cache, logger), NewMock(), logger), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
	}
}
