package ai

import (
	"context"
	"log/slog"

	"vibeguide/internal/domain/models"
)

// Fallback tries the primary provider and falls back to the secondary
// when the whole call fails, mirroring the original product's behavior
// of degrading to canned content when the AI service is down. The
// switch is per call, not sticky.
type Fallback struct {
	primary   Provider
	secondary Provider
	logger    *slog.Logger
}

// NewFallback wraps primary with secondary as the fallback.
func NewFallback(primary, secondary Provider, logger *slog.Logger) *Fallback {
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

// Name returns the primary provider's name.
func (f *Fallback) Name() string { return f.primary.Name() }

func (f *Fallback) GenerateQuestions(ctx context.Context, req *GenerateQuestionsRequest) (*QuestionsResult, error) {
	res, err := f.primary.GenerateQuestions(ctx, req)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	f.logger.Warn("primary AI provider failed, using fallback",
		"operation", "generate-questions",
		"primary", f.primary.Name(),
		"error", err,
	)
	return f.secondary.GenerateQuestions(ctx, req)
}

func (f *Fallback) AnalyzeAnswers(ctx context.Context, req *AnalyzeAnswersRequest) (string, error) {
	res, err := f.primary.AnalyzeAnswers(ctx, req)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return "", err
	}
	f.logger.Warn("primary AI provider failed, using fallback",
		"operation", "analyze-answers",
		"primary", f.primary.Name(),
		"error", err,
	)
	return f.secondary.AnalyzeAnswers(ctx, req)
}

func (f *Fallback) GenerateDocuments(ctx context.Context, req *GenerateDocumentsRequest) (*models.DocumentUpdate, error) {
	res, err := f.primary.GenerateDocuments(ctx, req)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	f.logger.Warn("primary AI provider failed, using fallback",
		"operation", "generate-documents",
		"primary", f.primary.Name(),
		"error", err,
	)
	return f.secondary.GenerateDocuments(ctx, req)
}
