package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	"vibeguide/internal/domain/models"
)

// Mock is a local Provider that answers from canned questions and
// templated markdown, used for development and as the fallback when
// the AI service is unreachable. Document bodies are padded with lorem
// ipsum so downstream rendering and archiving see realistic sizes.
type Mock struct {
	generator *loremgen.Lorem

	// Delay simulates collaborator latency per call. Zero in tests.
	Delay time.Duration
}

// NewMock creates a mock provider with no artificial latency.
func NewMock() *Mock {
	return &Mock{generator: loremgen.New()}
}

// Name returns the provider name.
func (m *Mock) Name() string { return "mock" }

var baseQuestions = []models.Question{
	{ID: "1", Question: "Who are your target users? Describe their characteristics in detail.", Type: models.QuestionTypeText, Required: true},
	{ID: "2", Question: "What core problem should this project solve?", Type: models.QuestionTypeText, Required: true},
	{ID: "3", Question: "What is the expected scale of the project?", Type: models.QuestionTypeChoice, Options: []string{"Small personal project", "Medium team project", "Large enterprise project"}, Required: true},
	{ID: "4", Question: "How complex may the technical solution be?", Type: models.QuestionTypeRating},
	{ID: "5", Question: "Do you have a preferred technology stack? If so, which one?", Type: models.QuestionTypeText},
}

// GenerateQuestions returns the canned question set, extended with
// topic-specific questions when the description mentions management or
// data concerns, capped at five.
func (m *Mock) GenerateQuestions(ctx context.Context, req *GenerateQuestionsRequest) (*QuestionsResult, error) {
	if err := m.sleep(ctx); err != nil {
		return nil, err
	}

	questions := make([]models.Question, len(baseQuestions))
	copy(questions, baseQuestions)

	desc := strings.ToLower(req.ProjectDescription)
	if strings.Contains(desc, "management") || strings.Contains(desc, "admin") {
		questions = append(questions, models.Question{
			ID:       "6",
			Question: "What level of permission management do you need?",
			Type:     models.QuestionTypeChoice,
			Options:  []string{"Basic user permissions", "Role-based access", "Fine-grained permission system"},
			Required: true,
		})
	}
	if strings.Contains(desc, "data") || strings.Contains(desc, "information") {
		questions = append(questions, models.Question{
			ID:       "7",
			Question: "How much data do you expect to store and process?",
			Type:     models.QuestionTypeChoice,
			Options:  []string{"Small (< 100k records)", "Medium (100k - 1M records)", "Large (> 1M records)"},
			Required: true,
		})
	}

	if len(questions) > 5 {
		questions = questions[:5]
	}

	return &QuestionsResult{
		Questions: questions,
		Analysis: fmt.Sprintf(
			"Based on your project description %q, these questions matter most for pinning down the requirements. Answer them in detail so the generated documents are precise.",
			truncate(req.ProjectDescription, 50),
		),
	}, nil
}

// AnalyzeAnswers renders a requirements analysis from the answered
// questions.
func (m *Mock) AnalyzeAnswers(ctx context.Context, req *AnalyzeAnswersRequest) (string, error) {
	if err := m.sleep(ctx); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("## Requirements Analysis\n\n")
	fmt.Fprintf(&b, "**Project overview:** %s\n\n", truncate(req.ProjectDescription, 100))
	b.WriteString("**Core requirements:**\n\n")
	for i, q := range req.Questions {
		fmt.Fprintf(&b, "%d. %s\n   Answer: %s\n\n", i+1, q.Question, q.Answer)
	}
	b.WriteString("**Recommendations:**\n\n")
	b.WriteString("- Adopt a modern, well-supported technology stack\n")
	b.WriteString("- Work in small, iterative releases\n")
	b.WriteString("- Prioritize the user experience of the core flow\n")
	b.WriteString("- Plan for extensibility and maintenance early\n")
	return b.String(), nil
}

// GenerateDocuments renders all five documents from the templates.
// Every field of the update is populated.
func (m *Mock) GenerateDocuments(ctx context.Context, req *GenerateDocumentsRequest) (*models.DocumentUpdate, error) {
	update := &models.DocumentUpdate{}
	for _, tmpl := range DocumentTemplates() {
		if err := m.sleep(ctx); err != nil {
			return nil, err
		}
		setDocument(update, tmpl.Type, m.renderDocument(tmpl, req))
	}
	return update, nil
}

func (m *Mock) renderDocument(tmpl DocumentTemplate, req *GenerateDocumentsRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", tmpl.Title)
	fmt.Fprintf(&b, "> %s\n\n", truncate(req.ProjectDescription, 200))
	if req.Requirements != "" {
		fmt.Fprintf(&b, "**Requirements summary:** %s\n\n", truncate(req.Requirements, 200))
	}
	for _, section := range tmpl.Sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", section, m.generator.Paragraph(3, 5))
	}
	return b.String()
}

func (m *Mock) sleep(ctx context.Context) error {
	if m.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(m.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
