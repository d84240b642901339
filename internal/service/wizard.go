// Package service orchestrates the wizard core: it drives the AI
// collaborators and the project repository, and feeds their results
// back into the session store. Network calls happen here, never inside
// the store; results are committed through tokened apply operations so
// a stale response can never overwrite newer state.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"vibeguide/internal/domain"
	"vibeguide/internal/domain/models"
	"vibeguide/internal/domain/repositories"
	"vibeguide/internal/service/ai"
	"vibeguide/internal/store"
)

// WizardService coordinates collaborator calls for one request at a
// time. It is stateless; all session state lives in the store passed
// to each method.
type WizardService struct {
	provider ai.Provider
	projects repositories.ProjectRepository
	logger   *slog.Logger
}

// NewWizardService creates the orchestration service.
func NewWizardService(provider ai.Provider, projects repositories.ProjectRepository, logger *slog.Logger) *WizardService {
	return &WizardService{
		provider: provider,
		projects: projects,
		logger:   logger,
	}
}

// GenerateQuestions asks the collaborator for clarifying questions and
// commits them to the store. Answers are initialized to empty strings
// before storing. A result that lost the race against a newer request
// is discarded and reported as domain.ErrStaleResult.
func (s *WizardService) GenerateQuestions(ctx context.Context, st *store.Store) ([]models.Question, error) {
	project := st.CurrentProject()
	if project == nil {
		return nil, &domain.PreconditionError{Message: "no current project; enter a description first"}
	}
	if project.Description == "" {
		return nil, &domain.PreconditionError{Message: "project description must not be empty"}
	}

	// Token is issued at request time: any later request supersedes us.
	token := st.Begin(store.KindQuestions)
	st.ClearError(store.KeyAIGeneration)
	st.SetLoading(store.KeyAIGeneration, true)
	defer st.SetLoading(store.KeyAIGeneration, false)

	result, err := s.provider.GenerateQuestions(ctx, &ai.GenerateQuestionsRequest{
		ProjectDescription: project.Description,
	})
	if err != nil {
		st.SetError(store.KeyAIGeneration, err.Error())
		st.AddNotification(models.NotificationError, "Question generation failed", err.Error())
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	questions := result.Questions
	for i := range questions {
		questions[i].Answer = ""
	}

	if err := st.ApplyQuestions(token, questions); err != nil {
		return nil, err
	}
	st.SetStatus(models.StatusInProgress)
	st.AddNotification(models.NotificationSuccess, "Questions ready",
		fmt.Sprintf("Generated %d clarifying questions.", len(questions)))
	return questions, nil
}

// AnalyzeAnswers sends the answered questions to the collaborator and
// stores the resulting analysis as the project's requirements text.
// Like the other collaborator paths, the result is committed through a
// tokened apply, so an analysis that lost the race against a newer
// request is discarded as domain.ErrStaleResult.
func (s *WizardService) AnalyzeAnswers(ctx context.Context, st *store.Store) (string, error) {
	project := st.CurrentProject()
	if project == nil {
		return "", &domain.PreconditionError{Message: "no current project; enter a description first"}
	}
	if project.AnsweredQuestions() == 0 {
		return "", &domain.PreconditionError{Message: "answer at least one question before requesting analysis"}
	}

	token := st.Begin(store.KindAnalysis)
	st.ClearError(store.KeyAIGeneration)
	st.SetLoading(store.KeyAIGeneration, true)
	defer st.SetLoading(store.KeyAIGeneration, false)

	analysis, err := s.provider.AnalyzeAnswers(ctx, &ai.AnalyzeAnswersRequest{
		ProjectDescription: project.Description,
		Questions:          answeredQuestions(project),
	})
	if err != nil {
		st.SetError(store.KeyAIGeneration, err.Error())
		st.AddNotification(models.NotificationError, "Analysis failed", err.Error())
		return "", fmt.Errorf("analyze answers: %w", err)
	}

	if err := st.ApplyRequirements(token, analysis); err != nil {
		return "", err
	}
	return analysis, nil
}

// GenerateDocuments asks the collaborator for the five development
// documents and merges them into the store. On failure the existing
// documents are left untouched; a partially successful result commits
// only the documents that were produced.
func (s *WizardService) GenerateDocuments(ctx context.Context, st *store.Store) (*models.DocumentSet, error) {
	project := st.CurrentProject()
	if project == nil {
		return nil, &domain.PreconditionError{Message: "no current project; enter a description first"}
	}
	if project.AnsweredQuestions() == 0 {
		return nil, &domain.PreconditionError{Message: "answer at least one question before generating documents"}
	}

	token := st.Begin(store.KindDocuments)
	st.ClearError(store.KeyDocuments)
	st.SetLoading(store.KeyDocuments, true)
	defer st.SetLoading(store.KeyDocuments, false)

	update, err := s.provider.GenerateDocuments(ctx, &ai.GenerateDocumentsRequest{
		ProjectDescription: project.Description,
		Requirements:       project.Requirements,
	})
	if err != nil {
		st.SetError(store.KeyDocuments, err.Error())
		st.AddNotification(models.NotificationError, "Document generation failed", err.Error())
		return nil, fmt.Errorf("generate documents: %w", err)
	}

	if err := st.ApplyDocuments(token, *update); err != nil {
		return nil, err
	}
	st.SetStatus(models.StatusCompleted)
	st.AddNotification(models.NotificationSuccess, "Documents ready",
		"Your development documents have been generated.")

	current := st.CurrentProject()
	return &current.Documents, nil
}

// SaveProject persists the current project for the user. The saving
// flag is cleared in all outcomes; success bumps UpdatedAt and emits a
// success notification, failure leaves the project untouched and
// emits a failure notification.
func (s *WizardService) SaveProject(ctx context.Context, st *store.Store, userID string) (*models.Project, error) {
	project := st.CurrentProject()
	if project == nil {
		return nil, &domain.PreconditionError{Message: "no current project to save"}
	}

	st.ClearError(store.KeySaving)
	st.SetLoading(store.KeySaving, true)
	defer st.SetLoading(store.KeySaving, false)

	project.UserID = userID
	project.Touch()

	if err := s.projects.Save(ctx, project); err != nil {
		st.SetError(store.KeySaving, err.Error())
		st.AddNotification(models.NotificationError, "Save failed", err.Error())
		return nil, fmt.Errorf("save project: %w", err)
	}

	st.Touch()
	st.AddNotification(models.NotificationSuccess, "Project saved",
		fmt.Sprintf("%q has been saved.", project.Name))

	s.logger.Info("project saved",
		"id", project.ID,
		"user_id", userID,
	)
	return project, nil
}

// LoadProject fetches a saved project and makes it the session's
// current project, which resets the wizard to step 1.
func (s *WizardService) LoadProject(ctx context.Context, st *store.Store, id, userID string) (*models.Project, error) {
	st.ClearError(store.KeyProjects)
	st.SetLoading(store.KeyProjects, true)
	defer st.SetLoading(store.KeyProjects, false)

	project, err := s.projects.GetByID(ctx, id, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			st.SetError(store.KeyProjects, err.Error())
		}
		return nil, err
	}

	st.SetCurrentProject(project)
	return st.CurrentProject(), nil
}

// GetProject fetches a saved project without touching session state.
func (s *WizardService) GetProject(ctx context.Context, id, userID string) (*models.Project, error) {
	return s.projects.GetByID(ctx, id, userID)
}

// ListProjects returns the user's saved projects.
func (s *WizardService) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	return s.projects.List(ctx, userID)
}

// answeredQuestions converts the project's question list to the wire
// shape. All questions are sent; unanswered ones carry empty answers.
func answeredQuestions(p *models.Project) []ai.AnsweredQuestion {
	out := make([]ai.AnsweredQuestion, 0, len(p.AIQuestions))
	for _, q := range p.AIQuestions {
		out = append(out, ai.AnsweredQuestion{
			ID:       q.ID,
			Question: q.Question,
			Answer:   q.Answer,
		})
	}
	return out
}
