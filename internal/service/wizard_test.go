package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"vibeguide/internal/domain"
	"vibeguide/internal/domain/models"
	"vibeguide/internal/service/ai"
	"vibeguide/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProvider lets each test script the collaborator's behavior.
type fakeProvider struct {
	questions    *ai.QuestionsResult
	questionsErr error
	analysis     string
	analysisErr  error
	documents    *models.DocumentUpdate
	documentsErr error

	// onGenerate runs inside each provider call before returning,
	// simulating work that overlaps with other requests.
	onGenerate func()

	lastAnalyzeReq *ai.AnalyzeAnswersRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GenerateQuestions(ctx context.Context, req *ai.GenerateQuestionsRequest) (*ai.QuestionsResult, error) {
	if f.onGenerate != nil {
		f.onGenerate()
	}
	return f.questions, f.questionsErr
}

func (f *fakeProvider) AnalyzeAnswers(ctx context.Context, req *ai.AnalyzeAnswersRequest) (string, error) {
	f.lastAnalyzeReq = req
	if f.onGenerate != nil {
		f.onGenerate()
	}
	return f.analysis, f.analysisErr
}

func (f *fakeProvider) GenerateDocuments(ctx context.Context, req *ai.GenerateDocumentsRequest) (*models.DocumentUpdate, error) {
	if f.onGenerate != nil {
		f.onGenerate()
	}
	return f.documents, f.documentsErr
}

// fakeProjectRepo is an in-memory ProjectRepository.
type fakeProjectRepo struct {
	saved   map[string]*models.Project
	saveErr error
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{saved: make(map[string]*models.Project)}
}

func (r *fakeProjectRepo) Save(ctx context.Context, p *models.Project) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved[p.ID] = p.Clone()
	return nil
}

func (r *fakeProjectRepo) GetByID(ctx context.Context, id, userID string) (*models.Project, error) {
	p, ok := r.saved[id]
	if !ok || p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *fakeProjectRepo) List(ctx context.Context, userID string) ([]models.Project, error) {
	var out []models.Project
	for _, p := range r.saved {
		if p.UserID == userID {
			out = append(out, *p.Clone())
		}
	}
	return out, nil
}

func storeWithProject(desc string) *store.Store {
	st := store.New(discardLogger())
	st.UpdateDescription(desc)
	return st
}

func answer(st *store.Store) {
	st.UpdateAIQuestions([]models.Question{{ID: "q1", Question: "?"}})
	st.AnswerQuestion("q1", "an answer")
}

func TestGenerateQuestionsCommitsResult(t *testing.T) {
	provider := &fakeProvider{
		questions: &ai.QuestionsResult{
			Questions: []models.Question{
				{ID: "q1", Question: "Who?", Answer: "stale answer from the wire"},
			},
			Analysis: "short analysis",
		},
	}
	svc := NewWizardService(provider, newFakeProjectRepo(), discardLogger())
	st := storeWithProject("a long enough description")

	questions, err := svc.GenerateQuestions(context.Background(), st)
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("got %d questions", len(questions))
	}
	if questions[0].Answer != "" {
		t.Error("answers must be reset to empty before committing")
	}

	p := st.CurrentProject()
	if len(p.AIQuestions) != 1 || p.AIQuestions[0].ID != "q1" {
		t.Errorf("store questions = %+v", p.AIQuestions)
	}
	if p.Status != models.StatusInProgress {
		t.Errorf("Status = %q, want in_progress", p.Status)
	}
	if st.Loading(store.KeyAIGeneration) {
		t.Error("aiGeneration loading flag must be cleared")
	}
	notes := st.Notifications()
	if len(notes) != 1 || notes[0].Type != models.NotificationSuccess {
		t.Errorf("notifications = %+v, want one success", notes)
	}
}

func TestGenerateQuestionsRequiresDescription(t *testing.T) {
	svc := NewWizardService(&fakeProvider{}, newFakeProjectRepo(), discardLogger())

	_, err := svc.GenerateQuestions(context.Background(), store.New(discardLogger()))
	var precondition *domain.PreconditionError
	if !errors.As(err, &precondition) {
		t.Errorf("err = %v, want PreconditionError without a project", err)
	}
}

func TestGenerateQuestionsProviderFailure(t *testing.T) {
	provider := &fakeProvider{questionsErr: errors.New("model down")}
	svc := NewWizardService(provider, newFakeProjectRepo(), discardLogger())
	st := storeWithProject("a long enough description")

	if _, err := svc.GenerateQuestions(context.Background(), st); err == nil {
		t.Fatal("expected an error")
	}
	if msg, ok := st.Error(store.KeyAIGeneration); !ok || !strings.Contains(msg, "model down") {
		t.Errorf("aiGeneration error slot = %q, %v", msg, ok)
	}
	if st.Loading(store.KeyAIGeneration) {
		t.Error("loading flag must be cleared on failure")
	}
	notes := st.Notifications()
	if len(notes) != 1 || notes[0].Type != models.NotificationError {
		t.Errorf("notifications = %+v, want one error", notes)
	}
}

func TestGenerateQuestionsSupersededResultIsDiscarded(t *testing.T) {
	st := storeWithProject("a long enough description")

	provider := &fakeProvider{
		questions: &ai.QuestionsResult{Questions: []models.Question{{ID: "slow", Question: "late"}}},
	}
	// While the first request is in flight, a second one begins and
	// commits. The first result must then be dropped.
	provider.onGenerate = func() {
		provider.onGenerate = nil
		newer := st.Begin(store.KindQuestions)
		if err := st.ApplyQuestions(newer, []models.Question{{ID: "fast", Question: "won"}}); err != nil {
			t.Fatalf("newer apply failed: %v", err)
		}
	}

	svc := NewWizardService(provider, newFakeProjectRepo(), discardLogger())
	_, err := svc.GenerateQuestions(context.Background(), st)
	if !errors.Is(err, domain.ErrStaleResult) {
		t.Fatalf("err = %v, want ErrStaleResult", err)
	}

	p := st.CurrentProject()
	if len(p.AIQuestions) != 1 || p.AIQuestions[0].ID != "fast" {
		t.Errorf("stale result overwrote newer questions: %+v", p.AIQuestions)
	}
}

func TestAnalyzeAnswersStoresRequirements(t *testing.T) {
	provider := &fakeProvider{analysis: "## the analysis"}
	svc := NewWizardService(provider, newFakeProjectRepo(), discardLogger())
	st := storeWithProject("a long enough description")
	answer(st)

	analysis, err := svc.AnalyzeAnswers(context.Background(), st)
	if err != nil {
		t.Fatalf("AnalyzeAnswers: %v", err)
	}
	if analysis != "## the analysis" {
		t.Errorf("analysis = %q", analysis)
	}
	if got := st.CurrentProject().Requirements; got != "## the analysis" {
		t.Errorf("Requirements = %q", got)
	}
	if provider.lastAnalyzeReq == nil || len(provider.lastAnalyzeReq.Questions) != 1 {
		t.Errorf("provider got %+v", provider.lastAnalyzeReq)
	}
}

func TestAnalyzeAnswersSupersededResultIsDiscarded(t *testing.T) {
	st := storeWithProject("a long enough description")
	answer(st)

	provider := &fakeProvider{analysis: "slow analysis, finished last"}
	// While the first analysis is in flight, a second one begins and
	// commits. The first result must then be dropped.
	provider.onGenerate = func() {
		provider.onGenerate = nil
		newer := st.Begin(store.KindAnalysis)
		if err := st.ApplyRequirements(newer, "fast analysis, committed first"); err != nil {
			t.Fatalf("newer apply failed: %v", err)
		}
	}

	svc := NewWizardService(provider, newFakeProjectRepo(), discardLogger())
	_, err := svc.AnalyzeAnswers(context.Background(), st)
	if !errors.Is(err, domain.ErrStaleResult) {
		t.Fatalf("err = %v, want ErrStaleResult", err)
	}

	if got := st.CurrentProject().Requirements; got != "fast analysis, committed first" {
		t.Errorf("stale analysis overwrote newer requirements: %q", got)
	}
}

func TestAnalyzeAnswersRequiresAnAnswer(t *testing.T) {
	svc := NewWizardService(&fakeProvider{}, newFakeProjectRepo(), discardLogger())
	st := storeWithProject("a long enough description")
	st.UpdateAIQuestions([]models.Question{{ID: "q1", Question: "?"}}) // unanswered

	_, err := svc.AnalyzeAnswers(context.Background(), st)
	var precondition *domain.PreconditionError
	if !errors.As(err, &precondition) {
		t.Errorf("err = %v, want PreconditionError", err)
	}
}

func TestGenerateDocumentsFailureKeepsExisting(t *testing.T) {
	provider := &fakeProvider{documentsErr: errors.New("assembler down")}
	svc := NewWizardService(provider, newFakeProjectRepo(), discardLogger())
	st := storeWithProject("a long enough description")
	answer(st)

	existing := "previously generated PRD"
	st.UpdateDocuments(models.DocumentUpdate{PRD: &existing})

	if _, err := svc.GenerateDocuments(context.Background(), st); err == nil {
		t.Fatal("expected an error")
	}
	if got := st.CurrentProject().Documents.PRD; got != existing {
		t.Errorf("PRD = %q, a failed generation must not clobber documents", got)
	}
	if _, ok := st.Error(store.KeyDocuments); !ok {
		t.Error("documents error slot should be set")
	}
}

func TestGenerateDocumentsPartialMerge(t *testing.T) {
	existing := "old user journey"
	prd := "new prd"
	provider := &fakeProvider{documents: &models.DocumentUpdate{PRD: &prd}}
	svc := NewWizardService(provider, newFakeProjectRepo(), discardLogger())
	st := storeWithProject("a long enough description")
	answer(st)
	st.UpdateDocuments(models.DocumentUpdate{UserJourney: &existing})

	docs, err := svc.GenerateDocuments(context.Background(), st)
	if err != nil {
		t.Fatalf("GenerateDocuments: %v", err)
	}
	if docs.PRD != "new prd" {
		t.Errorf("PRD = %q", docs.PRD)
	}
	if docs.UserJourney != existing {
		t.Errorf("UserJourney = %q, partial result must not clear other documents", docs.UserJourney)
	}
	if got := st.CurrentProject().Status; got != models.StatusCompleted {
		t.Errorf("Status = %q, want completed", got)
	}
}

func TestSaveProject(t *testing.T) {
	repo := newFakeProjectRepo()
	svc := NewWizardService(&fakeProvider{}, repo, discardLogger())
	st := storeWithProject("a long enough description")

	saved, err := svc.SaveProject(context.Background(), st, "user-1")
	if err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	if saved.UserID != "user-1" {
		t.Errorf("UserID = %q", saved.UserID)
	}
	if _, ok := repo.saved[saved.ID]; !ok {
		t.Error("project not persisted")
	}
	if st.Loading(store.KeySaving) {
		t.Error("saving flag must be cleared")
	}
	notes := st.Notifications()
	if len(notes) != 1 || notes[0].Type != models.NotificationSuccess {
		t.Errorf("notifications = %+v, want one success", notes)
	}
}

func TestSaveProjectFailure(t *testing.T) {
	repo := newFakeProjectRepo()
	repo.saveErr = errors.New("connection refused")
	svc := NewWizardService(&fakeProvider{}, repo, discardLogger())
	st := storeWithProject("a long enough description")

	if _, err := svc.SaveProject(context.Background(), st, "user-1"); err == nil {
		t.Fatal("expected an error")
	}
	if st.Loading(store.KeySaving) {
		t.Error("saving flag must be cleared on failure")
	}
	if msg, ok := st.Error(store.KeySaving); !ok || !strings.Contains(msg, "connection refused") {
		t.Errorf("saving error slot = %q, %v", msg, ok)
	}
	notes := st.Notifications()
	if len(notes) != 1 || notes[0].Type != models.NotificationError {
		t.Errorf("notifications = %+v, want one error", notes)
	}
}

func TestLoadProjectResetsWizard(t *testing.T) {
	repo := newFakeProjectRepo()
	saved := models.NewProject("a saved project description")
	saved.UserID = "user-1"
	repo.saved[saved.ID] = saved

	svc := NewWizardService(&fakeProvider{}, repo, discardLogger())
	st := store.New(discardLogger())
	st.SetStep(3)

	loaded, err := svc.LoadProject(context.Background(), st, saved.ID, "user-1")
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if loaded.ID != saved.ID {
		t.Errorf("loaded ID = %q", loaded.ID)
	}
	if got := st.Step(); got != 1 {
		t.Errorf("Step() = %d after load, want 1", got)
	}
	if st.Loading(store.KeyProjects) {
		t.Error("projects loading flag must be cleared")
	}
}

func TestLoadProjectNotFound(t *testing.T) {
	svc := NewWizardService(&fakeProvider{}, newFakeProjectRepo(), discardLogger())
	st := store.New(discardLogger())

	_, err := svc.LoadProject(context.Background(), st, "missing", "user-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, ok := st.Error(store.KeyProjects); ok {
		t.Error("a plain not-found must not set the projects error slot")
	}
}
