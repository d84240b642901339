// Package store implements the wizard's single source of truth: the
// session-scoped project state container. All mutations go through
// named operations; each operation is an atomic, synchronous state
// transition. The store never fails on invalid input - it clamps or
// no-ops instead. Collaborator failures are reported back into it via
// the keyed error slots.
package store

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"vibeguide/internal/config"
	"vibeguide/internal/domain"
	"vibeguide/internal/domain/models"
)

// Key identifies an independent loading/error slot. Setting one slot
// never clears another.
type Key string

const (
	KeyGlobal       Key = "global"
	KeyProjects     Key = "projects"
	KeyDocuments    Key = "documents"
	KeyAIGeneration Key = "aiGeneration"
	KeySaving       Key = "saving"
	KeyNetwork      Key = "network"
)

// Kind identifies an async operation kind for staleness tracking.
// Each kind carries a monotonically increasing token; a collaborator
// result is applied only if it still holds the latest token, so a slow
// response from an abandoned request can never overwrite newer data.
type Kind string

const (
	KindQuestions Kind = "questions"
	KindAnalysis  Kind = "analysis"
	KindDocuments Kind = "documents"
)

// Snapshot is a read-only view of the store handed to callers.
type Snapshot struct {
	Project       *models.Project       `json:"project"`
	Projects      []*models.Project     `json:"projects"`
	Step          int                   `json:"step"`
	Loading       map[Key]bool          `json:"loading"`
	Errors        map[Key]string        `json:"errors"`
	Notifications []models.Notification `json:"notifications"`
}

// Store holds the in-progress project, wizard step, per-operation
// loading and error flags, and the notification queue for one wizard
// session. Handlers and services run on separate goroutines, so every
// operation takes the store lock; state handed out is always a clone.
type Store struct {
	mu sync.Mutex

	current *models.Project
	// projects retains every project that has been current during this
	// session. Only the current one is mutable through wizard operations.
	projects []*models.Project

	step          int
	loading       map[Key]bool
	errors        map[Key]string
	notifications []models.Notification

	tokens map[Kind]uint64

	logger *slog.Logger
}

// New creates an empty store at step 1 with no current project.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		step:    config.MinWizardStep,
		loading: make(map[Key]bool),
		errors:  make(map[Key]string),
		tokens:  make(map[Kind]uint64),
		logger:  logger,
	}
}

// SetCurrentProject replaces the current project. A non-nil project
// resets the wizard to step 1. Passing nil clears the current project
// without touching the step.
func (s *Store) SetCurrentProject(p *models.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p == nil {
		s.current = nil
		return
	}
	s.current = p.Clone()
	s.rememberLocked(s.current)
	s.step = config.MinWizardStep
}

// CurrentProject returns a clone of the current project, or nil.
func (s *Store) CurrentProject() *models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// UpdateDescription sets the description on the current project,
// synthesizing a default draft project first if none exists. It always
// succeeds.
func (s *Store) UpdateDescription(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		s.current = models.NewProject(text)
		s.rememberLocked(s.current)
		s.logger.Debug("project created from first description edit", "id", s.current.ID)
		return
	}
	s.current.Description = text
	s.current.Touch()
}

// RenameProject sets the project name. No-op without a current project
// or with a blank name.
func (s *Store) RenameProject(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || strings.TrimSpace(name) == "" {
		return
	}
	s.current.Name = name
	s.current.Touch()
}

// UpdateRequirements sets the requirements text. No-op without a
// current project.
func (s *Store) UpdateRequirements(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	s.current.Requirements = text
	s.current.Touch()
}

// UpdateAIQuestions replaces the question list, preserving insertion
// order and dropping duplicate IDs (first occurrence wins). No-op
// without a current project.
func (s *Store) UpdateAIQuestions(questions []models.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setQuestionsLocked(questions)
}

// AnswerQuestion records the user's answer for one question. No-op if
// the project or question does not exist.
func (s *Store) AnswerQuestion(id, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	for i := range s.current.AIQuestions {
		if s.current.AIQuestions[i].ID == id {
			s.current.AIQuestions[i].Answer = answer
			s.current.Touch()
			return
		}
	}
}

// UpdateDocuments merges a partial document update into the current
// project, field by field. Fields absent from the update keep their
// previous content. No-op without a current project.
func (s *Store) UpdateDocuments(update models.DocumentUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mergeDocumentsLocked(update)
}

// Touch bumps the current project's UpdatedAt, e.g. after a successful
// save round-trip. No-op without a current project.
func (s *Store) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.current.Touch()
}

// SetStatus updates the status label. No-op without a current project.
func (s *Store) SetStatus(status models.ProjectStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.current.Status = status
	s.current.Touch()
}

// Step returns the current wizard step.
func (s *Store) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// SetStep moves to the given step, clamped to the valid range.
func (s *Store) SetStep(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = clampStep(n)
}

// NextStep advances one step; a no-op at the ceiling.
func (s *Store) NextStep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = clampStep(s.step + 1)
}

// PrevStep goes back one step; a no-op at the floor.
func (s *Store) PrevStep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = clampStep(s.step - 1)
}

// GoToStep jumps directly to a step, clamped to the valid range.
// Gating policy for forward jumps lives in the wizard controller, not
// here.
func (s *Store) GoToStep(n int) {
	s.SetStep(n)
}

// SetLoading flips one keyed loading flag.
func (s *Store) SetLoading(key Key, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loading {
		s.loading[key] = true
	} else {
		delete(s.loading, key)
	}
}

// Loading reports one keyed loading flag.
func (s *Store) Loading(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading[key]
}

// SetError records a human-readable message in one error slot.
func (s *Store) SetError(key Key, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[key] = message
}

// ClearError clears one error slot, leaving the others untouched.
func (s *Store) ClearError(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.errors, key)
}

// Error returns the message in one error slot, if set.
func (s *Store) Error(key Key) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.errors[key]
	return msg, ok
}

// AddNotification appends a notification with a generated ID and
// timestamp, and returns it.
func (s *Store) AddNotification(ntype models.NotificationType, title, message string) models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := models.NewNotification(ntype, title, message)
	s.notifications = append(s.notifications, n)
	return n
}

// RemoveNotification deletes a notification by ID. No-op if absent.
func (s *Store) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = slices.DeleteFunc(s.notifications, func(n models.Notification) bool {
		return n.ID == id
	})
}

// ClearNotifications empties the queue.
func (s *Store) ClearNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = nil
}

// Notifications returns the queue in insertion order.
func (s *Store) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notifications)
}

// Begin issues a new request token for the given operation kind and
// invalidates all earlier tokens of that kind. Call it when the async
// collaborator request is issued, not when its result arrives.
func (s *Store) Begin(kind Kind) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[kind]++
	return s.tokens[kind]
}

// ApplyQuestions commits a question-generation result if its token is
// still the latest for KindQuestions. Stale results return
// domain.ErrStaleResult and leave the store untouched.
func (s *Store) ApplyQuestions(token uint64, questions []models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.tokens[KindQuestions] {
		s.logger.Info("discarding stale question set",
			"token", token,
			"latest", s.tokens[KindQuestions],
		)
		return domain.ErrStaleResult
	}
	s.setQuestionsLocked(questions)
	return nil
}

// ApplyRequirements commits an answer-analysis result as the
// requirements text if its token is still the latest for KindAnalysis.
// Stale results return domain.ErrStaleResult and leave the store
// untouched.
func (s *Store) ApplyRequirements(token uint64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.tokens[KindAnalysis] {
		s.logger.Info("discarding stale analysis",
			"token", token,
			"latest", s.tokens[KindAnalysis],
		)
		return domain.ErrStaleResult
	}
	if s.current == nil {
		return nil
	}
	s.current.Requirements = text
	s.current.Touch()
	return nil
}

// ApplyDocuments commits a document-assembly result if its token is
// still the latest for KindDocuments. Stale results return
// domain.ErrStaleResult and leave the store untouched.
func (s *Store) ApplyDocuments(token uint64, update models.DocumentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.tokens[KindDocuments] {
		s.logger.Info("discarding stale document set",
			"token", token,
			"latest", s.tokens[KindDocuments],
		)
		return domain.ErrStaleResult
	}
	s.mergeDocumentsLocked(update)
	return nil
}

// Snapshot returns a consistent read-only view of the whole store.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := make([]*models.Project, len(s.projects))
	for i, p := range s.projects {
		projects[i] = p.Clone()
	}

	loading := make(map[Key]bool, len(s.loading))
	for k, v := range s.loading {
		loading[k] = v
	}
	errs := make(map[Key]string, len(s.errors))
	for k, v := range s.errors {
		errs[k] = v
	}

	return Snapshot{
		Project:       s.current.Clone(),
		Projects:      projects,
		Step:          s.step,
		Loading:       loading,
		Errors:        errs,
		Notifications: slices.Clone(s.notifications),
	}
}

func (s *Store) setQuestionsLocked(questions []models.Question) {
	if s.current == nil {
		return
	}

	seen := make(map[string]struct{}, len(questions))
	deduped := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		if _, dup := seen[q.ID]; dup {
			s.logger.Warn("dropping question with duplicate id", "id", q.ID)
			continue
		}
		seen[q.ID] = struct{}{}
		deduped = append(deduped, q)
	}

	s.current.AIQuestions = deduped
	s.current.Touch()
}

func (s *Store) mergeDocumentsLocked(update models.DocumentUpdate) {
	if s.current == nil {
		return
	}
	s.current.Documents.Merge(update)
	s.current.Touch()
}

// rememberLocked appends the project to the session list unless a
// project with the same ID is already there.
func (s *Store) rememberLocked(p *models.Project) {
	for _, existing := range s.projects {
		if existing.ID == p.ID {
			return
		}
	}
	s.projects = append(s.projects, p)
}

func clampStep(n int) int {
	if n < config.MinWizardStep {
		return config.MinWizardStep
	}
	if n > config.MaxWizardStep {
		return config.MaxWizardStep
	}
	return n
}
