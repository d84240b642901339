package handler

import (
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"vibeguide/internal/config"
	"vibeguide/internal/domain/models"
	"vibeguide/internal/httputil"
	"vibeguide/internal/session"
)

// WizardHandler exposes project edits and step navigation on a session.
type WizardHandler struct {
	registry *session.Registry
	logger   *slog.Logger
}

func NewWizardHandler(registry *session.Registry, logger *slog.Logger) *WizardHandler {
	return &WizardHandler{registry: registry, logger: logger}
}

type UpdateDescriptionRequest struct {
	Description string `json:"description"`
}

func (r UpdateDescriptionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Description, validation.RuneLength(0, config.MaxDescriptionRunes)),
	)
}

// UpdateDescription sets the project description, creating the project
// on first edit.
// PUT /api/sessions/{id}/description
func (h *WizardHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}

	var req UpdateDescriptionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.Store.UpdateDescription(req.Description)
	httputil.RespondJSON(w, http.StatusOK, s.Store.Snapshot())
}

type RenameProjectRequest struct {
	Name string `json:"name"`
}

func (r RenameProjectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, config.MaxProjectNameLength)),
	)
}

// RenameProject sets the project name.
// PUT /api/sessions/{id}/name
func (h *WizardHandler) RenameProject(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}

	var req RenameProjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.Store.RenameProject(req.Name)
	httputil.RespondJSON(w, http.StatusOK, s.Store.Snapshot())
}

type UpdateRequirementsRequest struct {
	Requirements string `json:"requirements"`
}

func (r UpdateRequirementsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Requirements, validation.RuneLength(0, config.MaxRequirementsRunes)),
	)
}

// UpdateRequirements sets the requirements summary text.
// PUT /api/sessions/{id}/requirements
func (h *WizardHandler) UpdateRequirements(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}

	var req UpdateRequirementsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.Store.UpdateRequirements(req.Requirements)
	httputil.RespondJSON(w, http.StatusOK, s.Store.Snapshot())
}

type UpdateQuestionsRequest struct {
	Questions []models.Question `json:"questions"`
}

func (r UpdateQuestionsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Questions, validation.Required),
	)
}

// UpdateQuestions replaces the question list wholesale. Duplicate IDs
// are dropped, first occurrence wins.
// PUT /api/sessions/{id}/questions
func (h *WizardHandler) UpdateQuestions(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}

	var req UpdateQuestionsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.Store.UpdateAIQuestions(req.Questions)
	httputil.RespondJSON(w, http.StatusOK, s.Store.Snapshot())
}

type AnswerRequest struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

func (r AnswerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.QuestionID, validation.Required),
		validation.Field(&r.Answer, validation.RuneLength(0, config.MaxAnswerRunes)),
	)
}

// Answer records the answer to a single question. Unknown question IDs
// are a no-op.
// PUT /api/sessions/{id}/answers
func (h *WizardHandler) Answer(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.Store.AnswerQuestion(req.QuestionID, req.Answer)
	httputil.RespondJSON(w, http.StatusOK, s.Store.Snapshot())
}

type stepResponse struct {
	Step  int  `json:"step"`
	Moved bool `json:"moved"`
}

// NextStep advances the wizard if the current step's exit conditions
// are met. A blocked advance reports moved=false rather than an error.
// POST /api/sessions/{id}/steps/next
func (h *WizardHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}
	moved := s.Controller.RequestNext()
	httputil.RespondJSON(w, http.StatusOK, stepResponse{Step: s.Store.Step(), Moved: moved})
}

// PrevStep moves back one step. Backward navigation is never gated.
// POST /api/sessions/{id}/steps/prev
func (h *WizardHandler) PrevStep(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}
	s.Controller.RequestPrev()
	httputil.RespondJSON(w, http.StatusOK, stepResponse{Step: s.Store.Step(), Moved: true})
}

type GoToStepRequest struct {
	Step int `json:"step"`
}

func (r GoToStepRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Step, validation.Required, validation.Min(config.MinWizardStep), validation.Max(config.MaxWizardStep)),
	)
}

// GoToStep jumps to a specific step. Backward jumps always succeed;
// forward jumps require the target's entry conditions.
// PUT /api/sessions/{id}/step
func (h *WizardHandler) GoToStep(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}

	var req GoToStepRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	moved := s.Controller.RequestStep(req.Step)
	httputil.RespondJSON(w, http.StatusOK, stepResponse{Step: s.Store.Step(), Moved: moved})
}
