package handler

import (
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"vibeguide/internal/httputil"
	"vibeguide/internal/service"
	"vibeguide/internal/session"
)

// ProjectHandler covers persistence: saving the session project,
// listing saved projects, and loading one back into a session.
type ProjectHandler struct {
	registry *session.Registry
	wizard   *service.WizardService
	logger   *slog.Logger
}

func NewProjectHandler(registry *session.Registry, wizard *service.WizardService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{registry: registry, wizard: wizard, logger: logger}
}

// Save persists the session's current project for the caller.
// POST /api/sessions/{id}/save
func (h *ProjectHandler) Save(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}

	project, err := h.wizard.SaveProject(r.Context(), s.Store, s.UserID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, project)
}

type LoadProjectRequest struct {
	ProjectID string `json:"projectId"`
}

func (r LoadProjectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProjectID, validation.Required, is.UUID),
	)
}

// Load replaces the session's current project with a saved one and
// resets the wizard to step 1.
// POST /api/sessions/{id}/project
func (h *ProjectHandler) Load(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}

	var req LoadProjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.wizard.LoadProject(r.Context(), s.Store, req.ProjectID, s.UserID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, project)
}

// List returns the caller's saved projects, most recently updated first.
// GET /api/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	projects, err := h.wizard.ListProjects(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// Get returns a single saved project by ID.
// GET /api/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	project, err := h.wizard.GetProject(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, project)
}
