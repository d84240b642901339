package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"vibeguide/internal/httputil"
	"vibeguide/internal/service"
	"vibeguide/internal/service/ai"
	"vibeguide/internal/session"
	"vibeguide/internal/utils"
)

// GenerationHandler runs AI generation steps against a session.
type GenerationHandler struct {
	registry *session.Registry
	wizard   *service.WizardService
	logger   *slog.Logger
}

func NewGenerationHandler(registry *session.Registry, wizard *service.WizardService, logger *slog.Logger) *GenerationHandler {
	return &GenerationHandler{registry: registry, wizard: wizard, logger: logger}
}

// GenerateQuestions produces clarification questions from the current
// description and stores them on the session project.
// POST /api/sessions/{id}/generate/questions
func (h *GenerationHandler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}

	questions, err := h.wizard.GenerateQuestions(r.Context(), s.Store)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

// AnalyzeAnswers summarizes the collected answers into a requirements
// text and stores it on the session project.
// POST /api/sessions/{id}/generate/analysis
func (h *GenerationHandler) AnalyzeAnswers(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}

	analysis, err := h.wizard.AnalyzeAnswers(r.Context(), s.Store)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"analysis": analysis})
}

// GenerateDocuments produces the five planning documents.
// POST /api/sessions/{id}/generate/documents
func (h *GenerationHandler) GenerateDocuments(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}

	docs, err := h.wizard.GenerateDocuments(r.Context(), s.Store)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// DownloadArchive streams the generated documents as a zip archive.
// Empty documents are skipped; an archive with nothing to pack is a 404.
// GET /api/sessions/{id}/documents/archive
func (h *GenerationHandler) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}

	project := s.Store.CurrentProject()
	if project == nil {
		httputil.RespondError(w, http.StatusNotFound, "no active project")
		return
	}

	var files []utils.ArchiveFile
	for _, tmpl := range ai.DocumentTemplates() {
		content := ai.DocumentContent(&project.Documents, tmpl.Type)
		if content == "" {
			continue
		}
		files = append(files, utils.ArchiveFile{Name: tmpl.Filename, Content: content})
	}
	if len(files) == 0 {
		httputil.RespondError(w, http.StatusNotFound, "no documents generated yet")
		return
	}

	buf, err := utils.CreateZip(files)
	if err != nil {
		h.logger.Error("failed to build document archive", "error", err, "project_id", project.ID)
		httputil.RespondError(w, http.StatusInternalServerError, "failed to build archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", project.Name+"-documents.zip"))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("archive download interrupted", "error", err)
	}
}
