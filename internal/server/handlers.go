package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docgen/internal/document"
	"git.home.luguber.info/inful/docgen/internal/render"
	"git.home.luguber.info/inful/docgen/internal/store"
	"git.home.luguber.info/inful/docgen/internal/version"
	"git.home.luguber.info/inful/docgen/internal/workflow"
)

func recordResponse(rec *store.Record) WorkflowResponse {
	return WorkflowResponse{
		ID:                 rec.ID,
		State:              rec.State,
		NeedsContentUpdate: rec.NeedsContentUpdate,
		FilePath:           rec.FilePath,
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}
}

// parseStopAt validates the optional stop_at field. The degraded step
// variants are not accepted; callers name the step they want, the
// workflow stops on either outcome.
func parseStopAt(s string) (document.Step, bool) {
	switch document.Step(s) {
	case "", document.StepTitleGenerated, document.StepOutlineGenerated, document.StepContentGenerated:
		return document.Step(s), true
	}
	return "", false
}

func (s *Server) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	docTypeName := req.DocumentType
	if docTypeName == "" {
		docTypeName = s.cfg.Defaults.DocumentType
	}
	docType, err := document.ParseType(docTypeName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pageLimit := req.PageLimit
	if pageLimit == 0 {
		pageLimit = s.cfg.Defaults.PageLimit
	}
	if pageLimit < 1 {
		writeError(w, http.StatusBadRequest, "page_limit must be at least 1")
		return
	}

	stopAt, ok := parseStopAt(req.StopAt)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown stop_at step")
		return
	}

	st, err := s.wf.Run(r.Context(), workflow.Request{
		Topic:     strings.TrimSpace(req.Topic),
		Type:      docType,
		PageLimit: pageLimit,
		StopAt:    stopAt,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec := &store.Record{ID: uuid.NewString(), State: st}
	if err := s.store.Put(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist workflow")
		return
	}

	writeJSON(w, http.StatusCreated, recordResponse(rec))
}

// loadRecord fetches a record and writes the error response itself when
// the lookup fails.
func (s *Server) loadRecord(w http.ResponseWriter, r *http.Request) (*store.Record, bool) {
	id := r.PathValue("id")
	if !store.ValidID(id) {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return nil, false
	}
	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to load document")
		}
		return nil, false
	}
	return rec, true
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, recordResponse(rec))
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	out := make([]WorkflowResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !store.ValidID(id) {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to delete document")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEditTitle(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}

	var req EditTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	rec.State.Title = title
	rec.State.UserEditedTitle = true
	if !rec.State.CurrentStep.HasTitle() {
		rec.State.CurrentStep = document.StepTitleGenerated
	}
	if rec.State.CurrentStep.HasContent() {
		rec.NeedsContentUpdate = true
	}

	if err := s.store.Put(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist workflow")
		return
	}
	writeJSON(w, http.StatusOK, recordResponse(rec))
}

func (s *Server) handleEditOutline(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}

	var req EditOutlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Outline) == 0 {
		writeError(w, http.StatusBadRequest, "outline must have at least one section")
		return
	}
	for _, sec := range req.Outline {
		if strings.TrimSpace(sec.Title) == "" {
			writeError(w, http.StatusBadRequest, "outline sections need a title")
			return
		}
	}

	hadContent := rec.State.CurrentStep.HasContent()
	rec.State.Outline = req.Outline
	rec.State.UserEditedOutline = true
	// Rolling the step back to the outline checkpoint lets regeneration
	// re-enter the content stage with the edited outline.
	rec.State.CurrentStep = document.StepOutlineGenerated
	if hadContent {
		rec.NeedsContentUpdate = true
	}

	if err := s.store.Put(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist workflow")
		return
	}
	writeJSON(w, http.StatusOK, recordResponse(rec))
}

func (s *Server) handleRegenerateContent(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}
	if len(rec.State.Outline) == 0 {
		writeError(w, http.StatusConflict, "workflow has no outline to generate content from")
		return
	}

	// Re-enter at the outline checkpoint with the stale content dropped,
	// so every section is regenerated against the current outline.
	initial := rec.State.Clone()
	initial.Content = nil
	initial.ErrorMessage = ""
	initial.CurrentStep = document.StepOutlineGenerated

	st, err := s.wf.Run(r.Context(), workflow.Request{Initial: initial})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec.State = st
	rec.NeedsContentUpdate = false
	if err := s.store.Put(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist workflow")
		return
	}
	writeJSON(w, http.StatusOK, recordResponse(rec))
}

func (s *Server) handleGenerateDocument(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}
	if !rec.State.ContentComplete() {
		writeError(w, http.StatusConflict, "content has not been generated yet")
		return
	}
	if rec.NeedsContentUpdate {
		writeError(w, http.StatusConflict, "content is stale, regenerate it first")
		return
	}

	data, ext, err := render.Document(rec.State)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render document")
		return
	}

	outDir := s.cfg.Server.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create output directory")
		return
	}

	mdPath := filepath.Join(outDir, rec.ID+"."+ext)
	if err := os.WriteFile(mdPath, data, 0o644); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to write document")
		return
	}

	resp := GenerateDocumentResponse{ID: rec.ID, FilePath: mdPath}
	if htmlData, err := render.HTML(rec.State.Title, data); err == nil {
		htmlPath := filepath.Join(outDir, rec.ID+".html")
		if err := os.WriteFile(htmlPath, htmlData, 0o644); err == nil {
			resp.HTMLFilePath = htmlPath
		}
	}

	rec.FilePath = mdPath
	if err := s.store.Put(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist workflow")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   version.Version,
		Timestamp: time.Now().UTC(),
	})
}
