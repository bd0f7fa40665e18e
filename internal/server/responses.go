package server

import (
	"time"

	"git.home.luguber.info/inful/docgen/internal/document"
)

// CreateWorkflowRequest starts a new document workflow.
type CreateWorkflowRequest struct {
	Topic        string `json:"topic"`
	DocumentType string `json:"document_type,omitempty"`
	PageLimit    int    `json:"page_limit,omitempty"`
	// StopAt halts the workflow once the named step is reached, for
	// title-only or outline-only runs.
	StopAt string `json:"stop_at,omitempty"`
}

// EditTitleRequest replaces the generated title.
type EditTitleRequest struct {
	Title string `json:"title"`
}

// EditOutlineRequest replaces the generated outline.
type EditOutlineRequest struct {
	Outline []document.Section `json:"outline"`
}

// WorkflowResponse is the API view of a stored workflow record.
type WorkflowResponse struct {
	ID                 string          `json:"id"`
	State              *document.State `json:"state"`
	NeedsContentUpdate bool            `json:"needs_content_update"`
	FilePath           string          `json:"file_path,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// GenerateDocumentResponse reports the rendered artifact paths.
type GenerateDocumentResponse struct {
	ID           string `json:"id"`
	FilePath     string `json:"file_path"`
	HTMLFilePath string `json:"html_file_path,omitempty"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse carries a machine-readable error message.
type ErrorResponse struct {
	Error string `json:"error"`
}
