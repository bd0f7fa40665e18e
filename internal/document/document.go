// Package document holds the shared domain model for the generation
// workflow: document types, workflow steps, outline sections, and the
// mutable DocumentState threaded through the pipeline.
package document

import (
	"fmt"
	"strings"
)

// Type distinguishes the two rendering paths. Slide pages hold far less
// text than paper pages, so budget constants differ per type.
type Type string

const (
	TypeSlide Type = "slide"
	TypePaper Type = "paper"
)

// ParseType normalizes a user-supplied document type string. The original
// API accepted "ppt" and "word"; those aliases are kept.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "slide", "ppt", "pptx":
		return TypeSlide, nil
	case "paper", "word", "doc", "docx":
		return TypePaper, nil
	default:
		return "", fmt.Errorf("unsupported document type %q", s)
	}
}

// Step identifies how far a workflow run has progressed. Steps advance
// monotonically; the *_with_error variants record that the stage completed
// on fallback output. WorkflowFailed is terminal.
type Step string

const (
	StepStarted                 Step = "started"
	StepTitleGenerated          Step = "title_generated"
	StepTitleGeneratedWithError Step = "title_generated_with_error"
	StepOutlineGenerated        Step = "outline_generated"
	StepOutlineGeneratedError   Step = "outline_generated_with_error"
	StepContentGenerated        Step = "content_generated"
	StepContentGeneratedError   Step = "content_generated_with_error"
	StepWorkflowFailed          Step = "workflow_failed"
)

// HasTitle reports whether the step implies a title exists.
func (s Step) HasTitle() bool {
	switch s {
	case StepTitleGenerated, StepTitleGeneratedWithError,
		StepOutlineGenerated, StepOutlineGeneratedError,
		StepContentGenerated, StepContentGeneratedError:
		return true
	}
	return false
}

// HasOutline reports whether the step implies an outline exists.
func (s Step) HasOutline() bool {
	switch s {
	case StepOutlineGenerated, StepOutlineGeneratedError,
		StepContentGenerated, StepContentGeneratedError:
		return true
	}
	return false
}

// HasContent reports whether the step implies section content exists.
func (s Step) HasContent() bool {
	return s == StepContentGenerated || s == StepContentGeneratedError
}

// Section is one titled grouping of outline points. It becomes a document
// chapter on the paper path or a cluster of slides on the slide path.
type Section struct {
	Title  string   `json:"title" yaml:"title"`
	Points []string `json:"content" yaml:"content"`
}

// Clone returns a deep copy.
func (s Section) Clone() Section {
	points := make([]string, len(s.Points))
	copy(points, s.Points)
	return Section{Title: s.Title, Points: points}
}

// State is the single mutable record threaded through a workflow run.
// It is owned by exactly one workflow invocation and never shared across
// concurrent runs.
type State struct {
	// Inputs, immutable once the workflow starts.
	Topic     string `json:"topic"`
	Type      Type   `json:"document_type"`
	PageLimit int    `json:"page_limit"`

	// Progress.
	CurrentStep  Step   `json:"current_step"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Generated content.
	Title   string            `json:"title,omitempty"`
	Outline []Section         `json:"outline,omitempty"`
	Content map[string]string `json:"content,omitempty"`

	// Once set, regeneration must treat the edited field as authoritative.
	UserEditedTitle   bool `json:"user_edited_title"`
	UserEditedOutline bool `json:"user_edited_outline"`
}

// NewState builds a fresh state at StepStarted.
func NewState(topic string, docType Type, pageLimit int) *State {
	return &State{
		Topic:       topic,
		Type:        docType,
		PageLimit:   pageLimit,
		CurrentStep: StepStarted,
	}
}

// Clone returns a deep copy of the state.
func (st *State) Clone() *State {
	out := *st
	if st.Outline != nil {
		out.Outline = make([]Section, len(st.Outline))
		for i, sec := range st.Outline {
			out.Outline[i] = sec.Clone()
		}
	}
	if st.Content != nil {
		out.Content = make(map[string]string, len(st.Content))
		for k, v := range st.Content {
			out.Content[k] = v
		}
	}
	return &out
}

// SectionTitles returns the outline titles in outline order.
func (st *State) SectionTitles() []string {
	titles := make([]string, len(st.Outline))
	for i, sec := range st.Outline {
		titles[i] = sec.Title
	}
	return titles
}

// ContentComplete reports whether the content map covers exactly the
// outline's title set: no orphans, no omissions, no empty bodies.
func (st *State) ContentComplete() bool {
	if st.Content == nil || len(st.Content) != len(st.Outline) {
		return false
	}
	for _, sec := range st.Outline {
		if strings.TrimSpace(st.Content[sec.Title]) == "" {
			return false
		}
	}
	return true
}

// RecordError appends a non-fatal error message without blocking
// progression. Multiple messages are joined with "; ".
func (st *State) RecordError(msg string) {
	if msg == "" {
		return
	}
	if st.ErrorMessage == "" {
		st.ErrorMessage = msg
		return
	}
	st.ErrorMessage = st.ErrorMessage + "; " + msg
}

// Validate checks the immutable inputs.
func (st *State) Validate() error {
	if strings.TrimSpace(st.Topic) == "" {
		return fmt.Errorf("topic must not be empty")
	}
	if st.PageLimit < 1 {
		return fmt.Errorf("page limit must be at least 1, got %d", st.PageLimit)
	}
	if st.Type != TypeSlide && st.Type != TypePaper {
		return fmt.Errorf("unsupported document type %q", st.Type)
	}
	return nil
}
