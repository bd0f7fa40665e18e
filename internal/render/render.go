// Package render turns planned documents into output artifacts. The
// built-in renderers emit Markdown (one artifact per document) and an
// HTML export of that Markdown; binary formats can be added behind the
// same interfaces.
package render

import (
	"fmt"

	"git.home.luguber.info/inful/docgen/internal/document"
	"git.home.luguber.info/inful/docgen/internal/layout"
)

// DeckRenderer renders a planned slide deck.
type DeckRenderer interface {
	RenderDeck(deck layout.Deck) ([]byte, error)
	// Extension is the artifact file extension, without the dot.
	Extension() string
}

// PageRenderer renders the paper-style document.
type PageRenderer interface {
	RenderPages(st *document.State) ([]byte, error)
	Extension() string
}

// Document renders a completed state with the default Markdown renderers,
// returning the artifact bytes and its file extension.
func Document(st *document.State) ([]byte, string, error) {
	switch st.Type {
	case document.TypeSlide:
		deck := layout.BuildDeck(st)
		out, err := (MarkdownDeck{}).RenderDeck(deck)
		return out, "md", err
	case document.TypePaper:
		out, err := (MarkdownPages{}).RenderPages(st)
		return out, "md", err
	default:
		return nil, "", fmt.Errorf("unsupported document type %q", st.Type)
	}
}
