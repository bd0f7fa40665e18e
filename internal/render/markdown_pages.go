package render

import (
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docgen/internal/document"
	"git.home.luguber.info/inful/docgen/internal/layout"
)

// MarkdownPages renders the paper-style document: title, table of
// contents, then one numbered chapter per section with its point summary
// and detail paragraphs.
type MarkdownPages struct{}

func (MarkdownPages) Extension() string { return "md" }

func (MarkdownPages) RenderPages(st *document.State) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("# " + st.Title + "\n\n")

	sb.WriteString("## 目录\n\n")
	for i, sec := range st.Outline {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, sec.Title)
	}
	sb.WriteString("\n")

	for i, sec := range st.Outline {
		fmt.Fprintf(&sb, "## %d. %s\n\n", i+1, sec.Title)

		sb.WriteString("**章节概要:**\n\n")
		for _, p := range sec.Points {
			sb.WriteString("- " + p + "\n")
		}
		sb.WriteString("\n")

		body := strings.TrimSpace(st.Content[sec.Title])
		if body == "" {
			continue
		}

		sb.WriteString("**详细内容:**\n\n")
		for _, para := range layout.SplitParagraphs(stripInlineMarkup(body)) {
			if bullet, ok := bulletText(para); ok {
				sb.WriteString("- " + bullet + "\n\n")
				continue
			}
			sb.WriteString(para + "\n\n")
		}
	}

	return []byte(sb.String()), nil
}

var (
	headingMarkRe = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	boldMarkRe    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicMarkRe  = regexp.MustCompile(`\*(.*?)\*`)
	codeMarkRe    = regexp.MustCompile("`(.*?)`")
	bulletMarkRe  = regexp.MustCompile(`^[-*•]\s+`)
)

// stripInlineMarkup removes Markdown the generator may have emitted, so
// the chapter body reads as plain prose under this renderer's own
// structure.
func stripInlineMarkup(s string) string {
	s = headingMarkRe.ReplaceAllString(s, "")
	s = boldMarkRe.ReplaceAllString(s, "$1")
	s = italicMarkRe.ReplaceAllString(s, "$1")
	s = codeMarkRe.ReplaceAllString(s, "$1")
	return s
}

// bulletText reports whether a paragraph is a list item and returns it
// without the marker.
func bulletText(para string) (string, bool) {
	trimmed := strings.TrimSpace(para)
	if bulletMarkRe.MatchString(trimmed) {
		return bulletMarkRe.ReplaceAllString(trimmed, ""), true
	}
	return "", false
}
