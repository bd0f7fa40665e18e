package render

import (
	"strings"

	"git.home.luguber.info/inful/docgen/internal/layout"
)

// MarkdownDeck renders a planned deck as Marp-style Markdown: one slide
// per "---"-separated block.
type MarkdownDeck struct{}

func (MarkdownDeck) Extension() string { return "md" }

func (MarkdownDeck) RenderDeck(deck layout.Deck) ([]byte, error) {
	var sb strings.Builder

	for i, slide := range deck.Slides {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		writeSlide(&sb, slide)
	}

	return []byte(sb.String()), nil
}

func writeSlide(sb *strings.Builder, slide layout.Slide) {
	switch slide.Kind {
	case layout.SlideTitle:
		sb.WriteString("# " + slide.Heading + "\n\n专业报告\n")
	case layout.SlideTOC:
		sb.WriteString("## " + slide.Heading + "\n\n")
		for _, p := range slide.Points {
			sb.WriteString(p + "\n")
		}
	case layout.SlideOverview:
		sb.WriteString("## " + slide.Heading + "\n\n章节要点\n\n")
		for _, p := range slide.Points {
			sb.WriteString("- " + p + "\n")
		}
	case layout.SlideDetail:
		sb.WriteString("## " + slide.Heading + "\n\n")
		writeBody(sb, slide.Body)
	case layout.SlideClosing:
		sb.WriteString("# " + slide.Heading + "\n")
	}
}

func writeBody(sb *strings.Builder, body layout.Body) {
	switch body.Layout {
	case layout.LayoutCentered:
		for _, line := range body.Lines {
			sb.WriteString("**" + line.Text + "**\n\n")
		}
	case layout.LayoutBullets:
		writeBullets(sb, body.Lines)
	case layout.LayoutTwoColumn:
		writeBullets(sb, body.Left)
		sb.WriteString("\n")
		writeBullets(sb, body.Right)
	}
}

func writeBullets(sb *strings.Builder, lines []layout.Line) {
	for _, line := range lines {
		if line.Emphasis {
			sb.WriteString("- **" + line.Text + "**\n")
			continue
		}
		sb.WriteString("- " + line.Text + "\n")
	}
}
