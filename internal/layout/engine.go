// Package layout plans slide decks: it distributes section bodies over
// the allocated slide quotas and chooses a per-slide arrangement from the
// shape of the text. The planner produces a renderer-independent Deck;
// actual output formats live in the render package.
package layout

import (
	"strings"
	"unicode/utf8"
)

// BlockLayout is the arrangement chosen for one slide's content block.
type BlockLayout string

const (
	// LayoutCentered shows up to three lines as large centered text.
	LayoutCentered BlockLayout = "centered"
	// LayoutBullets is a single-column bulleted list of 4 to 10 lines.
	LayoutBullets BlockLayout = "bullets"
	// LayoutTwoColumn splits more than 10 lines at the midpoint.
	LayoutTwoColumn BlockLayout = "two_column"
)

// wrapThreshold is the soft line length limit in runes; longer lines are
// wrapped at sentence punctuation.
const wrapThreshold = 60

// minDetailBodyLength is the body size in runes under which a section gets
// no detail slides: the overview slide already covers it.
const minDetailBodyLength = 100

const (
	centeredMaxLines = 3
	bulletsMaxLines  = 10
)

// salienceKeywords mark lines that get emphasis styling on bullet slides.
var salienceKeywords = []string{"重要", "关键", "核心", "优势", "主要", "特点"}

// clauseBoundaries are the punctuation marks a long line may wrap after.
const clauseBoundaries = "。；，！？.;,!?"

// Line is one rendered row of slide text.
type Line struct {
	Text     string
	Emphasis bool
}

// Body is the laid-out content block of a single slide.
type Body struct {
	Layout BlockLayout
	Lines  []Line
	// Left and Right are populated instead of Lines for LayoutTwoColumn.
	Left, Right []Line
}

// SplitParagraphs breaks a body into paragraphs: blank-line boundaries
// first, single newlines as fallback, the whole body as a last resort.
// Never returns an empty slice for non-blank input.
func SplitParagraphs(body string) []string {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}

	var parts []string
	if strings.Contains(body, "\n\n") {
		parts = strings.Split(body, "\n\n")
	} else {
		parts = strings.Split(body, "\n")
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = append(out, body)
	}
	return out
}

// MergeParagraphs regroups paragraphs so at most limit groups remain,
// joining adjacent paragraphs with blank lines. The group count never
// exceeds limit.
func MergeParagraphs(paragraphs []string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	if len(paragraphs) <= limit {
		return paragraphs
	}

	perGroup := (len(paragraphs) + limit - 1) / limit
	merged := make([]string, 0, limit)
	for i := 0; i < len(paragraphs); i += perGroup {
		end := i + perGroup
		if end > len(paragraphs) {
			end = len(paragraphs)
		}
		merged = append(merged, strings.Join(paragraphs[i:end], "\n\n"))
	}
	return merged
}

// wrapLine soft-wraps a long line at clause boundaries, accumulating
// clauses until the threshold would be exceeded. Lines are never broken
// mid-word: a single clause over the threshold stays intact.
func wrapLine(line string) []string {
	if utf8.RuneCountInString(line) <= wrapThreshold {
		return []string{line}
	}

	var clauses []string
	var clause strings.Builder
	for _, r := range line {
		clause.WriteRune(r)
		if strings.ContainsRune(clauseBoundaries, r) {
			clauses = append(clauses, clause.String())
			clause.Reset()
		}
	}
	if clause.Len() > 0 {
		clauses = append(clauses, clause.String())
	}

	var out []string
	var current strings.Builder
	currentLen := 0
	for _, c := range clauses {
		n := utf8.RuneCountInString(c)
		if currentLen > 0 && currentLen+n >= wrapThreshold {
			out = append(out, current.String())
			current.Reset()
			currentLen = 0
		}
		current.WriteString(c)
		currentLen += n
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}

// stripBulletMarker removes a leading list marker so renderers control
// bullet styling themselves.
func stripBulletMarker(line string) string {
	for _, marker := range []string{"- ", "• ", "· ", "* ", "-", "•", "·", "*"} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker))
		}
	}
	return line
}

func isSalient(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range salienceKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// LayoutBlock arranges one slide's text block: lines are cleaned and
// soft-wrapped, then the layout is chosen from the resulting line count.
func LayoutBlock(block string) Body {
	var lines []Line
	for _, raw := range strings.Split(block, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		raw = stripBulletMarker(raw)
		for _, wrapped := range wrapLine(raw) {
			lines = append(lines, Line{Text: wrapped, Emphasis: isSalient(wrapped)})
		}
	}

	switch {
	case len(lines) <= centeredMaxLines:
		return Body{Layout: LayoutCentered, Lines: lines}
	case len(lines) <= bulletsMaxLines:
		return Body{Layout: LayoutBullets, Lines: lines}
	default:
		half := len(lines) / 2
		return Body{
			Layout: LayoutTwoColumn,
			Left:   lines[:half],
			Right:  lines[half:],
		}
	}
}
