package layout

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"git.home.luguber.info/inful/docgen/internal/budget"
	"git.home.luguber.info/inful/docgen/internal/document"
)

// SlideKind distinguishes the structural slide types of a deck.
type SlideKind string

const (
	SlideTitle    SlideKind = "title"
	SlideTOC      SlideKind = "toc"
	SlideOverview SlideKind = "overview"
	SlideDetail   SlideKind = "detail"
	SlideClosing  SlideKind = "closing"
)

// Slide is one planned deck page.
type Slide struct {
	Kind    SlideKind
	Heading string
	// Section is the owning outline section for overview/detail slides.
	Section string
	// Points carries raw outline points for TOC and overview slides.
	Points []string
	// Body is the laid-out content for detail slides.
	Body Body
}

// Deck is a complete planned slide deck.
type Deck struct {
	Title  string
	Slides []Slide
	// Degraded records that the page budget forced overview-only mode for
	// trailing sections.
	Degraded bool
	// Omitted lists sections that could not fit at all.
	Omitted []string
}

const closingText = "谢谢观看"

// BuildDeck plans a deck from a completed document state. The plan never
// exceeds the state's page limit: sections draw detail slides from their
// allocated quota, and once the global running count reaches the limit,
// trailing sections degrade to bare overview slides or are omitted.
func BuildDeck(st *document.State) Deck {
	deck := Deck{Title: st.Title}

	deck.Slides = append(deck.Slides, Slide{Kind: SlideTitle, Heading: st.Title})
	deck.Slides = append(deck.Slides, Slide{
		Kind:    SlideTOC,
		Heading: "目录",
		Points:  numberedTitles(st.Outline),
	})
	count := 2

	plan := budget.Allocate(st.SectionTitles(), st.PageLimit)

	for i, sec := range st.Outline {
		if count >= st.PageLimit {
			appendDegraded(&deck, st.Outline[i:], &count, st.PageLimit)
			break
		}

		// Overview slide, always first and always owed to the section.
		deck.Slides = append(deck.Slides, Slide{
			Kind:    SlideOverview,
			Heading: sec.Title,
			Section: sec.Title,
			Points:  append([]string(nil), sec.Points...),
		})
		count++
		sectionCount := 1

		body := strings.TrimSpace(st.Content[sec.Title])
		if body == "" {
			slog.Debug("Section has no content, overview only", "section", sec.Title)
			continue
		}
		if utf8.RuneCountInString(body) < minDetailBodyLength {
			continue
		}

		quota := plan.Quotas[sec.Title]
		remaining := quota - sectionCount
		if remaining <= 0 {
			continue
		}

		groups := MergeParagraphs(SplitParagraphs(body), remaining)
		for gi, group := range groups {
			if sectionCount >= quota || count >= st.PageLimit {
				break
			}
			heading := sec.Title
			if len(groups) > 1 {
				heading = fmt.Sprintf("%s (%d/%d)", sec.Title, gi+1, len(groups))
			}
			deck.Slides = append(deck.Slides, Slide{
				Kind:    SlideDetail,
				Heading: heading,
				Section: sec.Title,
				Body:    LayoutBlock(group),
			})
			count++
			sectionCount++
		}
	}

	if count < st.PageLimit {
		deck.Slides = append(deck.Slides, Slide{Kind: SlideClosing, Heading: closingText})
	}

	return deck
}

// appendDegraded emits bare overview slides for sections that missed the
// budget, until even those no longer fit.
func appendDegraded(deck *Deck, sections []document.Section, count *int, pageLimit int) {
	deck.Degraded = true
	for _, sec := range sections {
		if *count >= pageLimit {
			slog.Warn("Page limit reached, omitting section", "section", sec.Title)
			deck.Omitted = append(deck.Omitted, sec.Title)
			continue
		}
		deck.Slides = append(deck.Slides, Slide{
			Kind:    SlideOverview,
			Heading: sec.Title,
			Section: sec.Title,
			Points:  append([]string(nil), sec.Points...),
		})
		*count++
	}
}

func numberedTitles(outline []document.Section) []string {
	out := make([]string, len(outline))
	for i, sec := range outline {
		out[i] = fmt.Sprintf("%d. %s", i+1, sec.Title)
	}
	return out
}
