// Package budget contains the pure page-budget arithmetic: the content
// budget estimator that sizes outlines for a page limit, and the slide
// allocator that distributes a fixed slide budget across sections.
package budget

import (
	"git.home.luguber.info/inful/docgen/internal/document"
)

// Budget is the estimator's recommendation for a page limit.
type Budget struct {
	SectionCount     int // number of outline sections
	PointsPerSection int // outline points per section
	CharsPerSection  int // soft target length for one section body
	MinBodyLength    int // acceptance threshold for generated bodies
}

// reservedFrontPages is the title page plus the table of contents.
const reservedFrontPages = 2

// maxSections caps outline growth regardless of page limit.
const maxSections = 10

// typeParams holds the per-type breakpoints of the step function. The
// breakpoints are hand-tuned values carried over as literal constants;
// they are the contract, not a derived formula.
type typeParams struct {
	smallMax, smallCount   int // available <= smallMax  -> smallCount sections
	mediumMax, mediumCount int // available <= mediumMax -> mediumCount sections
	growDivisor            int // beyond mediumMax: mediumCount+1 + (available-mediumMax)/growDivisor
	pointsFourAbove        int // available above this -> 4 points
	pointsFiveAbove        int // available above this -> 5 points
	charsPerPage           int // rough body characters one page holds
	minBodyLength          int
}

var slideParams = typeParams{
	smallMax: 5, smallCount: 3,
	mediumMax: 10, mediumCount: 4,
	growDivisor:     3,
	pointsFourAbove: 8,
	pointsFiveAbove: 15,
	charsPerPage:    250,
	minBodyLength:   300,
}

var paperParams = typeParams{
	smallMax: 4, smallCount: 3,
	mediumMax: 8, mediumCount: 4,
	growDivisor:     4,
	pointsFourAbove: 6,
	pointsFiveAbove: 12,
	charsPerPage:    500,
	minBodyLength:   600,
}

// Estimate maps (pageLimit, documentType) to a content budget. Pure: the
// same inputs always yield the same output, and the result never has zero
// sections or zero points.
func Estimate(docType document.Type, pageLimit int) Budget {
	p := slideParams
	if docType == document.TypePaper {
		p = paperParams
	}

	available := pageLimit - reservedFrontPages
	if available < 3 {
		available = 3
	}

	var sections int
	switch {
	case available <= p.smallMax:
		sections = p.smallCount
	case available <= p.mediumMax:
		sections = p.mediumCount
	default:
		sections = p.mediumCount + 1 + (available-p.mediumMax)/p.growDivisor
		if sections > maxSections {
			sections = maxSections
		}
	}

	points := 3
	if available > p.pointsFourAbove {
		points = 4
	}
	if available > p.pointsFiveAbove {
		points = 5
	}

	chars := (pageLimit - reservedFrontPages) * p.charsPerPage / 5
	if chars < p.charsPerPage {
		chars = p.charsPerPage
	}

	return Budget{
		SectionCount:     sections,
		PointsPerSection: points,
		CharsPerSection:  chars,
		MinBodyLength:    p.minBodyLength,
	}
}

// MaxOutlineSections returns the hard cap applied when a generated outline
// would exceed the page limit: later sections beyond this count are
// dropped, preserving outline order.
func MaxOutlineSections(pageLimit int) int {
	n := pageLimit - reservedFrontPages
	if n < 2 {
		n = 2
	}
	return n
}
