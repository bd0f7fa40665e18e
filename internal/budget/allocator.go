package budget

// reservedDeckPages is title page + table of contents + closing page on
// the slide path.
const reservedDeckPages = 3

// SlidePlan is the per-section slide quota for one deck, keyed by section
// title, with Order preserving outline order.
type SlidePlan struct {
	Order  []string
	Quotas map[string]int
	// Tight is set when the budget could not give every section its
	// baseline slide inside pageLimit; later sections then degrade to
	// overview-only or are omitted entirely during layout.
	Tight bool
}

// Allocate distributes the slide budget across sections. Every section
// receives a baseline of one slide; any surplus beyond the section count
// is handed out round-robin in outline order, so earlier sections always
// win ties. sectionTitles must be in outline order.
func Allocate(sectionTitles []string, pageLimit int) SlidePlan {
	plan := SlidePlan{
		Order:  append([]string(nil), sectionTitles...),
		Quotas: make(map[string]int, len(sectionTitles)),
	}
	if len(sectionTitles) == 0 {
		return plan
	}

	available := pageLimit - reservedDeckPages
	if available < len(sectionTitles) {
		available = len(sectionTitles)
		plan.Tight = true
	}

	for _, title := range sectionTitles {
		plan.Quotas[title] = 1
	}
	for extra := available - len(sectionTitles); extra > 0; extra-- {
		title := sectionTitles[(available-len(sectionTitles)-extra)%len(sectionTitles)]
		plan.Quotas[title]++
	}
	return plan
}

// Total returns the sum of all quotas.
func (p SlidePlan) Total() int {
	total := 0
	for _, q := range p.Quotas {
		total += q
	}
	return total
}
