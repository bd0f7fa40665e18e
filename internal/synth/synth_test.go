package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgen/internal/budget"
	"git.home.luguber.info/inful/docgen/internal/document"
)

func TestOutlineMatchesEstimator(t *testing.T) {
	for _, docType := range []document.Type{document.TypeSlide, document.TypePaper} {
		for limit := 1; limit <= 40; limit++ {
			b := budget.Estimate(docType, limit)
			outline := Outline("区块链", docType, limit)
			require.Len(t, outline, b.SectionCount, "type=%s limit=%d", docType, limit)
			for _, sec := range outline {
				assert.NotEmpty(t, sec.Title)
				assert.NotEmpty(t, sec.Points)
				assert.LessOrEqual(t, len(sec.Points), b.PointsPerSection)
			}
		}
	}
}

func TestOutlineDeterministic(t *testing.T) {
	a := Outline("强化学习", document.TypeSlide, 12)
	b := Outline("强化学习", document.TypeSlide, 12)
	require.Equal(t, a, b)
}

func TestOutlineTiers(t *testing.T) {
	compact := OutlineForBudget(budget.Budget{SectionCount: 3, PointsPerSection: 3})
	require.Len(t, compact, 3)
	assert.Equal(t, "主题概述", compact[0].Title)

	standard := OutlineForBudget(budget.Budget{SectionCount: 4, PointsPerSection: 4})
	require.Len(t, standard, 4)
	assert.Equal(t, "概述与背景", standard[0].Title)

	extended := OutlineForBudget(budget.Budget{SectionCount: 7, PointsPerSection: 5})
	require.Len(t, extended, 7)
	assert.Equal(t, "引言与背景", extended[0].Title)
	// Supplementary roles follow the extended five.
	assert.Equal(t, "对比研究", extended[5].Title)
	assert.Equal(t, "技术实现", extended[6].Title)
}

func TestSectionBodyNonEmptyAndDeterministic(t *testing.T) {
	sec := document.Section{Title: "理论基础", Points: []string{"核心概念定义", "理论框架"}}
	body := SectionBody(sec)
	assert.Contains(t, body, "理论基础")
	assert.Contains(t, body, "核心概念定义")
	assert.Equal(t, body, SectionBody(sec))

	empty := SectionBody(document.Section{Title: "附录"})
	assert.NotEmpty(t, empty)
}

func TestContentCoversOutline(t *testing.T) {
	outline := Outline("微服务架构", document.TypePaper, 15)
	content := Content(outline)
	require.Len(t, content, len(outline))
	for _, sec := range outline {
		assert.NotEmpty(t, content[sec.Title])
	}
}
