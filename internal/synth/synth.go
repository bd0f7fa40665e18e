// Package synth is the deterministic fallback content source. It builds
// outlines and section bodies from the topic alone, without calling any
// generator, and is used whenever generation fails or produces unusable
// output. Same inputs always yield byte-identical output.
package synth

import (
	"strings"

	"git.home.luguber.info/inful/docgen/internal/budget"
	"git.home.luguber.info/inful/docgen/internal/document"
)

// DefaultTitle is the substitute title when generation yields nothing
// usable.
func DefaultTitle(topic string) string {
	return topic + "研究分析"
}

// catalogueEntry is one generic structural role a default section can play.
type catalogueEntry struct {
	title  string
	points []string
}

// The role catalogue is fixed: the first five entries form the extended
// outline, compactCatalogue and standardCatalogue cover the 3- and
// 4-section tiers, and extraCatalogue supplies supplementary roles once
// the section count exceeds five.
var (
	compactCatalogue = []catalogueEntry{
		{"主题概述", []string{"背景介绍", "核心问题", "研究方法", "主要目标"}},
		{"分析与讨论", []string{"关键发现", "重要观点", "数据解读", "案例分析", "比较研究"}},
		{"结论与建议", []string{"总结要点", "应用建议", "未来展望", "实践意义"}},
	}

	standardCatalogue = []catalogueEntry{
		{"概述与背景", []string{"主题概述", "背景信息", "研究意义", "核心问题"}},
		{"核心内容分析", []string{"关键要素", "主要观点", "数据分析", "理论基础", "方法论"}},
		{"应用与实践", []string{"实际应用场景", "实施方法", "案例分析", "效果评估", "优化建议"}},
		{"总结与展望", []string{"主要结论", "未来趋势", "建议与展望", "研究局限性"}},
	}

	extendedCatalogue = []catalogueEntry{
		{"引言与背景", []string{"研究背景", "主题重要性", "研究目的与范围"}},
		{"理论基础", []string{"核心概念定义", "相关理论综述", "研究方法论", "理论框架"}},
		{"现状分析", []string{"行业/领域现状", "关键问题与挑战", "案例研究", "数据分析"}},
		{"解决方案与实践", []string{"创新思路", "实施策略", "应用案例", "效果评估", "优化建议"}},
		{"总结与展望", []string{"研究结论", "主要贡献", "局限性", "未来研究方向", "政策或实践建议"}},
	}

	extraCatalogue = []catalogueEntry{
		{"对比研究", []string{"方法比较", "不同视角分析", "优缺点评估", "适用场景"}},
		{"技术实现", []string{"技术架构", "关键组件", "实现流程", "性能评估", "安全考虑"}},
		{"经济与社会影响", []string{"经济效益分析", "社会影响评估", "可持续性考量", "伦理问题讨论"}},
		{"用户研究", []string{"用户需求分析", "用户体验设计", "用户反馈与评估", "改进策略"}},
		{"前沿趋势", []string{"最新研究动态", "技术发展趋势", "创新方向", "未来应用场景"}},
	}
)

// Outline builds a complete default outline whose section count and
// points-per-section match the estimator's recommendation for the given
// inputs.
func Outline(topic string, docType document.Type, pageLimit int) []document.Section {
	b := budget.Estimate(docType, pageLimit)
	return OutlineForBudget(b)
}

// OutlineForBudget builds a default outline for an explicit budget.
func OutlineForBudget(b budget.Budget) []document.Section {
	var catalogue []catalogueEntry
	switch {
	case b.SectionCount >= 5:
		catalogue = append(append([]catalogueEntry(nil), extendedCatalogue...), extraCatalogue...)
	case b.SectionCount == 4:
		catalogue = standardCatalogue
	default:
		catalogue = compactCatalogue
	}

	count := b.SectionCount
	if count > len(catalogue) {
		count = len(catalogue)
	}

	outline := make([]document.Section, 0, count)
	for _, entry := range catalogue[:count] {
		points := entry.points
		if len(points) > b.PointsPerSection {
			points = points[:b.PointsPerSection]
		}
		outline = append(outline, document.Section{
			Title:  entry.title,
			Points: append([]string(nil), points...),
		})
	}
	return outline
}

// SectionBody produces a deterministic body for one section: an
// introductory sentence followed by one explanatory line per point.
// Always non-empty, even for an empty point list.
func SectionBody(section document.Section) string {
	var sb strings.Builder
	sb.WriteString("本章节主要介绍")
	sb.WriteString(section.Title)
	sb.WriteString("的核心内容。\n\n")
	for _, point := range section.Points {
		sb.WriteString("- ")
		sb.WriteString(point)
		sb.WriteString("：此部分将详细阐述相关内容。\n")
	}
	return sb.String()
}

// Content produces default bodies for every section of an outline.
func Content(outline []document.Section) map[string]string {
	content := make(map[string]string, len(outline))
	for _, sec := range outline {
		content[sec.Title] = SectionBody(sec)
	}
	return content
}
