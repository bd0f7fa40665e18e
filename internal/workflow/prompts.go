package workflow

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docgen/internal/budget"
	"git.home.luguber.info/inful/docgen/internal/document"
)

// The prompt text is part of the behavioral contract with the upstream
// model and is kept in the original Chinese.

func typeLabel(t document.Type) string {
	if t == document.TypePaper {
		return "WORD"
	}
	return "PPT"
}

func titlePrompt(topic string, docType document.Type) string {
	var b strings.Builder
	b.WriteString("你是一个专业的标题生成专家。你能根据用户提供的主题，生成简洁、专业且吸引人的标题。\n\n")
	fmt.Fprintf(&b, "请为以下主题生成一个简洁、吸引人且专业的%s文档标题:\n\n", typeLabel(docType))
	fmt.Fprintf(&b, "主题: %s\n\n", topic)
	b.WriteString("要求:\n")
	b.WriteString("1. 标题应该简洁明了，不超过20个字\n")
	b.WriteString("2. 标题应该能准确反映主题的核心内容\n")
	b.WriteString("3. 标题应该吸引读者的兴趣\n")
	b.WriteString("4. 只需要返回标题文本，不需要其他说明\n")
	return b.String()
}

// topicGuidance returns extra outline instructions for topics the original
// authors tuned by hand; all other topics get a generic depth reminder.
func topicGuidance(topic string) string {
	lower := strings.ToLower(topic)
	switch {
	case strings.Contains(topic, "强化学习") || strings.Contains(lower, "reinforcement learning"):
		return "请确保大纲涵盖强化学习的关键方面:\n" +
			"- 强化学习基本概念和理论基础\n" +
			"- 经典算法\n" +
			"- 深度强化学习方法\n" +
			"- 实际应用案例\n" +
			"- 当前研究热点和挑战\n"
	case strings.Contains(topic, "机器学习") || strings.Contains(lower, "machine learning"):
		return "请确保大纲涵盖机器学习的关键方面:\n" +
			"- 监督、无监督和半监督学习基本概念\n" +
			"- 经典算法\n" +
			"- 神经网络和深度学习基础\n" +
			"- 实际应用场景和案例分析\n" +
			"- 模型评估方法和最佳实践\n"
	default:
		return fmt.Sprintf("请为%s主题创建专业、详细的大纲，确保内容全面且深入，\n"+
			"使用与主题相关的具体专业术语和概念。每个章节有3-5个具体内容要点。\n", topic)
	}
}

const outlineFormatInstructions = `请以JSON格式返回结果，不要附加任何其他文字:
{
  "outline": [
    {"title": "章节标题", "content": ["要点1", "要点2", "要点3"]}
  ],
  "estimated_pages": 10
}`

func outlinePrompt(topic, title string, docType document.Type, pageLimit int, b budget.Budget) string {
	var sb strings.Builder
	sb.WriteString("你是一个专业的文档大纲设计专家。你能根据用户提供的主题和标题，生成结构清晰、内容全面的文档大纲。\n\n")
	fmt.Fprintf(&sb, "请为以下标题生成一个%s文档的详细大纲，页数限制为%d页:\n\n", typeLabel(docType), pageLimit)
	fmt.Fprintf(&sb, "标题: %s\n主题: %s\n\n", title, topic)
	sb.WriteString(topicGuidance(topic))
	sb.WriteString("\n大纲结构要求:\n")
	sb.WriteString("1. 标题页和目录页将占用2页\n")
	fmt.Fprintf(&sb, "2. 根据%d页的限制，应该生成约%d个章节\n", pageLimit, b.SectionCount)
	fmt.Fprintf(&sb, "3. 每个章节包含%d个左右的内容要点\n", b.PointsPerSection)
	sb.WriteString("4. 每个章节标题必须与主题紧密相关\n")
	sb.WriteString("5. 章节标题应该简洁明了，反映该部分的核心内容\n")
	sb.WriteString("6. 章节要点应该具体、专业，不要使用通用占位符\n\n")
	sb.WriteString(outlineFormatInstructions)
	return sb.String()
}

func contentPrompt(title, topic string, sec document.Section, docType document.Type, b budget.Budget) string {
	var points strings.Builder
	for _, p := range sec.Points {
		fmt.Fprintf(&points, "- %s\n", p)
	}

	var formatGuide string
	if docType == document.TypeSlide {
		formatGuide = "PPT内容格式要求:\n" +
			"1. 内容精炼，适合双栏布局展示\n" +
			"2. 使用要点式表达，每行控制在50-60个字符\n" +
			"3. 每个要点用完整的句子表达关键信息\n" +
			"4. 使用破折号(-)或短横线开始每个要点\n" +
			"5. 重要概念使用单独的行展示\n" +
			"6. 段落之间用空行分隔，改善PPT排版\n"
	} else {
		formatGuide = "Word文档格式要求:\n" +
			"1. 内容应详细、全面，使用完整段落\n" +
			"2. 每个要点展开为2-3个段落\n" +
			"3. 可以使用小标题来区分不同部分\n" +
			"4. 段落之间用空行分隔，便于排版\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "请为以下文档章节生成专业的内容，适用于%s:\n\n", typeLabel(docType))
	fmt.Fprintf(&sb, "文档标题: %s\n文档主题: %s\n章节标题: %s\n\n", title, topic, sec.Title)
	fmt.Fprintf(&sb, "章节要点:\n%s\n", points.String())
	fmt.Fprintf(&sb, "本章节'%s'是关于'%s'和'%s'的重要组成部分。\n", sec.Title, title, topic)
	fmt.Fprintf(&sb, "请确保内容紧密围绕章节标题'%s'和上述具体要点展开，不要偏离主题。\n", sec.Title)
	fmt.Fprintf(&sb, "每个要点都应得到充分解释，并且内容必须与总主题'%s'保持一致。\n\n", title)
	sb.WriteString(formatGuide)
	fmt.Fprintf(&sb, "\n内容长度控制在约%d字左右。\n\n", b.CharsPerSection)
	sb.WriteString("内容要求:\n")
	sb.WriteString("1. 内容必须高度相关，准确解释章节标题下的每个要点\n")
	sb.WriteString("2. 使用专业、清晰的语言，引用相关概念和术语\n")
	sb.WriteString("3. 内容应该连贯、有逻辑性，避免重复\n")
	sb.WriteString("4. 确保内容具有教育价值和信息量\n")
	fmt.Fprintf(&sb, "5. 生成至少%d字符的内容\n", b.MinBodyLength)
	sb.WriteString("6. 不要添加额外的引言或总结，直接开始核心内容\n\n")
	sb.WriteString("请直接返回生成的内容，不要包含额外的说明或标记。\n")
	return sb.String()
}

// expandPrompt asks for an amplified rewrite of a body that came back too
// short. Issued at most once per section.
func expandPrompt(previous string, minLength int) string {
	var sb strings.Builder
	sb.WriteString("你生成的内容太简短。请扩展并丰富以下内容，使其更加详细和专业：\n\n")
	sb.WriteString(previous)
	sb.WriteString("\n\n请确保扩展后的内容:\n")
	sb.WriteString("1. 详细解释每个要点\n")
	sb.WriteString("2. 使用专业术语和概念\n")
	sb.WriteString("3. 提供具体的例子或应用场景\n")
	fmt.Fprintf(&sb, "4. 长度至少%d字符\n", minLength)
	return sb.String()
}
