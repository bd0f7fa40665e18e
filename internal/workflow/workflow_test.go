package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgen/internal/document"
	"git.home.luguber.info/inful/docgen/internal/generator"
	"git.home.luguber.info/inful/docgen/internal/synth"
)

// scriptedGenerator answers by prompt kind, so concurrent section calls
// stay deterministic regardless of scheduling order.
func scriptedGenerator(title, outlineJSON, sectionBody string) generator.TextGenerator {
	return generator.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "标题生成专家"):
			return title, nil
		case strings.Contains(prompt, "大纲设计专家"):
			return outlineJSON, nil
		default:
			return sectionBody, nil
		}
	})
}

const testOutlineJSON = `{
  "outline": [
    {"title": "基础概念", "content": ["定义与起源", "关键术语", "发展脉络"]},
    {"title": "核心技术", "content": ["算法原理", "系统架构", "工程实践"]},
    {"title": "应用与展望", "content": ["行业应用", "现存挑战", "未来方向"]}
  ],
  "estimated_pages": 10
}`

func longBody() string {
	return strings.Repeat("这里是详细的章节内容，围绕要点展开论述。", 20)
}

func TestRunHappyPath(t *testing.T) {
	gen := scriptedGenerator("人工智能技术全景", testOutlineJSON, longBody())
	w := New(gen)

	st, err := w.Run(context.Background(), Request{
		Topic:     "人工智能",
		Type:      document.TypeSlide,
		PageLimit: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, document.StepContentGenerated, st.CurrentStep)
	assert.Empty(t, st.ErrorMessage)
	assert.Equal(t, "人工智能技术全景", st.Title)
	require.Len(t, st.Outline, 3)
	assert.Equal(t, "基础概念", st.Outline[0].Title)
	assert.True(t, st.ContentComplete())
}

func TestRunFailingGeneratorStillProducesDocument(t *testing.T) {
	w := New(generator.Failing(errors.New("connection refused")))

	st, err := w.Run(context.Background(), Request{
		Topic:     "区块链",
		Type:      document.TypeSlide,
		PageLimit: 8,
	})
	require.NoError(t, err)

	// Every stage degraded to synthesized output, yet the result is a
	// complete, renderable document.
	assert.Equal(t, document.StepContentGeneratedError, st.CurrentStep)
	assert.NotEmpty(t, st.ErrorMessage)
	assert.Equal(t, synth.DefaultTitle("区块链"), st.Title)
	assert.NotEmpty(t, st.Outline)
	assert.True(t, st.ContentComplete())
}

func TestRunContentKeysMatchOutlineTitles(t *testing.T) {
	gen := scriptedGenerator("标题", testOutlineJSON, longBody())
	w := New(gen, WithSectionConcurrency(2))

	st, err := w.Run(context.Background(), Request{
		Topic:     "主题",
		Type:      document.TypePaper,
		PageLimit: 10,
	})
	require.NoError(t, err)

	require.Len(t, st.Content, len(st.Outline))
	for _, sec := range st.Outline {
		assert.Contains(t, st.Content, sec.Title)
		assert.NotEmpty(t, st.Content[sec.Title])
	}
}

func TestRunStopAtTitle(t *testing.T) {
	mock := generator.Fixed("机器学习纵览")
	w := New(mock)

	st, err := w.Run(context.Background(), Request{
		Topic:     "机器学习",
		Type:      document.TypeSlide,
		PageLimit: 10,
		StopAt:    document.StepTitleGenerated,
	})
	require.NoError(t, err)

	assert.Equal(t, document.StepTitleGenerated, st.CurrentStep)
	assert.Equal(t, "机器学习纵览", st.Title)
	assert.Empty(t, st.Outline)
	assert.Empty(t, st.Content)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRunStopAtOutline(t *testing.T) {
	gen := scriptedGenerator("标题", testOutlineJSON, longBody())
	w := New(gen)

	st, err := w.Run(context.Background(), Request{
		Topic:     "主题",
		Type:      document.TypeSlide,
		PageLimit: 10,
		StopAt:    document.StepOutlineGenerated,
	})
	require.NoError(t, err)

	assert.Equal(t, document.StepOutlineGenerated, st.CurrentStep)
	assert.NotEmpty(t, st.Outline)
	assert.Empty(t, st.Content)
}

func TestRunAlreadyAtStopStepIsIdempotent(t *testing.T) {
	mock := generator.Fixed("不应被调用")
	w := New(mock)

	initial := document.NewState("主题", document.TypeSlide, 10)
	initial.Title = "已有标题"
	initial.CurrentStep = document.StepTitleGenerated

	st, err := w.Run(context.Background(), Request{
		Topic:     "主题",
		Type:      document.TypeSlide,
		PageLimit: 10,
		Initial:   initial,
		StopAt:    document.StepTitleGenerated,
	})
	require.NoError(t, err)

	assert.Equal(t, "已有标题", st.Title)
	assert.Zero(t, mock.CallCount())
}

func TestRunResumeFromEditedOutline(t *testing.T) {
	var mu sync.Mutex
	var prompts []string
	gen := generator.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		mu.Lock()
		prompts = append(prompts, prompt)
		mu.Unlock()
		return longBody(), nil
	})
	w := New(gen, WithSectionConcurrency(1))

	initial := document.NewState("深度学习", document.TypeSlide, 10)
	initial.Title = "深度学习实践指南"
	initial.Outline = []document.Section{
		{Title: "编辑后的章节", Points: []string{"新要点"}},
		{Title: "保留的章节", Points: []string{"旧要点"}},
	}
	initial.UserEditedOutline = true
	initial.CurrentStep = document.StepOutlineGenerated

	st, err := w.Run(context.Background(), Request{
		Topic:     "深度学习",
		Type:      document.TypeSlide,
		PageLimit: 10,
		Initial:   initial,
	})
	require.NoError(t, err)

	// Only the content stage ran: one generator call per section, no
	// title or outline prompts.
	assert.Len(t, prompts, 2)
	for _, p := range prompts {
		assert.NotContains(t, p, "标题生成专家")
		assert.NotContains(t, p, "大纲设计专家")
	}
	assert.Equal(t, "深度学习实践指南", st.Title)
	assert.Equal(t, "编辑后的章节", st.Outline[0].Title)
	assert.True(t, st.ContentComplete())
}

func TestRunDoesNotMutateInitialState(t *testing.T) {
	gen := scriptedGenerator("标题", testOutlineJSON, longBody())
	w := New(gen)

	initial := document.NewState("主题", document.TypeSlide, 10)
	st, err := w.Run(context.Background(), Request{
		Topic:     "主题",
		Type:      document.TypeSlide,
		PageLimit: 10,
		Initial:   initial,
	})
	require.NoError(t, err)

	assert.Equal(t, document.StepStarted, initial.CurrentStep)
	assert.Empty(t, initial.Title)
	assert.Equal(t, document.StepContentGenerated, st.CurrentStep)
}

func TestRunOutlineTruncatedWhenEstimateOverLimit(t *testing.T) {
	outlineJSON := `{
	  "outline": [
	    {"title": "一", "content": ["要点"]},
	    {"title": "二", "content": ["要点"]},
	    {"title": "三", "content": ["要点"]},
	    {"title": "四", "content": ["要点"]},
	    {"title": "五", "content": ["要点"]},
	    {"title": "六", "content": ["要点"]}
	  ],
	  "estimated_pages": 20
	}`
	gen := scriptedGenerator("标题", outlineJSON, longBody())
	w := New(gen)

	st, err := w.Run(context.Background(), Request{
		Topic:     "主题",
		Type:      document.TypeSlide,
		PageLimit: 5,
		StopAt:    document.StepOutlineGenerated,
	})
	require.NoError(t, err)

	// max(2, 5-2) leading sections survive, in outline order.
	require.Len(t, st.Outline, 3)
	assert.Equal(t, "一", st.Outline[0].Title)
	assert.Equal(t, "三", st.Outline[2].Title)
}

func TestRunUnparsableOutlineFallsBackToDefault(t *testing.T) {
	gen := scriptedGenerator("标题", "抱歉，我无法生成大纲。", longBody())
	w := New(gen)

	st, err := w.Run(context.Background(), Request{
		Topic:     "主题",
		Type:      document.TypeSlide,
		PageLimit: 10,
		StopAt:    document.StepOutlineGenerated,
	})
	require.NoError(t, err)

	assert.Equal(t, document.StepOutlineGeneratedError, st.CurrentStep)
	assert.NotEmpty(t, st.ErrorMessage)
	assert.Equal(t, synth.Outline("主题", document.TypeSlide, 10), st.Outline)
}

func TestRunShortBodyRetriedOnceThenKept(t *testing.T) {
	short := strings.Repeat("短", 200)
	expanded := strings.Repeat("长", 400)

	var mu sync.Mutex
	contentCalls := 0
	gen := generator.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "太简短") {
			mu.Lock()
			contentCalls++
			mu.Unlock()
			return expanded, nil
		}
		return short, nil
	})
	w := New(gen, WithSectionConcurrency(1))

	initial := document.NewState("主题", document.TypeSlide, 10)
	initial.Title = "标题"
	initial.Outline = []document.Section{{Title: "唯一章节", Points: []string{"要点"}}}
	initial.CurrentStep = document.StepOutlineGenerated

	st, err := w.Run(context.Background(), Request{
		Topic:     "主题",
		Type:      document.TypeSlide,
		PageLimit: 10,
		Initial:   initial,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, contentCalls, "exactly one amplified retry")
	assert.Equal(t, expanded, st.Content["唯一章节"])
	assert.Equal(t, document.StepContentGenerated, st.CurrentStep)
}

func TestRunHopelesslyShortBodyUsesSynthesizedDefault(t *testing.T) {
	gen := generator.Fixed("太短")
	w := New(gen, WithSectionConcurrency(1))

	sec := document.Section{Title: "章节", Points: []string{"要点甲", "要点乙"}}
	initial := document.NewState("主题", document.TypeSlide, 10)
	initial.Title = "标题"
	initial.Outline = []document.Section{sec}
	initial.CurrentStep = document.StepOutlineGenerated

	st, err := w.Run(context.Background(), Request{
		Topic:     "主题",
		Type:      document.TypeSlide,
		PageLimit: 10,
		Initial:   initial,
	})
	require.NoError(t, err)

	assert.Equal(t, document.StepContentGeneratedError, st.CurrentStep)
	assert.Equal(t, synth.SectionBody(sec), st.Content["章节"])
	assert.NotEmpty(t, st.ErrorMessage)
}

func TestRunEmptyTitleSubstitutesDefault(t *testing.T) {
	gen := scriptedGenerator(`  "" `, testOutlineJSON, longBody())
	w := New(gen)

	st, err := w.Run(context.Background(), Request{
		Topic:     "边缘计算",
		Type:      document.TypeSlide,
		PageLimit: 10,
		StopAt:    document.StepTitleGenerated,
	})
	require.NoError(t, err)

	// The degraded step still carries the default title; stop_at matches
	// the stage, not the exact variant.
	assert.Equal(t, document.StepTitleGeneratedWithError, st.CurrentStep)
	assert.Equal(t, synth.DefaultTitle("边缘计算"), st.Title)
	assert.NotEmpty(t, st.ErrorMessage)
}

func TestRunRejectsInvalidRequest(t *testing.T) {
	w := New(generator.Fixed("x"))

	_, err := w.Run(context.Background(), Request{
		Topic:     "",
		Type:      document.TypeSlide,
		PageLimit: 10,
	})
	assert.Error(t, err)

	_, err = w.Run(context.Background(), Request{
		Topic:     "主题",
		Type:      document.TypeSlide,
		PageLimit: 0,
	})
	assert.Error(t, err)
}

func TestCleanTitle(t *testing.T) {
	cases := map[string]string{
		`"人工智能报告"`:       "人工智能报告",
		"'标题'":           "标题",
		"  空格标题  ":       "空格标题",
		"“中文引号标题”":       "中文引号标题",
		`  "嵌套 '引号' "  `: "嵌套 '引号'",
	}
	for input, want := range cases {
		assert.Equal(t, want, cleanTitle(input), "input %q", input)
	}
}
