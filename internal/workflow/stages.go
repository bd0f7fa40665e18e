package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/docgen/internal/budget"
	"git.home.luguber.info/inful/docgen/internal/document"
	"git.home.luguber.info/inful/docgen/internal/metrics"
	"git.home.luguber.info/inful/docgen/internal/synth"
)

// cleanTitle strips whitespace and stray quoting from a raw completion.
func cleanTitle(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"'`)
	s = strings.Trim(s, "“”‘’「」")
	return strings.TrimSpace(s)
}

func (w *Workflow) runTitle(ctx context.Context, st *document.State) {
	start := time.Now()
	defer func() { w.recorder.ObserveStageDuration("title", time.Since(start)) }()

	raw, err := w.gen.Generate(ctx, titlePrompt(st.Topic, st.Type))
	if err != nil {
		slog.Warn("Title generation failed, using default", "topic", st.Topic, "error", err)
		st.Title = synth.DefaultTitle(st.Topic)
		st.RecordError("生成标题时出错: " + err.Error())
		st.CurrentStep = document.StepTitleGeneratedWithError
		w.recorder.IncStageOutcome("title", metrics.OutcomeFailed)
		return
	}

	title := cleanTitle(raw)
	if title == "" {
		st.Title = synth.DefaultTitle(st.Topic)
		st.RecordError("生成的标题为空，已使用默认标题")
		st.CurrentStep = document.StepTitleGeneratedWithError
		w.recorder.IncStageOutcome("title", metrics.OutcomeDegraded)
		return
	}

	slog.Debug("Title generated", "title", title)
	st.Title = title
	st.CurrentStep = document.StepTitleGenerated
	w.recorder.IncStageOutcome("title", metrics.OutcomeSucceeded)
}

func (w *Workflow) runOutline(ctx context.Context, st *document.State) {
	start := time.Now()
	defer func() { w.recorder.ObserveStageDuration("outline", time.Since(start)) }()

	b := budget.Estimate(st.Type, st.PageLimit)

	raw, err := w.gen.Generate(ctx, outlinePrompt(st.Topic, st.Title, st.Type, st.PageLimit, b))
	if err != nil {
		slog.Warn("Outline generation failed, using default", "topic", st.Topic, "error", err)
		st.Outline = synth.OutlineForBudget(b)
		st.RecordError("生成大纲时出错: " + err.Error())
		st.CurrentStep = document.StepOutlineGeneratedError
		w.recorder.IncStageOutcome("outline", metrics.OutcomeFailed)
		return
	}

	parsed, estimatedPages, perr := parseOutline(raw)
	if perr != nil {
		slog.Warn("Outline response unusable, using default", "topic", st.Topic, "error", perr)
		st.Outline = synth.OutlineForBudget(b)
		st.RecordError("生成大纲时出错: " + perr.Error())
		st.CurrentStep = document.StepOutlineGeneratedError
		w.recorder.IncStageOutcome("outline", metrics.OutcomeDegraded)
		return
	}

	outline := normalizeOutline(parsed, st.Topic)

	// The model's own page estimate over the limit means the outline is
	// too ambitious: keep the leading sections, drop the rest.
	if estimatedPages > st.PageLimit {
		if limit := budget.MaxOutlineSections(st.PageLimit); len(outline) > limit {
			slog.Debug("Truncating outline over page budget",
				"sections", len(outline),
				"limit", limit,
				"estimated_pages", estimatedPages)
			outline = outline[:limit]
		}
	}

	slog.Debug("Outline generated", "sections", len(outline))
	st.Outline = outline
	st.CurrentStep = document.StepOutlineGenerated
	w.recorder.IncStageOutcome("outline", metrics.OutcomeSucceeded)
}

func (w *Workflow) runContent(ctx context.Context, st *document.State) {
	start := time.Now()
	defer func() { w.recorder.ObserveStageDuration("content", time.Since(start)) }()

	b := budget.Estimate(st.Type, st.PageLimit)

	if len(st.Outline) == 0 {
		st.Outline = synth.OutlineForBudget(b)
		st.RecordError("缺少大纲，已使用默认大纲")
	}

	slog.Info("Generating section content",
		"title", st.Title,
		"sections", len(st.Outline),
		"concurrency", w.concurrency)
	w.recorder.SetSectionConcurrency(w.concurrency)

	gate := ContentQualityGate{MinLength: b.MinBodyLength}

	// Sections are independent; generate them concurrently with a bounded
	// semaphore. Each goroutine writes a disjoint key of the content map
	// under the mutex.
	content := make(map[string]string, len(st.Outline))
	failed := 0
	sem := make(chan struct{}, w.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, sec := range st.Outline {
		wg.Add(1)
		go func(sec document.Section) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			secStart := time.Now()
			body, err := w.generateSectionBody(ctx, st, sec, b, gate)
			w.recorder.ObserveSectionDuration(time.Since(secStart), err == nil)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("Section content failed, using default",
					"section", sec.Title, "error", err)
				content[sec.Title] = synth.SectionBody(sec)
				failed++
				return
			}
			content[sec.Title] = body
		}(sec)
	}
	wg.Wait()

	st.Content = content
	if failed > 0 {
		st.RecordError(fmt.Sprintf("%d个章节内容生成失败", failed))
		st.CurrentStep = document.StepContentGeneratedError
		w.recorder.IncStageOutcome("content", metrics.OutcomeDegraded)
		return
	}
	st.CurrentStep = document.StepContentGenerated
	w.recorder.IncStageOutcome("content", metrics.OutcomeSucceeded)
}

// errBodyTooShort marks a section whose generated body stayed under half
// the acceptance threshold even after the amplified retry.
var errBodyTooShort = errors.New("generated body too short")

// generateSectionBody produces one section's body, applying the quality
// gate: a body under the threshold is regenerated exactly once with an
// amplified prompt, and the surviving attempt is discarded only when it
// is under half the threshold.
func (w *Workflow) generateSectionBody(ctx context.Context, st *document.State, sec document.Section, b budget.Budget, gate ContentQualityGate) (string, error) {
	first, err := w.gen.Generate(ctx, contentPrompt(st.Title, st.Topic, sec, st.Type, b))
	if err != nil {
		return "", err
	}
	first = strings.TrimSpace(first)
	if gate.Acceptable(first) {
		return first, nil
	}

	slog.Debug("Section body below threshold, amplifying",
		"section", sec.Title,
		"length", bodyLength(first),
		"min_length", gate.MinLength)
	w.recorder.IncGeneratorRetry("content")

	kept := first
	retry, rerr := w.gen.Generate(ctx, expandPrompt(first, gate.MinLength))
	if rerr == nil {
		kept = gate.Keep(first, strings.TrimSpace(retry))
	}

	if gate.Exhausted(kept) {
		return "", errBodyTooShort
	}
	return kept, nil
}
