package workflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docgen/internal/document"
)

// outlinePayload is the requested response shape. Models frequently wrap
// it in markdown fences or return the bare section array, so parsing is
// tolerant of both.
type outlinePayload struct {
	Outline        []rawSection `json:"outline"`
	EstimatedPages int          `json:"estimated_pages"`
}

// rawSection accepts content as either a JSON array or a single
// comma-separated string.
type rawSection struct {
	Title   string        `json:"title"`
	Content rawPointsList `json:"content"`
}

type rawPointsList []string

func (p *rawPointsList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*p = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		parts := strings.Split(single, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		*p = out
		return nil
	}
	return fmt.Errorf("section content is neither a list nor a string")
}

// stripFences removes a surrounding markdown code fence, with or without
// a language tag.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// drop the language tag line
		if lang := strings.TrimSpace(s[:idx]); lang == "" || !strings.ContainsAny(lang, "{[") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseOutline extracts sections and the model's page estimate from a raw
// completion. An estimate of 0 means the model did not report one.
func parseOutline(raw string) ([]rawSection, int, error) {
	s := stripFences(raw)
	if s == "" {
		return nil, 0, fmt.Errorf("empty outline response")
	}

	var payload outlinePayload
	if err := json.Unmarshal([]byte(s), &payload); err == nil && len(payload.Outline) > 0 {
		return payload.Outline, payload.EstimatedPages, nil
	}

	var bare []rawSection
	if err := json.Unmarshal([]byte(s), &bare); err == nil && len(bare) > 0 {
		return bare, 0, nil
	}

	// Last resort: the JSON object may be embedded in surrounding prose.
	if start, end := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}'); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(s[start:end+1]), &payload); err == nil && len(payload.Outline) > 0 {
			return payload.Outline, payload.EstimatedPages, nil
		}
	}

	return nil, 0, fmt.Errorf("outline response is not valid JSON")
}

// Placeholder strings the upstream model emits when it ignores the
// instruction to produce concrete points.
var placeholderPoints = map[string]bool{
	"具体要点1": true,
	"要点1":   true,
	"关键点1":  true,
}

const placeholderTitle = "章节标题"

// fallbackPoints stands in for a section whose point list is missing.
var fallbackPoints = []string{"背景介绍", "关键概念", "应用场景"}

// normalizeOutline converts parsed sections into the domain model,
// replacing placeholder titles and points with topic-derived text.
// Sections are repaired, never dropped.
func normalizeOutline(raw []rawSection, topic string) []document.Section {
	out := make([]document.Section, 0, len(raw))
	for _, rs := range raw {
		title := strings.TrimSpace(rs.Title)
		if title == "" || title == placeholderTitle {
			title = topic + "分析"
		}

		var points []string
		for _, p := range rs.Content {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if placeholderPoints[p] {
				p = title + "的重要方面"
			}
			points = append(points, p)
		}
		if len(points) == 0 {
			points = append(points, fallbackPoints...)
		}

		out = append(out, document.Section{Title: title, Points: points})
	}
	return out
}
