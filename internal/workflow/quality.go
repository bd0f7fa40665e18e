package workflow

import "unicode/utf8"

// ContentQualityGate decides whether a generated section body is long
// enough to keep. It is a bespoke one-retry heuristic, deliberately
// separate from the network retry policy in the generator package:
// a body under MinLength gets exactly one amplified regeneration, and
// the retry only wins if it is both acceptable and materially longer
// than the first attempt, so a regression on retry never replaces a
// longer original.
type ContentQualityGate struct {
	// MinLength is the acceptance threshold in characters (runes, since
	// bodies are predominantly CJK text).
	MinLength int
}

// retryGainFactor is the minimum relative growth a retry must show over
// the original before it is allowed to replace it.
const retryGainFactor = 1.2

func bodyLength(body string) int {
	return utf8.RuneCountInString(body)
}

// Acceptable reports whether a body meets the threshold outright.
func (g ContentQualityGate) Acceptable(body string) bool {
	return bodyLength(body) >= g.MinLength
}

// Keep picks between the original attempt and its single retry. The retry
// wins only when it is acceptable and at least 20% longer than the
// original; otherwise the longer of the two survives.
func (g ContentQualityGate) Keep(original, retry string) string {
	origLen := bodyLength(original)
	retryLen := bodyLength(retry)
	if retryLen >= g.MinLength && float64(retryLen) >= float64(origLen)*retryGainFactor {
		return retry
	}
	if retryLen > origLen {
		return retry
	}
	return original
}

// Exhausted reports that even the surviving attempt is under half the
// threshold, in which case the caller must discard it and synthesize a
// default body instead.
func (g ContentQualityGate) Exhausted(body string) bool {
	return bodyLength(body) < g.MinLength/2
}
