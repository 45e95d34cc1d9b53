package domain

import (
	"strings"
	"unicode"
)

// Priority identifies one canonical priority level.
type Priority string

// Priority values.
const (
	PriorityUrgent Priority = "urgent"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priority token families in classification precedence order. Substring
// matching keeps legacy and localized labels ("High", "Alta", "prio: urgent!")
// classifiable without an exhaustive enumeration.
var (
	urgentTokens = []string{"urgent", "high", "alta"}
	lowTokens    = []string{"low", "baja"}
	mediumTokens = []string{"medium", "media"}
)

// ClassifyPriority maps a free-form priority string onto exactly one
// canonical level. The input is lower-cased and stripped of non-alphabetic
// runes before matching; urgent-family tokens win over low-family tokens,
// and anything unmatched defaults to medium.
func ClassifyPriority(raw string) Priority {
	folded := foldAlpha(raw)
	for _, token := range urgentTokens {
		if strings.Contains(folded, token) {
			return PriorityUrgent
		}
	}
	for _, token := range lowTokens {
		if strings.Contains(folded, token) {
			return PriorityLow
		}
	}
	for _, token := range mediumTokens {
		if strings.Contains(folded, token) {
			return PriorityMedium
		}
	}
	return PriorityMedium
}

// foldAlpha lower-cases the input and drops every non-letter rune.
func foldAlpha(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// priorityGlyphs stores the board glyph per canonical level.
var priorityGlyphs = map[Priority]string{
	PriorityUrgent: "▲▲",
	PriorityMedium: "==",
	PriorityLow:    "▼▼",
}

// Glyph returns the board glyph for a priority level. Unknown levels degrade
// to the medium glyph rather than failing the render.
func (p Priority) Glyph() string {
	if glyph, ok := priorityGlyphs[p]; ok {
		return glyph
	}
	return priorityGlyphs[PriorityMedium]
}

// Label returns the display name for a priority level.
func (p Priority) Label() string {
	switch p {
	case PriorityUrgent:
		return "Urgent"
	case PriorityLow:
		return "Low"
	default:
		return "Medium"
	}
}
