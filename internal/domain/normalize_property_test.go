package domain

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

// TestClassifyPriorityTotal verifies that every input string classifies to
// exactly one canonical priority level.
func TestClassifyPriorityTotal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := rapid.String().Draw(rt, "input")
		got := ClassifyPriority(input)
		switch got {
		case PriorityUrgent, PriorityMedium, PriorityLow:
		default:
			rt.Fatalf("ClassifyPriority(%q) = %q, not a canonical level", input, got)
		}
	})
}

// TestClassifyPriorityUrgentPrecedence verifies that any string containing
// both an urgent-family and a low-family token classifies as urgent.
func TestClassifyPriorityUrgentPrecedence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		urgent := rapid.SampledFrom([]string{"urgent", "high", "alta"}).Draw(rt, "urgent_token")
		low := rapid.SampledFrom([]string{"low", "baja"}).Draw(rt, "low_token")
		if rapid.Bool().Draw(rt, "swap") {
			urgent, low = low, urgent
		}
		input := urgent + " " + low
		if got := ClassifyPriority(input); got != PriorityUrgent {
			rt.Fatalf("ClassifyPriority(%q) = %q, want urgent", input, got)
		}
	})
}

// TestNormalizeSubtasksIdempotence verifies that normalizing an
// already-canonical checklist yields an equal checklist.
func TestNormalizeSubtasksIdempotence(t *testing.T) {
	titleGen := rapid.StringMatching(`[a-zA-Z0-9 ]{1,24}`)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(rt, "num_entries")
		raw := make([]any, 0, n)
		for i := 0; i < n; i++ {
			switch rapid.IntRange(0, 2).Draw(rt, "shape") {
			case 0:
				raw = append(raw, titleGen.Draw(rt, "plain_title"))
			case 1:
				raw = append(raw, map[string]any{
					"name":   titleGen.Draw(rt, "aliased_title"),
					"isDone": rapid.Bool().Draw(rt, "aliased_done"),
				})
			default:
				raw = append(raw, map[string]any{
					"title": titleGen.Draw(rt, "canonical_title"),
					"done":  rapid.Bool().Draw(rt, "canonical_done"),
				})
			}
		}
		once := NormalizeSubtasks(raw)
		twice := NormalizeSubtasks(once)
		if !reflect.DeepEqual(once, twice) {
			rt.Fatalf("normalization not idempotent: %v vs %v", once, twice)
		}
	})
}

// TestNormalizeSubtasksNeverEmitsEmptyTitles verifies the post-filter for
// arbitrary mixed-shape input.
func TestNormalizeSubtasksNeverEmitsEmptyTitles(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(rt, "num_entries")
		raw := make([]any, 0, n)
		for i := 0; i < n; i++ {
			switch rapid.IntRange(0, 3).Draw(rt, "shape") {
			case 0:
				raw = append(raw, rapid.String().Draw(rt, "title"))
			case 1:
				raw = append(raw, map[string]any{"text": rapid.String().Draw(rt, "text_title")})
			case 2:
				raw = append(raw, map[string]any{"done": rapid.Bool().Draw(rt, "done_only")})
			default:
				raw = append(raw, rapid.Int().Draw(rt, "junk"))
			}
		}
		for _, subtask := range NormalizeSubtasks(raw) {
			if subtask.Title == "" {
				rt.Fatalf("normalized output contains empty title")
			}
		}
	})
}
