package domain

import "testing"

func TestClassifyPriority(t *testing.T) {
	cases := []struct {
		in   string
		want Priority
	}{
		{"urgent", PriorityUrgent},
		{"Urgent!", PriorityUrgent},
		{"HIGH", PriorityUrgent},
		{"alta", PriorityUrgent},
		{"prio: high", PriorityUrgent},
		{"low", PriorityLow},
		{"Baja", PriorityLow},
		{"medium", PriorityMedium},
		{"media", PriorityMedium},
		{"", PriorityMedium},
		{"whatever", PriorityMedium},
		{"   ", PriorityMedium},
		{"h-i-g-h", PriorityUrgent},
	}
	for _, tc := range cases {
		if got := ClassifyPriority(tc.in); got != tc.want {
			t.Fatalf("ClassifyPriority(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClassifyPriorityUrgentBeatsLow(t *testing.T) {
	// Precedence, not position, decides when both families match.
	if got := ClassifyPriority("low but high"); got != PriorityUrgent {
		t.Fatalf("ClassifyPriority = %q, want urgent", got)
	}
	if got := ClassifyPriority("highlow"); got != PriorityUrgent {
		t.Fatalf("ClassifyPriority = %q, want urgent", got)
	}
}

func TestClassifyPriorityKnownImprecision(t *testing.T) {
	// Substring matching deliberately tolerates labels like "highlight".
	if got := ClassifyPriority("highlight"); got != PriorityUrgent {
		t.Fatalf("ClassifyPriority = %q, want urgent", got)
	}
}

func TestPriorityGlyphFallback(t *testing.T) {
	if Priority("bogus").Glyph() != PriorityMedium.Glyph() {
		t.Fatal("unknown priority should fall back to the medium glyph")
	}
	if PriorityUrgent.Glyph() == PriorityLow.Glyph() {
		t.Fatal("urgent and low glyphs must differ")
	}
}

func TestPriorityLabels(t *testing.T) {
	if PriorityUrgent.Label() != "Urgent" || PriorityLow.Label() != "Low" {
		t.Fatal("unexpected priority labels")
	}
	if Priority("bogus").Label() != "Medium" {
		t.Fatal("unknown priority should label as Medium")
	}
}
