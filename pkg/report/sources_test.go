package report

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mikeboe/deep-report/pkg/research"
)

func TestFormatSourcesEmpty(t *testing.T) {
	tests := []struct {
		name    string
		sources []research.Source
	}{
		{"Nil slice", nil},
		{"Empty slice", []research.Source{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSources(tt.sources, DefaultSourceLimit); got != "No sources." {
				t.Errorf("FormatSources() = %q, want %q", got, "No sources.")
			}
		})
	}
}

func TestFormatSourcesCap(t *testing.T) {
	var sources []research.Source
	for i := 0; i < 20; i++ {
		sources = append(sources, research.Source{
			Title:   "Title " + string(rune('A'+i)),
			URL:     "https://example.com/" + string(rune('a'+i)),
			Summary: "summary",
		})
	}

	digest := FormatSources(sources, DefaultSourceLimit)
	entries := strings.Split(digest, "\n\n")

	if len(entries) != 12 {
		t.Fatalf("entry count = %d, want 12", len(entries))
	}
	for i, entry := range entries {
		want := fmt.Sprintf("%d. ", i+1)
		if !strings.HasPrefix(entry, want) {
			t.Errorf("entry %d = %q, want prefix %q", i, entry, want)
		}
	}
	if !strings.HasPrefix(entries[0], "1. Title A") {
		t.Errorf("first entry = %q, want it numbered 1 with the first source", entries[0])
	}
	if !strings.HasPrefix(entries[11], "12. Title L") {
		t.Errorf("last entry = %q, want it numbered 12 with the twelfth source", entries[11])
	}
	if strings.Contains(digest, "13.") {
		t.Errorf("digest contains a 13th entry:\n%s", digest)
	}
}

func TestFormatSourcesEntryLayout(t *testing.T) {
	tests := []struct {
		name   string
		source research.Source
		want   string
	}{
		{
			name:   "Complete source",
			source: research.Source{Title: "Quantum Leap", URL: "https://example.com/q", Summary: "All about qubits."},
			want:   "1. Quantum Leap\n   URL: https://example.com/q\n   Summary: All about qubits.",
		},
		{
			name:   "Missing title",
			source: research.Source{URL: "https://example.com/x", Summary: "No name."},
			want:   "1. Untitled\n   URL: https://example.com/x\n   Summary: No name.",
		},
		{
			name:   "Missing URL",
			source: research.Source{Title: "Lost Link", Summary: "Nowhere."},
			want:   "1. Lost Link\n   URL: \n   Summary: Nowhere.",
		},
		{
			name:   "Whitespace summary trimmed",
			source: research.Source{Title: "Padded", URL: "u", Summary: "  spaced out \n"},
			want:   "1. Padded\n   URL: u\n   Summary: spaced out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSources([]research.Source{tt.source}, DefaultSourceLimit); got != tt.want {
				t.Errorf("FormatSources() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatSourcesTruncation(t *testing.T) {
	tests := []struct {
		name      string
		summary   string
		wantRunes int
		truncated bool
	}{
		{"Exactly 400 runes untouched", strings.Repeat("a", 400), 400, false},
		{"401 runes truncated", strings.Repeat("b", 401), 401, true},
		{"Long multibyte summary", strings.Repeat("ü", 450), 401, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest := FormatSources([]research.Source{{Title: "T", URL: "u", Summary: tt.summary}}, DefaultSourceLimit)

			parts := strings.SplitN(digest, "Summary: ", 2)
			if len(parts) != 2 {
				t.Fatalf("digest has no summary section: %q", digest)
			}
			rendered := parts[1]

			if got := utf8.RuneCountInString(rendered); got != tt.wantRunes {
				t.Errorf("rendered summary rune count = %d, want %d", got, tt.wantRunes)
			}
			if tt.truncated {
				if !strings.HasSuffix(rendered, "…") {
					t.Errorf("truncated summary does not end with ellipsis: %q", rendered)
				}
				body := strings.TrimSuffix(rendered, "…")
				if !strings.HasPrefix(tt.summary, body) {
					t.Errorf("truncated summary is not a prefix of the original")
				}
				if utf8.RuneCountInString(body) != 400 {
					t.Errorf("kept prefix rune count = %d, want 400", utf8.RuneCountInString(body))
				}
			} else if rendered != tt.summary {
				t.Errorf("short summary changed: got %q", rendered)
			}
		})
	}
}

func TestFormatSourcesCustomLimit(t *testing.T) {
	sources := []research.Source{
		{Title: "One", URL: "u1", Summary: "s1"},
		{Title: "Two", URL: "u2", Summary: "s2"},
		{Title: "Three", URL: "u3", Summary: "s3"},
	}

	digest := FormatSources(sources, 2)
	if strings.Contains(digest, "Three") {
		t.Errorf("digest contains source beyond limit:\n%s", digest)
	}
	if got := len(strings.Split(digest, "\n\n")); got != 2 {
		t.Errorf("entry count = %d, want 2", got)
	}

	// Zero limit falls back to the default
	digest = FormatSources(sources, 0)
	if got := len(strings.Split(digest, "\n\n")); got != 3 {
		t.Errorf("entry count with zero limit = %d, want 3", got)
	}
}
