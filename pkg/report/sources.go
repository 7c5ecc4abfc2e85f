package report

import (
	"fmt"
	"strings"

	"github.com/mikeboe/deep-report/pkg/research"
)

// DefaultSourceLimit caps how many sources are rendered into the digest the
// report prompts cite.
const DefaultSourceLimit = 12

const (
	noSourcesDigest  = "No sources."
	summaryRuneLimit = 400
	summaryEllipsis  = "…"
)

// FormatSources renders sources into the numbered digest referenced by [n]
// citation markers in the generated report. Sources beyond limit are dropped,
// missing titles become "Untitled", missing URLs stay empty, and summaries
// are trimmed and cut at 400 characters with an ellipsis.
func FormatSources(sources []research.Source, limit int) string {
	if limit <= 0 {
		limit = DefaultSourceLimit
	}
	if len(sources) == 0 {
		return noSourcesDigest
	}
	if len(sources) > limit {
		sources = sources[:limit]
	}

	entries := make([]string, 0, len(sources))
	for i, src := range sources {
		title := src.Title
		if title == "" {
			title = "Untitled"
		}
		summary := strings.TrimSpace(src.Summary)
		if runes := []rune(summary); len(runes) > summaryRuneLimit {
			summary = string(runes[:summaryRuneLimit]) + summaryEllipsis
		}
		entries = append(entries, fmt.Sprintf("%d. %s\n   URL: %s\n   Summary: %s", i+1, title, src.URL, summary))
	}

	return strings.Join(entries, "\n\n")
}
