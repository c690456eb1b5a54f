package search

import (
	"html"
	"sort"
	"strings"
)

// byteRange is a half-open [start, end) span of match-term bytes
// inside a stored body field.
type byteRange struct {
	start, end int
}

// mergeRanges sorts ranges by start and merges any that are adjacent
// or overlapping into disjoint spans, per spec.md §4.F's snippet
// normalization rule: bleve's analyzer can produce overlapping term
// locations (stemmed variants of the same match) that must not be
// double-wrapped in the rendered snippet.
func mergeRanges(ranges []byteRange) []byteRange {
	if len(ranges) == 0 {
		return nil
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })

	merged := []byteRange{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.start <= last.end {
			if r.end > last.end {
				last.end = r.end
			}
			continue
		}
		merged = append(merged, r)
	}

	return merged
}

const snippetWindowRadius = 80

// buildSnippet extracts a window of body around the first merged
// match and wraps each match range inside it in a marker span,
// HTML-escaping everything else in the window.
func buildSnippet(body string, ranges []byteRange) string {
	if len(ranges) == 0 || body == "" {
		return ""
	}

	first := ranges[0]
	winStart := max(first.start-snippetWindowRadius, 0)
	winEnd := min(first.end+snippetWindowRadius, len(body))
	if winStart > len(body) || winEnd > len(body) || winStart > winEnd {
		return ""
	}

	var b strings.Builder
	if winStart > 0 {
		b.WriteString("…")
	}

	cursor := winStart
	for _, r := range ranges {
		if r.end <= winStart || r.start >= winEnd {
			continue
		}

		start := max(r.start, winStart)
		end := min(r.end, winEnd)
		if start > cursor {
			b.WriteString(html.EscapeString(body[cursor:start]))
		}

		b.WriteString(`<mark class="search-hit">`)
		b.WriteString(html.EscapeString(body[start:end]))
		b.WriteString(`</mark>`)
		cursor = end
	}

	if cursor < winEnd {
		b.WriteString(html.EscapeString(body[cursor:winEnd]))
	}
	if winEnd < len(body) {
		b.WriteString("…")
	}

	return b.String()
}
