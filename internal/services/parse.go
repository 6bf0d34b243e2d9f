package services

import "strings"

// summaryPlaceholder is used when no summary line survives filtering.
const summaryPlaceholder = "AI审核完成"

const jsonFence = "```json"

// splitModelReply separates a model reply into its prose summary and JSON
// payload. Replies normally carry a fenced ```json block followed by summary
// lines; some model versions instead lead with prose and end with a bare JSON
// object. The fenced strategy is tried first, selected by marker presence.
func splitModelReply(raw string) (summary, jsonText string) {
	if summary, jsonText, ok := parseFencedReply(raw); ok {
		return summary, jsonText
	}
	return parseBareReply(raw)
}

// parseFencedReply extracts the JSON between the first ```json fence pair and
// filters everything after the closing fence into the summary. Reports false
// when the fence pair is absent or unterminated.
func parseFencedReply(raw string) (summary, jsonText string, ok bool) {
	start := strings.Index(raw, jsonFence)
	if start < 0 {
		return "", "", false
	}

	jsonStart := start + len(jsonFence)
	rest := raw[jsonStart:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", "", false
	}

	jsonText = strings.TrimSpace(rest[:end])
	tail := rest[end+3:]

	summary = filterSummaryLines(tail)
	return summary, jsonText, true
}

// filterSummaryLines keeps only the lines that read as audit conclusions:
// non-empty, not markdown emphasis or headings, and either carrying the
// 摘要：/结论： markers, a list-item shape, or the 符合/不符合 keywords.
// The rules are deliberately frozen; changing them changes the summary
// contract for downstream consumers.
func filterSummaryLines(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "**") || strings.HasPrefix(line, "#") {
			continue
		}
		switch {
		case strings.HasPrefix(line, "摘要："), strings.HasPrefix(line, "结论："):
			kept = append(kept, line)
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "关键理由"), strings.Contains(line, "符合"):
			kept = append(kept, line)
		}
	}

	if len(kept) == 0 {
		return summaryPlaceholder
	}
	return strings.Join(kept, "\n")
}

// parseBareReply handles the fallback shape: summary prose first, then a bare
// JSON object. Once a line opens an object literal every subsequent line
// belongs to the JSON body.
func parseBareReply(raw string) (summary, jsonText string) {
	var summaryLines, jsonLines []string
	jsonStarted := false

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		trimmed := strings.TrimSpace(line)
		if jsonStarted || strings.HasPrefix(trimmed, "{") {
			jsonStarted = true
			jsonLines = append(jsonLines, line)
			continue
		}
		if trimmed != "" {
			summaryLines = append(summaryLines, trimmed)
		}
	}

	summary = summaryPlaceholder
	if len(summaryLines) > 0 {
		summary = strings.Join(summaryLines, "\n")
	}
	return summary, strings.Join(jsonLines, "\n")
}
