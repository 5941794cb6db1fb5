package usecase

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"obsidian-inbox-bot/pkg/dateparse"
	"obsidian-inbox-bot/pkg/extraction"
)

// sanitizeJSONResponse removes markdown code fences and leading/trailing prose
// that LLMs often add around JSON output.
func sanitizeJSONResponse(text string) string {
	re := regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
	matches := re.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := strings.IndexAny(text, "[{")
	if start == -1 {
		return text
	}
	end := strings.LastIndexAny(text, "]}")
	if end == -1 || end < start {
		return text
	}
	return strings.TrimSpace(text[start : end+1])
}

// reconcile fills the gaps the extraction model leaves in action items from
// the rule-based parser, collects dates_mentioned, and normalizes item dates
// into the today/tomorrow display tokens. The parser is built fresh per call
// because it resolves relative expressions against a fixed reference date.
func (uc *implUseCase) reconcile(res *extraction.Result, sourceText string) {
	reference := uc.now()
	parser := dateparse.NewParser(reference)

	isoDates := make(map[string]struct{})

	for i := range res.ActionItems {
		item := &res.ActionItems[i]

		if item.Date == "" || item.Time == "" {
			if parsed := parser.Parse(item.Text); len(parsed) > 0 {
				if item.Date == "" {
					item.Date = parsed[0].Date
				}
				if item.Time == "" {
					item.Time = parsed[0].Time
				}
			}
		}

		if item.Priority == "" {
			if p := dateparse.ExtractPriority(item.Text); p != "" {
				item.Priority = p
			} else {
				item.Priority = dateparse.PriorityMedium
			}
		}

		if item.Date != "" {
			if _, err := time.Parse("2006-01-02", item.Date); err == nil {
				isoDates[item.Date] = struct{}{}
			}
			item.Date = dateparse.NormalizeForObsidian(item.Date, reference)
		}
	}

	for _, pd := range parser.Parse(sourceText) {
		isoDates[pd.Date] = struct{}{}
	}

	if len(isoDates) > 0 {
		mentioned := make([]string, 0, len(isoDates))
		for d := range isoDates {
			mentioned = append(mentioned, d)
		}
		sort.Strings(mentioned)
		res.DatesMentioned = mentioned
	}
}

// parseTagsInput converts a user-typed comma-separated tag list into
// sanitized kebab-case tags, capped at the document limit.
func parseTagsInput(text string) []string {
	var tags []string
	for _, part := range strings.Split(text, ",") {
		tag := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(part)), " ", "-")
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
		if len(tags) == extraction.MaxTags {
			break
		}
	}
	return tags
}

// parseTasksInput converts user-typed task lines into action items,
// carrying over date/time/priority/tags from the previous items by
// position so an edit of the wording does not lose extracted metadata.
func parseTasksInput(text string, previous []extraction.ActionItem) []extraction.ActionItem {
	var items []extraction.ActionItem
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "- [ ]"))
		line = strings.TrimSpace(strings.TrimPrefix(line, "-"))
		if line == "" {
			continue
		}

		item := extraction.ActionItem{Text: line}
		if i := len(items); i < len(previous) {
			item.Date = previous[i].Date
			item.Time = previous[i].Time
			item.Priority = previous[i].Priority
			item.Tags = previous[i].Tags
		}
		items = append(items, item)
	}
	return items
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
