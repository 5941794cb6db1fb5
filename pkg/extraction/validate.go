package extraction

import (
	"strings"

	"obsidian-inbox-bot/pkg/dateparse"
)

// Sanitize validates an untrusted structured payload and, when the coarse
// shape is acceptable, returns the sanitized Result. The second return value
// is false when a required field (summary, tags, action_items) is missing or
// of the wrong coarse type: the whole payload is rejected and the caller
// decides how to fall back. Individual action items missing a text field are
// dropped silently; the rest of the payload is still accepted.
func Sanitize(payload map[string]any) (Result, bool) {
	summary, ok := payload["summary"].(string)
	if !ok {
		return Result{}, false
	}
	rawTags, ok := payload["tags"].([]any)
	if !ok {
		return Result{}, false
	}
	rawItems, ok := payload["action_items"].([]any)
	if !ok {
		return Result{}, false
	}

	res := Result{
		Summary: truncate(summary, MaxSummaryLength),
		Tags:    sanitizeTags(rawTags, MaxTags),
		Success: true,
	}

	for _, raw := range rawItems {
		item, ok := sanitizeItem(raw)
		if !ok {
			continue
		}
		res.ActionItems = append(res.ActionItems, item)
	}

	return res, true
}

// sanitizeItem coerces one raw action item. A bare string is accepted as a
// text-only item (the service sometimes returns plain task strings); a map
// must carry a non-empty "text".
func sanitizeItem(raw any) (ActionItem, bool) {
	if text, ok := raw.(string); ok {
		if strings.TrimSpace(text) == "" {
			return ActionItem{}, false
		}
		return ActionItem{Text: strings.TrimSpace(text)}, true
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return ActionItem{}, false
	}
	text, ok := m["text"].(string)
	if !ok || strings.TrimSpace(text) == "" {
		return ActionItem{}, false
	}

	item := ActionItem{
		Text: strings.TrimSpace(text),
		Date: optionalString(m, "date"),
		Time: optionalString(m, "time"),
	}

	if p, ok := m["priority"].(string); ok {
		priority := dateparse.Priority(strings.ToLower(strings.TrimSpace(p)))
		if priority.Valid() {
			item.Priority = priority
		}
	}

	if rawTags, ok := m["tags"].([]any); ok {
		item.Tags = sanitizeTags(rawTags, MaxItemTags)
	}

	return item, true
}

// sanitizeTags keeps string entries, lowercases them, replaces spaces with
// hyphens and caps the count.
func sanitizeTags(raw []any, limit int) []string {
	var tags []string
	for _, t := range raw {
		s, ok := t.(string)
		if !ok {
			continue
		}
		s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
		if s == "" {
			continue
		}
		tags = append(tags, s)
		if len(tags) == limit {
			break
		}
	}
	return tags
}

// optionalString reads a string field, treating blank as absent.
func optionalString(m map[string]any, key string) string {
	s, ok := m[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
