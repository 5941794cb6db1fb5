// Package extraction defines the structured output of the smart-processing
// pipeline and validates untrusted payloads coming back from the
// text-to-structure service.
package extraction

import (
	"strings"

	"obsidian-inbox-bot/pkg/dateparse"
)

const (
	// MaxSummaryLength caps the summary for display.
	MaxSummaryLength = 200
	// MaxTags caps document-level tags.
	MaxTags = 5
	// MaxItemTags caps tags on a single action item.
	MaxItemTags = 2

	// ProcessingVersion is recorded in saved notes alongside the model name.
	ProcessingVersion = "1.0"
)

// ActionItem is one extracted task.
type ActionItem struct {
	Text     string             `json:"text"`
	Date     string             `json:"date,omitempty"` // ISO date or "today"/"tomorrow" after normalization
	Time     string             `json:"time,omitempty"` // HH:MM
	Priority dateparse.Priority `json:"priority,omitempty"`
	Tags     []string           `json:"tags,omitempty"`
}

// Markdown renders the item as an Obsidian Tasks checklist line:
// "- [ ] text 📅 date 🕐 time ⏫ #tag". Empty fields are omitted.
func (a ActionItem) Markdown() string {
	var sb strings.Builder
	sb.WriteString("- [ ] ")
	sb.WriteString(a.Text)
	if a.Date != "" {
		sb.WriteString(" 📅 ")
		sb.WriteString(a.Date)
	}
	if a.Time != "" {
		sb.WriteString(" 🕐 ")
		sb.WriteString(a.Time)
	}
	switch a.Priority {
	case dateparse.PriorityHigh:
		sb.WriteString(" ⏫")
	case dateparse.PriorityLow:
		sb.WriteString(" 🔽")
	}
	for _, tag := range a.Tags {
		sb.WriteString(" #")
		sb.WriteString(tag)
	}
	return sb.String()
}

// Result is the aggregate outcome of processing one input text.
type Result struct {
	Summary        string       `json:"summary"`
	Tags           []string     `json:"tags"`
	ActionItems    []ActionItem `json:"action_items"`
	DatesMentioned []string     `json:"dates_mentioned,omitempty"` // deduplicated, sorted ISO dates
	Success        bool         `json:"success"`
	Error          string       `json:"error,omitempty"`
	ModelUsed      string       `json:"model_used,omitempty"`
}

// Failure builds a failed Result carrying the given error description.
func Failure(errMsg string) Result {
	return Result{Success: false, Error: errMsg}
}
