package dateparse

// ParsedDate is a single date/time mention recognized in free-form text.
type ParsedDate struct {
	OriginalText string  // matched span, e.g. "завтра", "через 2 дня", "25.03.2026"
	Date         string  // resolved calendar date, YYYY-MM-DD
	Time         string  // HH:MM (24h), empty when no time was found
	IsRelative   bool    // true when Date was computed relative to the reference date
	Confidence   float64 // 0.0-1.0, used for tie-breaking during deduplication
}

// Priority is a task priority label.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the three known priority labels.
func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}
