package dateparse

import "time"

// NormalizeForObsidian converts an ISO date (YYYY-MM-DD) into the relative
// display token Obsidian daily notes use: "today" when the date equals the
// reference day, "tomorrow" when exactly one day after, otherwise the input
// unchanged. Malformed input is returned unchanged, never an error.
func NormalizeForObsidian(dateStr string, reference time.Time) string {
	target, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return dateStr
	}
	if reference.IsZero() {
		reference = time.Now()
	}

	refDay := time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, time.UTC)
	delta := int(target.Sub(refDay).Hours() / 24)

	switch delta {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return dateStr
	}
}
