package dateparse

import "strings"

// ExtractPriority classifies the priority signal in text as PriorityHigh,
// PriorityLow, or "" when no marker matches. Low markers are checked first
// so "не срочно" never matches the "срочно" high marker.
// PriorityMedium is never returned; it is a default applied by callers.
func ExtractPriority(text string) Priority {
	lower := strings.ToLower(text)

	for _, marker := range lowPriorityMarkers {
		if strings.Contains(lower, marker) {
			return PriorityLow
		}
	}

	for _, marker := range highPriorityMarkers {
		if strings.Contains(lower, marker) {
			return PriorityHigh
		}
	}

	return ""
}
