package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf8"
)

// timeWindow is the search radius, in runes, around an anchor word or
// position when looking for a clock time that belongs to it.
const timeWindow = 50

// timePatterns are tried in priority order; the first match wins.
var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`в\s+(\d{1,2}):(\d{2})`), // "в 10:00", "в 9:30"
	regexp.MustCompile(`в\s+(\d{1,2})\s+час`),   // "в 10 часов", minutes default to 00
	regexp.MustCompile(`(\d{1,2}):(\d{2})`),     // bare "10:00", "9:30"
}

// extractTime returns the first clock time found in text as zero-padded
// HH:MM, or "" when no pattern matches.
func extractTime(text string) string {
	for _, re := range timePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		hour, _ := strconv.Atoi(m[1])
		if len(m) > 2 && m[2] != "" {
			minute, _ := strconv.Atoi(m[2])
			return fmt.Sprintf("%02d:%02d", hour, minute)
		}
		return fmt.Sprintf("%02d:00", hour)
	}
	return ""
}

// extractTimeAround looks for a clock time inside a timeWindow-rune window
// around the byte span [pos, pos+length) and falls back to scanning the
// whole text when the window holds nothing.
func extractTimeAround(text string, pos, length int) string {
	if pos < 0 || pos > len(text) {
		return extractTime(text)
	}

	runes := []rune(text)
	start := utf8.RuneCountInString(text[:pos])
	end := start
	if length > 0 && pos+length <= len(text) {
		end = start + utf8.RuneCountInString(text[pos:pos+length])
	}

	lo := start - timeWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + timeWindow
	if hi > len(runes) {
		hi = len(runes)
	}

	if t := extractTime(string(runes[lo:hi])); t != "" {
		return t
	}
	return extractTime(text)
}
