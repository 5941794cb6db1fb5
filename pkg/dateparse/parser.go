// Package dateparse recognizes date, time and priority mentions in free-form
// Russian text using deterministic pattern tables.
//
// Known limitation: only the first weekday reference in a text is recognized;
// later weekday mentions are ignored.
package dateparse

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Parser recognizes date/time mentions relative to a fixed reference date.
// A Parser is stateless after construction and safe for concurrent use.
type Parser struct {
	reference time.Time
}

// NewParser creates a parser that resolves relative expressions against the
// given reference date. A zero reference means "now".
func NewParser(reference time.Time) *Parser {
	if reference.IsZero() {
		reference = time.Now()
	}
	return &Parser{reference: reference}
}

// Reference returns the parser's reference date.
func (p *Parser) Reference() time.Time {
	return p.reference
}

// Parse scans text for every recognized date expression and returns one
// finalized ParsedDate per distinct calendar date, sorted ascending.
// Candidates for the same date are resolved preferring the one carrying a
// time, then the higher confidence.
func (p *Parser) Parse(text string) []ParsedDate {
	lower := strings.ToLower(text)

	var candidates []ParsedDate
	candidates = append(candidates, p.parseRelative(lower)...)
	candidates = append(candidates, p.parseWeekday(lower)...)
	candidates = append(candidates, p.parseThrough(lower)...)
	candidates = append(candidates, p.parseNextWeek(lower)...)
	candidates = append(candidates, p.parseAbsolute(lower)...)

	p.applyPeriodDefaults(lower, candidates)

	return deduplicate(candidates)
}

// parseRelative emits one candidate per relative marker present anywhere in
// the text ("сегодня", "завтра", ...).
func (p *Parser) parseRelative(lower string) []ParsedDate {
	var out []ParsedDate
	for _, marker := range relativeMarkers {
		pos := strings.Index(lower, marker.word)
		if pos == -1 {
			continue
		}
		out = append(out, ParsedDate{
			OriginalText: marker.word,
			Date:         p.offsetDate(marker.offset),
			Time:         extractTimeAround(lower, pos, len(marker.word)),
			IsRelative:   true,
			Confidence:   0.95,
		})
	}
	return out
}

// parseWeekday resolves "в <weekday>" to the next occurrence of that weekday
// strictly after the reference date. Only the first weekday found counts.
func (p *Parser) parseWeekday(lower string) []ParsedDate {
	for i, wd := range weekdayNames {
		loc := weekdayPatterns[i].FindStringSubmatchIndex(lower)
		if loc == nil {
			continue
		}
		// Group 1 span is the weekday word itself.
		pos, end := loc[2], loc[3]
		return []ParsedDate{{
			OriginalText: wd.word,
			Date:         p.nextWeekday(wd.day).Format("2006-01-02"),
			Time:         extractTimeAround(lower, pos, end-pos),
			IsRelative:   true,
			Confidence:   0.85,
		}}
	}
	return nil
}

// parseThrough handles "через N дней/недель"; several occurrences may emit.
func (p *Parser) parseThrough(lower string) []ParsedDate {
	var out []ParsedDate
	for _, loc := range throughPattern.FindAllStringSubmatchIndex(lower, -1) {
		count, err := strconv.Atoi(lower[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		unit := lower[loc[4]:loc[5]]
		days := count
		if strings.HasPrefix(unit, "недел") {
			days = count * 7
		}
		out = append(out, ParsedDate{
			OriginalText: lower[loc[0]:loc[1]],
			Date:         p.offsetDate(days),
			Time:         extractTimeAround(lower, loc[0], 0),
			IsRelative:   true,
			Confidence:   0.90,
		})
	}
	return out
}

// parseNextWeek matches the fixed "next week" phrases; at most one emission.
func (p *Parser) parseNextWeek(lower string) []ParsedDate {
	for _, phrase := range nextWeekPhrases {
		if !strings.Contains(lower, phrase) {
			continue
		}
		return []ParsedDate{{
			OriginalText: nextWeekPhrases[0],
			Date:         p.offsetDate(7),
			Time:         extractTime(lower),
			IsRelative:   true,
			Confidence:   0.80,
		}}
	}
	return nil
}

// parseAbsolute handles DD.MM.YYYY and DD.MM. Invalid calendar dates are
// skipped silently.
func (p *Parser) parseAbsolute(lower string) []ParsedDate {
	var out []ParsedDate

	for _, loc := range absoluteFullPattern.FindAllStringSubmatchIndex(lower, -1) {
		day, _ := strconv.Atoi(lower[loc[2]:loc[3]])
		month, _ := strconv.Atoi(lower[loc[4]:loc[5]])
		year, _ := strconv.Atoi(lower[loc[6]:loc[7]])
		if !validDate(year, month, day) {
			continue
		}
		out = append(out, ParsedDate{
			OriginalText: lower[loc[0]:loc[1]],
			Date:         isoDate(year, month, day),
			Time:         extractTimeAround(lower, loc[0], 0),
			IsRelative:   false,
			Confidence:   1.0,
		})
	}

	for _, loc := range absoluteShortPattern.FindAllStringSubmatchIndex(lower, -1) {
		day, _ := strconv.Atoi(lower[loc[2]:loc[3]])
		month, _ := strconv.Atoi(lower[loc[4]:loc[5]])
		year := p.reference.Year()
		if !validDate(year, month, day) {
			continue
		}
		out = append(out, ParsedDate{
			OriginalText: lower[loc[0]:loc[1]],
			Date:         isoDate(year, month, day),
			Time:         extractTimeAround(lower, loc[0], 0),
			IsRelative:   false,
			Confidence:   0.90,
		})
	}

	return out
}

// applyPeriodDefaults assigns a time-of-day default ("утром" → 09:00) to the
// first candidate, but only while no candidate in the whole batch carries a
// time. The no-time check is global, not per candidate, so the default
// attaches at most once per parse.
func (p *Parser) applyPeriodDefaults(lower string, candidates []ParsedDate) {
	for _, period := range dayPeriods {
		if !strings.Contains(lower, period.word) {
			continue
		}
		hasTime := false
		for i := range candidates {
			if candidates[i].Time != "" {
				hasTime = true
				break
			}
		}
		if hasTime || len(candidates) == 0 {
			continue
		}
		candidates[0].Time = period.defaultTime
	}
}

// deduplicate keeps exactly one candidate per distinct date, preferring a
// candidate with a time, then higher confidence; the first of equally ranked
// candidates wins. Results come back sorted ascending by date.
func deduplicate(candidates []ParsedDate) []ParsedDate {
	if len(candidates) == 0 {
		return nil
	}

	best := make(map[string]ParsedDate, len(candidates))
	for _, c := range candidates {
		cur, ok := best[c.Date]
		if !ok || moreSpecific(c, cur) {
			best[c.Date] = c
		}
	}

	out := make([]ParsedDate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// moreSpecific reports whether a strictly outranks b: time presence first,
// then confidence.
func moreSpecific(a, b ParsedDate) bool {
	aHas, bHas := a.Time != "", b.Time != ""
	if aHas != bHas {
		return aHas
	}
	return a.Confidence > b.Confidence
}

func (p *Parser) offsetDate(days int) string {
	return p.reference.AddDate(0, 0, days).Format("2006-01-02")
}

// nextWeekday returns the next occurrence of target strictly after the
// reference date; a reference falling on the target weekday advances a full
// week.
func (p *Parser) nextWeekday(target time.Weekday) time.Time {
	days := int(target) - int(p.reference.Weekday())
	if days <= 0 {
		days += 7
	}
	return p.reference.AddDate(0, 0, days)
}

// validDate reports whether year/month/day form a real calendar date.
func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

func isoDate(year, month, day int) string {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
