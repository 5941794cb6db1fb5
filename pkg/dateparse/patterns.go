package dateparse

import (
	"regexp"
	"time"
)

// relativeMarkers maps single-word relative date expressions to day offsets.
// Longer words come first so "послезавтра" is recorded before its substring
// "завтра"; both still emit, the deduplicator resolves the overlap.
var relativeMarkers = []struct {
	word   string
	offset int
}{
	{"послезавтра", 2},
	{"позавчера", -2},
	{"сегодня", 0},
	{"завтра", 1},
	{"вчера", -1},
}

// weekdayNames lists weekday words in week order. Only the first weekday
// found in a text is recognized.
var weekdayNames = []struct {
	word string
	day  time.Weekday
}{
	{"понедельник", time.Monday},
	{"вторник", time.Tuesday},
	{"среда", time.Wednesday},
	{"четверг", time.Thursday},
	{"пятница", time.Friday},
	{"суббота", time.Saturday},
	{"воскресенье", time.Sunday},
}

// weekdayPatterns require the "в"/"во" preposition so the bare weekday noun
// used elsewhere in a sentence does not fire. RE2's \b is ASCII-only, hence
// the explicit non-letter guards around Cyrillic words.
var weekdayPatterns = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(weekdayNames))
	for i, wd := range weekdayNames {
		res[i] = regexp.MustCompile(`(?:^|[^\p{L}])(?:в|во)\s+(` + wd.word + `)(?:$|[^\p{L}])`)
	}
	return res
}()

// throughPattern matches "через N день/дня/дней/неделю/недели/недель".
var throughPattern = regexp.MustCompile(`через\s+(\d+)\s+(день|дня|дней|неделю|недели|недель)`)

// nextWeekPhrases are synonyms of "next week"; at most one candidate is
// emitted no matter how many are present.
var nextWeekPhrases = []string{"на следующей неделе", "на будущей неделе"}

// absoluteFullPattern is DD.MM.YYYY; absoluteShortPattern is DD.MM with the
// year taken from the reference date.
var (
	absoluteFullPattern  = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)
	absoluteShortPattern = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\b`)
)

// dayPeriods maps time-of-day words to default clock times. Applied as a
// weak fallback, at most once per parse.
var dayPeriods = []struct {
	word        string
	defaultTime string
}{
	{"утром", "09:00"},
	{"днем", "14:00"},
	{"вечером", "19:00"},
	{"ночью", "23:00"},
}

// lowPriorityMarkers are checked before highPriorityMarkers so a negated
// urgency ("не срочно") never classifies as high.
var lowPriorityMarkers = []string{
	"когда-нибудь", "не спешно", "не срочно",
	"можно позже", "при случае", "если будет время",
}

var highPriorityMarkers = []string{
	"срочно", "asap", "важно", "критично",
	"немедленно", "обязательно", "приоритет",
	"горит", "пожар",
}
