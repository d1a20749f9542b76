package remindme

import (
	"github.com/dlclark/regexp2"
)

// MaxMessageLength is the longest message (in characters) a reminder may carry.
const MaxMessageLength = 1750

// defaultHour is used whenever a day is known but no time of day was given.
const defaultHour = 9

// tomorrowKeywords shift every later resolution by one day.
var tomorrowKeywords = []string{"tomorrow", "morgen"}

// dayPart is a named time slot of the day.
type dayPart struct {
	hour     int
	keywords []string
}

// dayParts is scanned top to bottom; the first keyword prefixing the input wins.
var dayParts = []dayPart{
	{hour: 5, keywords: []string{"dawn", "tagesanbruch"}},
	{hour: 7, keywords: []string{"morning", "früh", "frueh"}},
	{hour: 10, keywords: []string{"forenoon", "vormittag"}},
	{hour: 12, keywords: []string{"noon", "midday", "lunchtime", "mittag"}},
	{hour: 14, keywords: []string{"afternoon", "nachmittag"}},
	{hour: 16, keywords: []string{"teatime", "teezeit"}},
	{hour: 18, keywords: []string{"evening", "abend"}},
	{hour: 22, keywords: []string{"night", "nacht"}},
	{hour: 0, keywords: []string{"midnight", "mitternacht"}},
}

// Unit is a calendar or clock unit a duration may be expressed in.
type Unit int

const (
	Years Unit = iota
	Months
	Weeks
	Days
	Hours
	Minutes
)

func (u Unit) String() string {
	switch u {
	case Years:
		return "years"
	case Months:
		return "months"
	case Weeks:
		return "weeks"
	case Days:
		return "days"
	case Hours:
		return "hours"
	case Minutes:
		return "minutes"
	default:
		return "unknown"
	}
}

// unitKeywords lists the accepted spellings per unit. "m" is months, "min" minutes.
var unitKeywords = []struct {
	unit     Unit
	keywords []string
}{
	{Years, []string{"y", "years", "year", "jahre", "jahr"}},
	{Months, []string{"m", "months", "month", "monate", "monat"}},
	{Weeks, []string{"w", "weeks", "week", "wochen", "woche"}},
	{Days, []string{"d", "days", "day", "tage", "tag"}},
	{Hours, []string{"h", "hours", "hour", "stunden", "stunde"}},
	{Minutes, []string{"min", "minutes", "minute", "minuten"}},
}

// datePattern pairs a literal grammar with the time layout that reads it.
// Layouts without a year get the reference year appended before parsing.
type datePattern struct {
	re      *regexp2.Regexp
	layout  string
	hasYear bool
}

// timePattern captures hour, minute and an optional am/pm marker.
type timePattern struct {
	re       *regexp2.Regexp
	twelveHr bool
}

// Date and time literals accept ASCII digits only; regexp2's \d also matches
// other Unicode digits.
//
// Date literals, tried in order: ISO with 4- and 2-digit years, bare month-day,
// then European dotted and US slashed forms.
var datePatterns = []datePattern{
	newDatePattern(`(?<date>[0-9][0-9][0-9][0-9]-[01]?[0-9]-[0123]?[0-9])`, "2006-1-2", true),
	newDatePattern(`(?<date>[0-9][0-9]-[01]?[0-9]-[0123]?[0-9])`, "06-1-2", true),
	newDatePattern(`(?<date>[01]?[0-9]-[0123]?[0-9])`, "1-2", false),
	newDatePattern(`(?<date>[0123]?[0-9]\.[01]?[0-9]\.[0-9][0-9][0-9][0-9])`, "2.1.2006", true),
	newDatePattern(`(?<date>[0123]?[0-9]\.[01]?[0-9]\.[0-9][0-9])`, "2.1.06", true),
	newDatePattern(`(?<date>[0123]?[0-9]\.[01]?[0-9]\.)`, "2.1.", false),
	newDatePattern(`(?<date>[01]?[0-9]/[0123]?[0-9]/[0-9][0-9][0-9][0-9])`, "1/2/2006", true),
	newDatePattern(`(?<date>[01]?[0-9]/[0123]?[0-9]/[0-9][0-9])`, "1/2/06", true),
	newDatePattern(`(?<date>[01]?[0-9]/[0123]?[0-9])`, "1/2", false),
}

// Time literals: 12-hour clock with a space, without a space, then 24-hour.
// The 24-hour form must not be followed by a meridiem marker.
var timePatterns = []timePattern{
	newTimePattern(`(?<time>(?<hour>[012]?[0-9]):(?<minute>[0-5][0-9]) (?<meridiem>am|pm))`, true),
	newTimePattern(`(?<time>(?<hour>[012]?[0-9]):(?<minute>[0-5][0-9])(?<meridiem>am|pm))`, true),
	newTimePattern(`(?<time>(?<hour>[012]?[0-9]):(?<minute>[0-5][0-9]))(?! ?(am|pm))`, false),
}

func newDatePattern(expr, layout string, hasYear bool) datePattern {
	return datePattern{
		re:      regexp2.MustCompile(`^`+expr, regexp2.IgnoreCase),
		layout:  layout,
		hasYear: hasYear,
	}
}

func newTimePattern(expr string, twelveHr bool) timePattern {
	return timePattern{
		re:       regexp2.MustCompile(`^`+expr, regexp2.IgnoreCase),
		twelveHr: twelveHr,
	}
}

// lookupUnit returns the unit a keyword stands for.
func lookupUnit(keyword string) (Unit, bool) {
	for _, entry := range unitKeywords {
		for _, kw := range entry.keywords {
			if keyword == kw {
				return entry.unit, true
			}
		}
	}
	return 0, false
}
