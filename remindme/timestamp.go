package remindme

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Mode restricts which literals the timestamp resolver accepts.
type Mode int

const (
	ModeDateTime Mode = iota
	ModeDate
	ModeTime
)

func (m Mode) String() string {
	switch m {
	case ModeDateTime:
		return "datetime"
	case ModeDate:
		return "date"
	case ModeTime:
		return "time"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// clock is a time of day without seconds.
type clock struct {
	hour, minute int
}

func (c clock) sinceMidnight() time.Duration {
	return time.Duration(c.hour)*time.Hour + time.Duration(c.minute)*time.Minute
}

// notAfter reports whether c is at or before the clock of ref.
func (c clock) notAfter(ref time.Time) bool {
	return c.sinceMidnight() <= sinceMidnight(ref)
}

// resolveTimestamp reads an explicit date and/or time from the start of text,
// in either order. ok is false when neither literal is present.
func resolveTimestamp(text string, mode Mode, ref time.Time) (at time.Time, rest string, ok bool, err error) {
	if mode < ModeDateTime || mode > ModeTime {
		return time.Time{}, "", false, fmt.Errorf("%w: %v", ErrInvalidMode, mode)
	}

	text = strings.TrimSpace(text)
	loc := ref.Location()

	if literal, pattern, found := matchDate(text); found {
		if mode == ModeTime {
			return time.Time{}, "", false, errUnexpectedDate(literal)
		}

		day, err := parseDate(literal, pattern, ref)
		if err != nil {
			return time.Time{}, "", false, err
		}
		if day.Before(dateOf(ref)) {
			return time.Time{}, "", false, errDateInPast(literal)
		}

		rest := trimLeft(text[len(literal):])

		timeLiteral, c, found, err := matchTime(rest)
		if err != nil {
			return time.Time{}, "", false, err
		}
		if !found {
			if !day.After(dateOf(ref)) {
				return time.Time{}, "", false, newParseError(KindDateNotInFuture, []string{literal},
					"the date must be in the future when no time is given: `%s`", literal)
			}
			return onDay(day, defaultHour, 0, loc), rest, true, nil
		}

		if mode != ModeDateTime {
			return time.Time{}, "", false, newParseError(KindUnexpectedTime, []string{timeLiteral},
				"the timestamp contains a time although only a date is expected: `%s`", timeLiteral)
		}
		if day.Equal(dateOf(ref)) && c.notAfter(ref) {
			return time.Time{}, "", false, errTimeInPast(timeLiteral)
		}

		rest = trimLeft(rest[len(timeLiteral):])
		return onDay(day, c.hour, c.minute, loc), rest, true, nil
	}

	timeLiteral, c, found, err := matchTime(text)
	if err != nil {
		return time.Time{}, "", false, err
	}
	if !found {
		return time.Time{}, "", false, nil
	}
	if mode == ModeDate {
		return time.Time{}, "", false, newParseError(KindUnexpectedTime, []string{timeLiteral},
			"the timestamp contains a time although only a date is expected: `%s`", timeLiteral)
	}

	rest = trimLeft(text[len(timeLiteral):])

	literal, pattern, found := matchDate(rest)
	if !found {
		day := ref
		if c.notAfter(ref) {
			day = ref.AddDate(0, 0, 1)
		}
		return onDay(day, c.hour, c.minute, loc), rest, true, nil
	}

	if mode != ModeDateTime {
		return time.Time{}, "", false, errUnexpectedDate(literal)
	}

	day, err := parseDate(literal, pattern, ref)
	if err != nil {
		return time.Time{}, "", false, err
	}
	if day.Before(dateOf(ref)) {
		return time.Time{}, "", false, errDateInPast(literal)
	}
	if day.Equal(dateOf(ref)) && c.notAfter(ref) {
		return time.Time{}, "", false, errTimeInPast(timeLiteral)
	}

	rest = trimLeft(rest[len(literal):])
	return onDay(day, c.hour, c.minute, loc), rest, true, nil
}

// matchDate returns the date literal at the start of text and the pattern
// that matched it.
func matchDate(text string) (string, datePattern, bool) {
	for _, p := range datePatterns {
		// Matching only fails on timeouts, and none are configured.
		m, _ := p.re.FindStringMatch(text)
		if m != nil {
			return m.GroupByName("date").String(), p, true
		}
	}
	return "", datePattern{}, false
}

// parseDate reads a matched date literal as a calendar date, completing it
// with the reference year if the literal has none.
func parseDate(literal string, p datePattern, ref time.Time) (time.Time, error) {
	value, layout := literal, p.layout
	if !p.hasYear {
		value += " " + strconv.Itoa(ref.Year())
		layout += " 2006"
	}

	t, err := time.ParseInLocation(layout, value, time.UTC)
	if err != nil {
		return time.Time{}, newParseError(KindInvalidLiteral, []string{literal},
			"not a valid date: `%s`", literal)
	}
	return t, nil
}

// matchTime returns the time literal at the start of text and the clock it
// denotes. "24:00" is read as "00:00".
func matchTime(text string) (string, clock, bool, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if strings.HasPrefix(lower, "24:00") {
		lower = "00:00" + lower[len("24:00"):]
	}

	for _, p := range timePatterns {
		m, _ := p.re.FindStringMatch(lower)
		if m == nil {
			continue
		}

		literal := m.GroupByName("time").String()
		hour, err := strconv.Atoi(m.GroupByName("hour").String())
		if err != nil {
			return "", clock{}, false, errInvalidTime(literal)
		}
		minute, err := strconv.Atoi(m.GroupByName("minute").String())
		if err != nil {
			return "", clock{}, false, errInvalidTime(literal)
		}

		if p.twelveHr {
			if hour < 1 || hour > 12 {
				return "", clock{}, false, errInvalidTime(literal)
			}
			pm := m.GroupByName("meridiem").String() == "pm"
			switch {
			case pm && hour < 12:
				hour += 12
			case !pm && hour == 12:
				hour = 0
			}
		} else if hour > 23 {
			return "", clock{}, false, errInvalidTime(literal)
		}

		return literal, clock{hour: hour, minute: minute}, true, nil
	}

	return "", clock{}, false, nil
}

func errUnexpectedDate(literal string) *ParseError {
	return newParseError(KindUnexpectedDate, []string{literal},
		"the timestamp contains a date although only a time is expected: `%s`", literal)
}

func errDateInPast(literal string) *ParseError {
	return newParseError(KindDateInPast, []string{literal},
		"the date must not be in the past: `%s`", literal)
}

func errTimeInPast(literal string) *ParseError {
	return newParseError(KindTimeInPast, []string{literal},
		"the time must not be in the past: `%s`", literal)
}

func errInvalidTime(literal string) *ParseError {
	return newParseError(KindInvalidLiteral, []string{literal},
		"not a valid time: `%s`", literal)
}
