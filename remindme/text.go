package remindme

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// cutPrefixFold reports whether s starts with the lower-case keyword, ignoring
// case, and returns the text after it.
func cutPrefixFold(s, keyword string) (string, bool) {
	i := 0
	for _, kr := range keyword {
		if i >= len(s) {
			return s, false
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.ToLower(r) != kr {
			return s, false
		}
		i += size
	}
	return s[i:], true
}

func trimLeft(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}

// nextField splits off the first whitespace-separated field.
func nextField(s string) (field, rest string) {
	s = trimLeft(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], trimLeft(s[i:])
}

// splitPair peels a (value, unit) pair off the front of s. Missing fields are
// returned empty; rest keeps everything after the unit untouched.
func splitPair(s string) (value, unit, rest string) {
	value, rest = nextField(s)
	unit, rest = nextField(rest)
	return value, unit, rest
}

// stripTokens removes the given tokens, in order, from the front of text.
func stripTokens(text string, tokens []string) string {
	text = strings.TrimSpace(text)
	for _, tok := range tokens {
		text = trimLeft(text[len(tok):])
	}
	return text
}

// dateOf drops the clock and zone of t, keeping its calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sinceMidnight(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
}

// onDay places hour:minute on the calendar date of day, in loc.
func onDay(day time.Time, hour, minute int, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, loc)
}

func truncateSeconds(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, 0, t.Location())
}
