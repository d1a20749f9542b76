package remindme

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Upper bounds keep calendar arithmetic inside time.Time's range.
const (
	maxDurationMonths = 12 * 10000
	maxDurationDays   = 366 * 10000
	maxClockOffset    = float64(100 * 365 * 24 * time.Hour)
)

// durationSpec accumulates one magnitude per unit, remembering the pair that
// introduced each unit so duplicates can name both occurrences.
type durationSpec struct {
	values     map[Unit]float64
	pairs      map[Unit]string
	reported   map[Unit]bool
	duplicates []string
}

func newDurationSpec() *durationSpec {
	return &durationSpec{
		values:   make(map[Unit]float64),
		pairs:    make(map[Unit]string),
		reported: make(map[Unit]bool),
	}
}

// noteDuplicate records pair as a duplicate if unit was already given.
func (s *durationSpec) noteDuplicate(u Unit, pair string) {
	first, ok := s.pairs[u]
	if !ok {
		return
	}
	if !s.reported[u] {
		s.reported[u] = true
		s.duplicates = append(s.duplicates, first)
	}
	s.duplicates = append(s.duplicates, pair)
}

func (s *durationSpec) set(u Unit, value float64, pair string) {
	if _, ok := s.pairs[u]; !ok {
		s.pairs[u] = pair
	}
	s.values[u] = value
}

func (s *durationSpec) empty() bool {
	return len(s.values) == 0
}

func (s *durationSpec) duplicateError() *ParseError {
	if len(s.duplicates) == 0 {
		return nil
	}
	return newParseError(KindDuplicateUnit, s.duplicates,
		"duplicate duration: %s", quoteList(s.duplicates))
}

// withDuplicates extends err with any duplicates found so far.
func (s *durationSpec) withDuplicates(err *ParseError) *ParseError {
	if len(s.duplicates) == 0 {
		return err
	}
	tokens := append(append([]string{}, err.Tokens...), s.duplicates...)
	return newParseError(err.Kind, tokens, "%s\nduplicate duration: %s", err.Reason, quoteList(s.duplicates))
}

// applyTo adds the accumulated offsets to ref. Years and months are added as
// calendar months, clamping the day of month; the rest is added as days and
// clock time.
func (s *durationSpec) applyTo(ref time.Time) (time.Time, error) {
	years, months := s.values[Years], s.values[Months]
	if years != math.Trunc(years) || months != math.Trunc(months) {
		return time.Time{}, newParseError(KindInvalidValue, s.calendarPairs(),
			"years and months must be whole numbers: %s", quoteList(s.calendarPairs()))
	}

	totalMonths := years*12 + months
	days := s.values[Weeks]*7 + s.values[Days]
	wholeDays := math.Trunc(days)
	offset := (days-wholeDays)*float64(24*time.Hour) +
		s.values[Hours]*float64(time.Hour) +
		s.values[Minutes]*float64(time.Minute)

	if totalMonths > maxDurationMonths || wholeDays > maxDurationDays || offset > maxClockOffset {
		return time.Time{}, newParseError(KindInvalidValue, s.allPairs(),
			"the duration is too large: %s", quoteList(s.allPairs()))
	}

	t := addMonths(ref, int(totalMonths))
	t = t.AddDate(0, 0, int(wholeDays))
	return t.Add(time.Duration(offset)), nil
}

func (s *durationSpec) calendarPairs() []string {
	var pairs []string
	for _, u := range []Unit{Years, Months} {
		if p, ok := s.pairs[u]; ok {
			pairs = append(pairs, p)
		}
	}
	return pairs
}

func (s *durationSpec) allPairs() []string {
	var pairs []string
	for u := Years; u <= Minutes; u++ {
		if p, ok := s.pairs[u]; ok {
			pairs = append(pairs, p)
		}
	}
	return pairs
}

// addMonths moves t by n calendar months, clamping to the last day of the
// target month instead of overflowing into the next one.
func addMonths(t time.Time, n int) time.Time {
	if n == 0 {
		return t
	}
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	h, mi, sec := t.Clock()
	return time.Date(first.Year(), first.Month(), d, h, mi, sec, t.Nanosecond(), t.Location())
}

func parseValue(token string) (float64, *ParseError) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, newParseError(KindInvalidValue, []string{token},
			"the value could not be converted to a number: `%s`", token)
	}
	return v, nil
}

func parseUnit(token string) (Unit, *ParseError) {
	if u, ok := lookupUnit(strings.ToLower(token)); ok {
		return u, nil
	}
	return 0, newParseError(KindInvalidUnit, []string{token},
		"the keyword does not describe a valid duration: `%s`", token)
}

// resolveDurationStrict reads text as nothing but (value, unit) pairs. It is
// used when the message was quoted and so cannot be mixed into text.
func resolveDurationStrict(text string, ref time.Time) (time.Time, bool, error) {
	fields := strings.Fields(text)
	if len(fields)%2 != 0 {
		return time.Time{}, false, newParseError(KindInvalidSpec, []string{text},
			"invalid time specification: %s", text)
	}

	spec := newDurationSpec()
	for i := 0; i < len(fields); i += 2 {
		value, err := parseValue(fields[i])
		if err != nil {
			return time.Time{}, false, err
		}
		unit, err := parseUnit(fields[i+1])
		if err != nil {
			return time.Time{}, false, err
		}
		pair := fields[i] + " " + fields[i+1]
		spec.noteDuplicate(unit, pair)
		spec.set(unit, value, pair)
	}

	if err := spec.duplicateError(); err != nil {
		return time.Time{}, false, err
	}
	if spec.empty() {
		return time.Time{}, false, nil
	}

	at, err := spec.applyTo(ref)
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

// scanState tracks whether the previous pair left an unresolved parse error.
// Such an error only becomes fatal if a later pair parses cleanly: otherwise
// it simply marks where the message begins.
type scanState int

const (
	stateClean scanState = iota
	statePendingValue
	statePendingUnit
)

// resolveDurationHeuristic peels (value, unit) pairs off the front of text
// until the message starts, and returns what is left as the message.
func resolveDurationHeuristic(text string, ref time.Time) (time.Time, string, bool, error) {
	var (
		spec     = newDurationSpec()
		state    = stateClean
		pending  *ParseError
		accepted []string
		rest     = text
	)

scan:
	for rest != "" {
		var value, unitToken string
		value, unitToken, rest = splitPair(rest)
		if value == "" {
			break
		}

		v, valueErr := parseValue(value)
		unit, unitErr := parseUnit(unitToken)
		if unitErr == nil {
			spec.noteDuplicate(unit, value+" "+unitToken)
		}

		switch {
		case valueErr == nil && unitErr == nil:
			if state != stateClean {
				return time.Time{}, "", false, spec.withDuplicates(pending)
			}
			accepted = append(accepted, value, unitToken)
			spec.set(unit, v, value+" "+unitToken)

		case valueErr != nil && unitErr != nil:
			break scan

		default:
			if state != stateClean {
				break scan
			}
			if valueErr != nil {
				state, pending = statePendingValue, valueErr
			} else {
				state, pending = statePendingUnit, unitErr
			}
		}
	}

	if err := spec.duplicateError(); err != nil {
		return time.Time{}, "", false, err
	}
	if spec.empty() {
		return time.Time{}, "", false, nil
	}

	at, err := spec.applyTo(ref)
	if err != nil {
		return time.Time{}, "", false, err
	}
	return at, stripTokens(text, accepted), true, nil
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "`" + item + "`"
	}
	return strings.Join(quoted, ", ")
}
