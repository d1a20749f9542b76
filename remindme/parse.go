// Package remindme turns a free-form reminder specification such as
// "tomorrow noon lunch with Anna" or `2 days 3 hours "buy milk"` into the
// point in time the reminder is due and its message.
//
// Interpretations are tried in a fixed order and the first one that matches
// wins: part-of-day keywords, explicit date/time literals, then relative
// durations. English and German keywords are understood. Times carry no time
// zone; results use the location of the reference time.
package remindme

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Result is a successfully parsed reminder.
type Result struct {
	At      time.Time
	Message string
}

// Option configures a Parser.
type Option func(*Parser)

// RequireMessage makes Parse fail when no message text remains.
func RequireMessage() Option {
	return func(p *Parser) {
		p.requireMessage = true
	}
}

// Parser parses reminder specifications. The zero value is ready to use and
// accepts reminders without a message. A Parser is safe for concurrent use.
type Parser struct {
	requireMessage bool
}

// New returns a Parser configured with opts.
func New(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = New()

// Parse parses text relative to ref with the default Parser. A zero ref
// means the current local time.
func Parse(text string, ref time.Time) (time.Time, string, error) {
	res, err := defaultParser.Parse(text, ref)
	if err != nil {
		return time.Time{}, "", err
	}
	return res.At, res.Message, nil
}

// Parse resolves text to a due time and message relative to ref (the current
// local time if ref is zero). Any error caused by the input is a *ParseError.
func (p *Parser) Parse(text string, ref time.Time) (Result, error) {
	if ref.IsZero() {
		ref = time.Now()
	}

	spec := strings.TrimSpace(text)

	tomorrow := false
	for _, kw := range tomorrowKeywords {
		if rest, ok := cutPrefixFold(spec, kw); ok {
			spec = strings.TrimSpace(rest)
			tomorrow = true
			break
		}
	}

	spec, quotedMessage, quoted, err := extractQuoted(spec)
	if err != nil {
		return Result{}, err
	}

	at, remaining, ok := resolveDayPart(spec, tomorrow, ref)

	if !ok {
		mode := ModeDateTime
		if tomorrow {
			mode = ModeTime
		}
		at, remaining, ok, err = resolveTimestamp(spec, mode, ref)
		if err != nil {
			return Result{}, err
		}
	}

	if !ok {
		switch {
		case tomorrow:
			// "tomorrow <message>": everything left is the message.
			at = onDay(ref.AddDate(0, 0, 1), defaultHour, 0, ref.Location())
			remaining, ok = spec, true
		case quoted:
			at, ok, err = resolveDurationStrict(spec, ref)
			remaining = ""
		default:
			at, remaining, ok, err = resolveDurationHeuristic(spec, ref)
		}
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return Result{}, newParseError(KindUnreadable, nil,
				"the reminder could not be read, please check your input")
		}
	}

	remaining = strings.TrimSpace(remaining)
	if quoted && remaining != "" {
		return Result{}, newParseError(KindTrailingArgument, []string{remaining},
			"unreadable argument found: %s", remaining)
	}

	if tomorrow && dateOf(at).Before(dateOf(ref.AddDate(0, 0, 1))) {
		at = at.AddDate(0, 0, 1)
	}
	at = truncateSeconds(at)

	message := remaining
	if quoted {
		message = strings.TrimSpace(quotedMessage)
	}

	if utf8.RuneCountInString(message) > MaxMessageLength {
		return Result{}, newParseError(KindMessageTooLong, nil,
			"the reminder message is too long, it may have at most %d characters", MaxMessageLength)
	}
	if p.requireMessage && message == "" {
		return Result{}, newParseError(KindEmptyMessage, nil,
			"the reminder has no message")
	}

	return Result{At: at, Message: message}, nil
}
