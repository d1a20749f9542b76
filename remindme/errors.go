package remindme

import (
	"errors"
	"fmt"
)

// ErrInvalidMode is returned for a timestamp mode outside Mode's range.
// It signals a programming error and is never a *ParseError.
var ErrInvalidMode = errors.New("remindme: invalid timestamp mode")

// Kind classifies a ParseError so callers can localize or branch on it.
type Kind int

const (
	KindUnreadable Kind = iota + 1
	KindQuoting
	KindTrailingArgument
	KindMessageTooLong
	KindEmptyMessage
	KindUnexpectedDate
	KindUnexpectedTime
	KindDateInPast
	KindTimeInPast
	KindDateNotInFuture
	KindInvalidLiteral
	KindInvalidSpec
	KindInvalidValue
	KindInvalidUnit
	KindDuplicateUnit
)

var kindNames = map[Kind]string{
	KindUnreadable:       "unreadable",
	KindQuoting:          "quoting",
	KindTrailingArgument: "trailing_argument",
	KindMessageTooLong:   "message_too_long",
	KindEmptyMessage:     "empty_message",
	KindUnexpectedDate:   "unexpected_date",
	KindUnexpectedTime:   "unexpected_time",
	KindDateInPast:       "date_in_past",
	KindTimeInPast:       "time_in_past",
	KindDateNotInFuture:  "date_not_in_future",
	KindInvalidLiteral:   "invalid_literal",
	KindInvalidSpec:      "invalid_spec",
	KindInvalidValue:     "invalid_value",
	KindInvalidUnit:      "invalid_unit",
	KindDuplicateUnit:    "duplicate_unit",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseError reports input the user has to fix. Reason is meant to be shown
// to the user as is; Tokens holds the offending parts of the input, if any.
type ParseError struct {
	Kind   Kind
	Reason string
	Tokens []string
}

func (e *ParseError) Error() string {
	return e.Reason
}

// AsParseError unwraps err to a *ParseError.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func newParseError(kind Kind, tokens []string, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
		Tokens: tokens,
	}
}
