package remindme

import "strings"

const quoteChar = `"`

// extractQuoted splits text into the time specification before the first quote
// and the message between the first and the last quote. Without quotes the
// text is returned unchanged and quoted is false.
func extractQuoted(text string) (spec, message string, quoted bool, err error) {
	text = strings.TrimSpace(text)

	switch strings.Count(text, quoteChar) {
	case 0:
		return text, "", false, nil
	case 1:
		return "", "", false, newParseError(KindQuoting, []string{text},
			"message is not quoted correctly: %s\nuse either no or two quotation marks", text)
	}

	start := strings.Index(text, quoteChar)
	end := strings.LastIndex(text, quoteChar)

	if trailing := strings.TrimSpace(text[end+1:]); trailing != "" {
		return "", "", false, newParseError(KindTrailingArgument, []string{trailing},
			"invalid argument after quoted text: `%s`", trailing)
	}

	return strings.TrimSpace(text[:start]), text[start+1 : end], true, nil
}
