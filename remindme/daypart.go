package remindme

import "time"

// resolveDayPart matches a part-of-day keyword at the start of text. A slot
// that has already passed today resolves to tomorrow; "tomorrow midnight"
// resolves to the midnight ending tomorrow.
func resolveDayPart(text string, tomorrow bool, ref time.Time) (time.Time, string, bool) {
	text = trimLeft(text)

	for _, part := range dayParts {
		for _, kw := range part.keywords {
			rest, ok := cutPrefixFold(text, kw)
			if !ok {
				continue
			}

			days := 0
			switch {
			case tomorrow && part.hour == 0:
				days = 2
			case tomorrow || time.Duration(part.hour)*time.Hour <= sinceMidnight(ref):
				days = 1
			}

			day := ref.AddDate(0, 0, days)
			return onDay(day, part.hour, 0, ref.Location()), trimLeft(rest), true
		}
	}

	return time.Time{}, "", false
}
