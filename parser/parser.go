package parser

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"remindbot/reminder"
	"remindbot/remindme"
)

// Pattern matches [remind_me <content>]
var remindPattern = regexp.MustCompile(`\[remind_me\s+([^\]]+)\]`)

// Pattern matches #tag tokens (word characters after #, must be preceded by start or whitespace)
var tagPattern = regexp.MustCompile(`(?:^|\s)#(\w+)`)

// Directives in files must carry a message.
var directiveParser = remindme.New(remindme.RequireMessage())

// Skipped is a directive that could not be turned into a reminder.
type Skipped struct {
	LineNumber int
	Directive  string
	Err        error
}

func (s Skipped) String() string {
	return fmt.Sprintf("line %d: [remind_me %s]: %v", s.LineNumber, s.Directive, s.Err)
}

// ParseFile reads a markdown file and extracts all reminders.
// relativeTo is used as the base time for relative datetime parsing.
// Directives that do not parse are returned as skipped rather than failing
// the whole file.
func ParseFile(filepath string, relativeTo time.Time) ([]*reminder.Reminder, []Skipped, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var (
		reminders []*reminder.Reminder
		skipped   []Skipped
	)
	scanner := bufio.NewScanner(file)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()

		matches := remindPattern.FindAllStringSubmatch(line, -1)
		for _, match := range matches {
			if len(match) < 2 {
				continue
			}

			content := strings.TrimSpace(match[1])
			r, err := parseReminderContent(content, relativeTo)
			if err != nil {
				skipped = append(skipped, Skipped{LineNumber: lineNumber, Directive: content, Err: err})
				continue
			}

			r.Source = filepath
			r.LineNumber = lineNumber
			reminders = append(reminders, r)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading file: %w", err)
	}

	return reminders, skipped, nil
}

// ExtractTags extracts #tag tokens from text and returns the cleaned text and tags.
// Tags must be preceded by whitespace or be at the start of the string.
func ExtractTags(text string) (cleanText string, tags []string) {
	matches := tagPattern.FindAllStringSubmatch(text, -1)
	for _, match := range matches {
		if len(match) >= 2 {
			tags = append(tags, match[1])
		}
	}

	// Remove tag tokens from text (including the # prefix)
	cleanText = tagPattern.ReplaceAllString(text, "")
	cleanText = strings.TrimSpace(cleanText)
	// Clean up any double spaces left behind
	cleanText = strings.Join(strings.Fields(cleanText), " ")

	return cleanText, tags
}

// parseReminderContent parses the content inside [remind_me <content>].
func parseReminderContent(content string, relativeTo time.Time) (*reminder.Reminder, error) {
	res, err := directiveParser.Parse(content, relativeTo)
	if err != nil {
		return nil, err
	}

	message, tags := ExtractTags(res.Message)
	if message == "" {
		return nil, fmt.Errorf("reminder has only tags and no message: %s", content)
	}

	r := reminder.New(res.At, message, "", "")
	r.Tags = tags
	return r, nil
}
