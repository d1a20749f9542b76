package tui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"remindbot/reminder"
)

// reminderItem wraps a Reminder to implement list.Item
type reminderItem struct {
	reminder *reminder.Reminder
}

func (i reminderItem) Title() string {
	return i.reminder.Message
}

func (i reminderItem) Description() string {
	return i.reminder.Display()
}

func (i reminderItem) FilterValue() string {
	return i.reminder.Message
}

// itemDelegate renders one reminder per line
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(reminderItem)
	if !ok {
		return
	}
	r := i.reminder

	var statusIcon string
	var style lipgloss.Style

	switch r.Status {
	case reminder.Triggered:
		statusIcon = "🔔"
		style = triggeredStyle
	case reminder.Acknowledged:
		statusIcon = "✓"
		style = acknowledgedStyle
	default:
		statusIcon = "○"
		style = normalStyle
	}

	if index == m.Index() {
		statusIcon = "▸"
		if r.Status == reminder.Pending {
			style = selectedItemStyle
		}
	}

	line := fmt.Sprintf("%s %-18s %-10s %s", statusIcon, r.Display(), r.Status.String(), r.Message)
	fmt.Fprint(w, style.Render(line))

	if len(r.Tags) > 0 {
		fmt.Fprint(w, tagStyle.Render("  #"+strings.Join(r.Tags, " #")))
	}
	if r.Source != "" {
		fmt.Fprint(w, sourceStyle.Render(fmt.Sprintf("  %s:%d", filepath.Base(r.Source), r.LineNumber)))
	}
}

func remindersToItems(reminders []*reminder.Reminder) []list.Item {
	items := make([]list.Item, len(reminders))
	for i, r := range reminders {
		items[i] = reminderItem{reminder: r}
	}
	return items
}
