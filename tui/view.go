package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// welcomeView is shown while there are no reminders
func (m Model) welcomeView() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	lines := []string{
		titleStyle.Render("No reminders yet"),
		"",
		normalStyle.Render("Press ") + selectedItemStyle.Render("n") + normalStyle.Render(" to add one, for example:"),
		inputHintStyle.Render("noon lunch"),
		inputHintStyle.Render("tomorrow 15:30 \"call the bank\""),
		inputHintStyle.Render("2 days 3 hours buy milk #shopping"),
		"",
		normalStyle.Render("Reminders in markdown use:"),
		inputHintStyle.Render("[remind_me morgen früh joggen]"),
	}

	var centered []string
	for _, line := range lines {
		centered = append(centered, lipgloss.PlaceHorizontal(width-4, lipgloss.Center, line))
	}
	return strings.Join(centered, "\n")
}

// allTags lists the distinct tags of all reminders
func (m Model) allTags() []string {
	seen := make(map[string]bool)
	var tags []string
	for _, r := range m.reminders {
		for _, t := range r.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// View renders the UI
func (m Model) View() string {
	var b strings.Builder

	if len(m.reminders) == 0 && m.mode == modeNormal {
		b.WriteString(m.welcomeView())
	} else {
		b.WriteString(m.list.View())
	}

	switch m.mode {
	case modeFilter:
		label := inputLabelStyle.Render("🔍 Filter: ")
		hint := inputHintStyle.Render("  (enter to apply, esc to cancel)")
		b.WriteString("\n")
		b.WriteString(inputBoxStyle.Render(label + m.filterInput.View() + hint))

		if strings.HasPrefix(m.filterInput.Value(), "#") {
			if tags := m.allTags(); len(tags) > 0 {
				b.WriteString("\n")
				b.WriteString(inputHintStyle.Render("  Tags: ") + tagStyle.Render("#"+strings.Join(tags, "  #")))
			}
		}

	case modeAdd:
		label := inputLabelStyle.Render("➕ New Reminder: ")
		if m.editingReminder != nil {
			label = inputLabelStyle.Render("✏️  Edit Reminder: ")
		}
		b.WriteString("\n")
		b.WriteString(inputBoxStyle.Render(label + m.addInput.View()))
		b.WriteString("\n")
		b.WriteString(inputHintStyle.Render("  Format: <when> <message>  •  when: noon | 15:30 | 2024-03-05 | tomorrow | 2 days 3 hours"))

		if m.inputError != "" {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render("  ⚠ " + m.inputError))
		}

	default:
		if m.filterInput.Value() != "" {
			b.WriteString("\n")
			b.WriteString(inputLabelStyle.Render(fmt.Sprintf("🔍 Filtered: %q", m.filterInput.Value())))
			b.WriteString(inputHintStyle.Render("  (/ to modify, esc in filter to clear)"))
		}
		if m.statusMessage != "" {
			b.WriteString("\n")
			b.WriteString(statusStyle.Render(m.statusMessage))
		}
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
	}

	return appStyle.Render(b.String())
}
