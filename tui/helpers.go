package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"remindbot/parser"
	"remindbot/reminder"
	"remindbot/remindme"
)

// refreshList updates the list items from the current reminders, applying filter if active
func (m *Model) refreshList() {
	m.list.SetItems(remindersToItems(m.getFilteredReminders()))
}

// reload re-reads the user's reminders from the store.
func (m *Model) reload() {
	reminders, err := m.store.ForUser(context.Background(), m.user)
	if err != nil {
		m.statusMessage = "could not load reminders: " + err.Error()
		return
	}
	m.reminders = reminders
	m.refreshList()
}

// selectedReminder returns the currently selected reminder, or nil if none
func (m *Model) selectedReminder() *reminder.Reminder {
	item := m.list.SelectedItem()
	if item == nil {
		return nil
	}
	ri, ok := item.(reminderItem)
	if !ok {
		return nil
	}
	return ri.reminder
}

// setStatus changes a reminder's status in the store and in memory.
func (m *Model) setStatus(r *reminder.Reminder, status reminder.Status) {
	if err := m.store.SetStatus(context.Background(), r.ID, status); err != nil {
		m.statusMessage = "could not update reminder: " + err.Error()
		return
	}
	r.Status = status
	m.refreshList()
}

// deleteCurrentReminder removes the currently selected reminder
func (m *Model) deleteCurrentReminder() {
	r := m.selectedReminder()
	if r == nil {
		return
	}
	if err := m.store.RemoveReminder(context.Background(), r.ID); err != nil {
		m.statusMessage = "could not delete reminder: " + err.Error()
		return
	}
	for i, rem := range m.reminders {
		if rem == r {
			m.reminders = append(m.reminders[:i], m.reminders[i+1:]...)
			break
		}
	}
	m.statusMessage = "deleted: " + r.Message
	m.refreshList()
}

// parseInput reads a reminder specification typed by the user.
func (m *Model) parseInput(input string) (remindme.Result, []string, error) {
	res, err := m.parser.Parse(input, m.now())
	if err != nil {
		return remindme.Result{}, nil, err
	}
	message, tags := parser.ExtractTags(res.Message)
	if message == "" {
		return remindme.Result{}, nil, errors.New("the reminder has no message")
	}
	res.Message = message
	return res, tags, nil
}

// addReminder parses the input and adds a new reminder
func (m *Model) addReminder(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("empty input")
	}

	res, tags, err := m.parseInput(input)
	if err != nil {
		return err
	}

	r := reminder.New(res.At, res.Message, m.user, "")
	r.Tags = tags
	if err := m.store.AddReminder(context.Background(), r, m.user); err != nil {
		return fmt.Errorf("could not save reminder: %w", err)
	}

	m.reminders = append(m.reminders, r)
	reminder.SortByDateTime(m.reminders)
	m.statusMessage = "reminder set for " + r.Display()
	m.refreshList()
	return nil
}

// editPrefill renders r as input that parses back to the same reminder. The
// message is quoted so quotes inside it survive, and tags go inside the quotes.
func editPrefill(r *reminder.Reminder) string {
	var b strings.Builder
	b.WriteString(r.DateTime.Format("2006-01-02 15:04"))
	b.WriteString(` "`)
	b.WriteString(r.Message)
	for _, tag := range r.Tags {
		b.WriteString(" #" + tag)
	}
	b.WriteString(`"`)
	return b.String()
}

// updateReminder parses the input and updates an existing reminder
func (m *Model) updateReminder(r *reminder.Reminder, input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("empty input")
	}

	res, tags, err := m.parseInput(input)
	if err != nil {
		return err
	}

	updated := *r
	updated.DateTime = res.At
	updated.Message = res.Message
	updated.Tags = tags
	if updated.Status == reminder.Triggered {
		updated.Status = reminder.Pending
	}

	if err := m.store.AddReminder(context.Background(), &updated, m.user); err != nil {
		return fmt.Errorf("could not save reminder: %w", err)
	}

	*r = updated
	reminder.SortByDateTime(m.reminders)
	m.statusMessage = "reminder moved to " + r.Display()
	m.refreshList()
	return nil
}

// snooze pushes r back by snoozeSpec from now and makes it pending again.
func (m *Model) snooze(r *reminder.Reminder) {
	at, _, err := remindme.Parse(snoozeSpec, m.now())
	if err != nil {
		m.statusMessage = "could not snooze: " + err.Error()
		return
	}

	snoozed := *r
	snoozed.DateTime = at
	snoozed.Status = reminder.Pending
	if err := m.store.AddReminder(context.Background(), &snoozed, m.user); err != nil {
		m.statusMessage = "could not snooze: " + err.Error()
		return
	}

	*r = snoozed
	reminder.SortByDateTime(m.reminders)
	m.statusMessage = "snoozed until " + r.Display()
	m.refreshList()
}

// triggerDue marks pending reminders whose time has come.
func (m *Model) triggerDue() bool {
	now := m.now()
	changed := false
	for _, r := range m.reminders {
		if r.IsDue(now) {
			if err := m.store.SetStatus(context.Background(), r.ID, reminder.Triggered); err != nil {
				m.statusMessage = "could not update reminder: " + err.Error()
				continue
			}
			r.Status = reminder.Triggered
			changed = true
		}
	}
	return changed
}

// applyFileUpdate stores the reminders of a re-parsed markdown file.
func (m *Model) applyFileUpdate(msg FileUpdateMsg) {
	if msg.Err != nil {
		m.statusMessage = fmt.Sprintf("could not read %s: %v", msg.FilePath, msg.Err)
		return
	}
	if _, err := m.store.ReplaceSource(context.Background(), msg.FilePath, msg.Reminders, m.user); err != nil {
		m.statusMessage = "could not store reminders: " + err.Error()
		return
	}
	m.statusMessage = fmt.Sprintf("%s: %d reminders, %d skipped", msg.FilePath, len(msg.Reminders), len(msg.Skipped))
	m.reload()
}

func (m Model) getFilteredReminders() []*reminder.Reminder {
	filterText := strings.ToLower(m.filterInput.Value())
	if filterText == "" {
		return m.reminders
	}

	if tag, ok := strings.CutPrefix(filterText, "#"); ok {
		var filtered []*reminder.Reminder
		for _, r := range m.reminders {
			for _, t := range r.Tags {
				if strings.HasPrefix(strings.ToLower(t), tag) {
					filtered = append(filtered, r)
					break
				}
			}
		}
		return filtered
	}

	var filtered []*reminder.Reminder
	for _, r := range m.reminders {
		if strings.Contains(strings.ToLower(r.Message), filterText) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// inputErrorText shows parse errors by their reason alone.
func inputErrorText(err error) string {
	if pe, ok := remindme.AsParseError(err); ok {
		return pe.Reason
	}
	return err.Error()
}
