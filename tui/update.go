package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"remindbot/reminder"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeFilter:
			return m.updateFilterMode(msg)
		case modeAdd:
			return m.updateAddMode(msg)
		default:
			return m.updateNormalMode(msg)
		}

	case TickMsg:
		if m.triggerDue() {
			m.refreshList()
		}
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		listHeight := msg.Height - 10
		if listHeight < 5 {
			listHeight = 5
		}
		m.list.SetSize(msg.Width-4, listHeight)

	case FileUpdateMsg:
		m.applyFileUpdate(msg)
		return m, m.waitForFileUpdate()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle 'dd' for delete (vim-style)
	if msg.String() == "d" {
		if m.pendingDelete {
			m.deleteCurrentReminder()
			m.pendingDelete = false
		} else {
			m.pendingDelete = true
		}
		return m, nil
	}
	m.pendingDelete = false

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Filter):
		m.mode = modeFilter
		m.filterInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Add):
		m.mode = modeAdd
		m.addInput.Reset()
		m.addInput.Focus()
		m.inputError = ""
		m.editingReminder = nil
		return m, textinput.Blink

	case key.Matches(msg, keys.Edit):
		r := m.selectedReminder()
		if r == nil {
			return m, nil
		}
		m.mode = modeAdd
		m.editingReminder = r
		m.addInput.SetValue(editPrefill(r))
		m.addInput.Focus()
		m.addInput.CursorEnd()
		m.inputError = ""
		return m, textinput.Blink

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, keys.Done):
		r := m.selectedReminder()
		if r != nil && r.Status != reminder.Acknowledged {
			m.setStatus(r, reminder.Acknowledged)
		}
		return m, nil

	case key.Matches(msg, keys.Undone):
		r := m.selectedReminder()
		if r != nil && r.Status == reminder.Acknowledged {
			status := reminder.Pending
			if !m.now().Before(r.DateTime) {
				status = reminder.Triggered
			}
			m.setStatus(r, status)
		}
		return m, nil

	case key.Matches(msg, keys.Snooze):
		if r := m.selectedReminder(); r != nil {
			m.snooze(r)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateFilterMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = modeNormal
		m.filterInput.Blur()
		m.filterInput.Reset()
		m.refreshList()
		return m, nil
	case tea.KeyEnter:
		m.mode = modeNormal
		m.filterInput.Blur()
		// Keep the filter applied
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.refreshList()
	return m, cmd
}

func (m Model) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = modeNormal
		m.addInput.Blur()
		m.addInput.Reset()
		m.inputError = ""
		m.editingReminder = nil
		return m, nil
	case tea.KeyEnter:
		var err error
		if m.editingReminder != nil {
			err = m.updateReminder(m.editingReminder, m.addInput.Value())
		} else {
			err = m.addReminder(m.addInput.Value())
		}
		if err != nil {
			m.inputError = inputErrorText(err)
			return m, nil
		}
		m.mode = modeNormal
		m.addInput.Blur()
		m.addInput.Reset()
		m.inputError = ""
		m.editingReminder = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}
