package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// snoozeSpec is the duration a snoozed reminder is pushed back by.
const snoozeSpec = "10 min"

type keyMap struct {
	Up   key.Binding
	Down key.Binding

	Done   key.Binding
	Undone key.Binding
	Snooze key.Binding

	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Filter key.Binding

	Help key.Binding
	Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Done, k.Snooze, k.Add, k.Filter, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Done, k.Undone, k.Snooze},
		{k.Add, k.Edit, k.Delete, k.Filter},
		{k.Help, k.Quit},
	}
}

var _ help.KeyMap = keyMap{}

func binding(keys []string, helpKey, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

var keys = keyMap{
	Up:     binding([]string{"up", "k"}, "↑/k", "up"),
	Down:   binding([]string{"down", "j"}, "↓/j", "down"),
	Done:   binding([]string{"enter", " "}, "enter", "acknowledge"),
	Undone: binding([]string{"u"}, "u", "reopen"),
	Snooze: binding([]string{"s"}, "s", "snooze "+snoozeSpec),
	Add:    binding([]string{"n"}, "n", "new reminder"),
	Edit:   binding([]string{"e"}, "e", "reschedule"),
	// "d" arms deletion, a second "d" confirms
	Delete: binding([]string{"d"}, "dd", "delete"),
	Filter: binding([]string{"/"}, "/", "filter, #tag"),
	Help:   binding([]string{"?"}, "?", "more keys"),
	Quit:   binding([]string{"q", "ctrl+c"}, "q", "quit"),
}
