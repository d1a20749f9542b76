// Package tui is the interactive terminal front end for reminders.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"remindbot/reminder"
	"remindbot/remindme"
	"remindbot/watcher"
)

// Store is the reminder persistence the TUI works on.
type Store interface {
	ForUser(ctx context.Context, user string) ([]*reminder.Reminder, error)
	AddReminder(ctx context.Context, r *reminder.Reminder, users ...string) error
	RemoveReminder(ctx context.Context, id uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status reminder.Status) error
	ReplaceSource(ctx context.Context, source string, fresh []*reminder.Reminder, owner string) ([]*reminder.Reminder, error)
}

// Input modes
type inputMode int

const (
	modeNormal inputMode = iota
	modeFilter
	modeAdd
)

// TickMsg is sent every second to check for triggered reminders
type TickMsg time.Time

// FileUpdateMsg is sent when a watched file is updated
type FileUpdateMsg watcher.FileEvent

// Model is the Bubble Tea model for the reminder TUI
type Model struct {
	list          list.Model
	reminders     []*reminder.Reminder
	store         Store
	parser        *remindme.Parser
	user          string
	watcherEvents <-chan watcher.FileEvent
	now           func() time.Time
	pendingDelete bool
	width         int
	height        int

	// Input handling
	mode            inputMode
	filterInput     textinput.Model
	addInput        textinput.Model
	inputError      string
	editingReminder *reminder.Reminder // non-nil when editing an existing reminder

	// Help
	help help.Model
	keys keyMap

	// Status message (shown after actions)
	statusMessage string
}

// New creates a TUI model showing the reminders of user. watcherEvents may
// be nil when no files are watched.
func New(store Store, user string, watcherEvents <-chan watcher.FileEvent) (Model, error) {
	reminders, err := store.ForUser(context.Background(), user)
	if err != nil {
		return Model{}, err
	}

	l := list.New(remindersToItems(reminders), itemDelegate{}, 80, 20)
	l.Title = "Reminders"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false) // We'll handle filtering ourselves
	l.SetShowHelp(false)

	fi := textinput.New()
	fi.Placeholder = "type to filter, #tag for tags..."
	fi.CharLimit = 100
	fi.Width = 40

	ai := textinput.New()
	ai.Placeholder = "2 hours call mom  or  tomorrow noon \"lunch with Anna\""
	ai.CharLimit = remindme.MaxMessageLength + 100
	ai.Width = 60

	return Model{
		list:          l,
		reminders:     reminders,
		store:         store,
		parser:        remindme.New(remindme.RequireMessage()),
		user:          user,
		watcherEvents: watcherEvents,
		now:           time.Now,
		mode:          modeNormal,
		filterInput:   fi,
		addInput:      ai,
		help:          help.New(),
		keys:          keys,
	}, nil
}

// Init initializes the model and starts the tick timer
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	if m.watcherEvents != nil {
		cmds = append(cmds, m.waitForFileUpdate())
	}
	return tea.Batch(cmds...)
}

// tickCmd returns a command that sends a TickMsg after 1 second
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// waitForFileUpdate waits for a file update event from the watcher
func (m Model) waitForFileUpdate() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.watcherEvents
		if !ok {
			return nil
		}
		return FileUpdateMsg(event)
	}
}
