package reminder

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	// DateTimeLayout is how due times are stored.
	DateTimeLayout = "2006-01-02 15:04:05"
	// DisplayLayout is how due times are shown to users.
	DisplayLayout = "02.01.06, 15:04:05"
)

// Status represents the current state of a reminder
type Status int

const (
	Pending      Status = iota // Waiting for trigger time
	Triggered                  // Time reached, needs acknowledgment
	Acknowledged               // User dismissed, show crossed out
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Triggered:
		return "TRIGGERED"
	case Acknowledged:
		return "done"
	default:
		return "unknown"
	}
}

// Reminder is a scheduled message for one or more users.
type Reminder struct {
	ID         uuid.UUID
	DateTime   time.Time
	Message    string
	Owner      string
	Tags       []string
	Source     string // markdown file the reminder came from, if any
	LineNumber int    // Helps user find it in their markdown
	Status     Status
	CreatedAt  time.Time
}

// New creates a pending reminder with a fresh ID.
func New(at time.Time, message, owner, source string) *Reminder {
	return &Reminder{
		ID:        uuid.New(),
		DateTime:  at,
		Message:   message,
		Owner:     owner,
		Source:    source,
		Status:    Pending,
		CreatedAt: time.Now().Truncate(time.Second),
	}
}

// IsDue returns true if the reminder is pending and its time has passed
func (r *Reminder) IsDue(now time.Time) bool {
	return r.Status == Pending && !now.Before(r.DateTime)
}

// Display formats the due time the way it is shown to users.
func (r *Reminder) Display() string {
	return r.DateTime.Format(DisplayLayout)
}

// sameAs reports whether two reminders describe the same thing.
func (r *Reminder) sameAs(other *Reminder) bool {
	return r.DateTime.Equal(other.DateTime) && r.Message == other.Message
}

// SortByDateTime sorts a slice of reminders by their DateTime
func SortByDateTime(reminders []*Reminder) {
	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].DateTime.Before(reminders[j].DateTime)
	})
}

// MergeFromFile replaces every reminder that came from file with fresh.
// A fresh reminder matching an existing one keeps its ID and status, so
// re-saving a file does not re-trigger acknowledged reminders.
func MergeFromFile(existing []*Reminder, file string, fresh []*Reminder) []*Reminder {
	var previous []*Reminder
	merged := make([]*Reminder, 0, len(existing)+len(fresh))
	for _, r := range existing {
		if r.Source == file {
			previous = append(previous, r)
			continue
		}
		merged = append(merged, r)
	}

	for _, r := range fresh {
		for i, old := range previous {
			if old != nil && old.sameAs(r) {
				r.ID = old.ID
				r.Status = old.Status
				r.CreatedAt = old.CreatedAt
				previous[i] = nil
				break
			}
		}
		merged = append(merged, r)
	}

	SortByDateTime(merged)
	return merged
}
