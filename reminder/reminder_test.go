package reminder

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	at := time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)
	r := New(at, "team sync", "alice", "notes.md")

	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, Pending, r.Status)
	assert.Equal(t, "alice", r.Owner)
	assert.Equal(t, "notes.md", r.Source)
	assert.Equal(t, "05.03.24, 15:30:00", r.Display())
	assert.False(t, r.CreatedAt.IsZero())

	other := New(at, "team sync", "alice", "notes.md")
	assert.NotEqual(t, r.ID, other.ID)
}

func TestIsDue(t *testing.T) {
	at := time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status Status
		now    time.Time
		want   bool
	}{
		{"before", Pending, at.Add(-time.Second), false},
		{"exactly", Pending, at, true},
		{"after", Pending, at.Add(time.Minute), true},
		{"already triggered", Triggered, at.Add(time.Minute), false},
		{"acknowledged", Acknowledged, at.Add(time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reminder{DateTime: at, Status: tt.status}
			if got := r.IsDue(tt.now); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "TRIGGERED", Triggered.String())
	assert.Equal(t, "done", Acknowledged.String())
	assert.Equal(t, "unknown", Status(9).String())
}

func TestSortByDateTime(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	reminders := []*Reminder{
		{Message: "c", DateTime: base.Add(3 * time.Hour)},
		{Message: "a", DateTime: base.Add(time.Hour)},
		{Message: "b", DateTime: base.Add(2 * time.Hour)},
	}

	SortByDateTime(reminders)

	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, reminders[i].Message)
	}
}

func TestMergeFromFile(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	kept := New(base.Add(time.Hour), "unchanged", "local", "a.md")
	kept.Status = Acknowledged
	dropped := New(base.Add(2*time.Hour), "removed line", "local", "a.md")
	other := New(base.Add(30*time.Minute), "other file", "local", "b.md")

	fresh := []*Reminder{
		New(base.Add(time.Hour), "unchanged", "local", "a.md"),
		New(base.Add(3*time.Hour), "new line", "local", "a.md"),
	}

	merged := MergeFromFile([]*Reminder{kept, dropped, other}, "a.md", fresh)
	require.Len(t, merged, 3)

	assert.Equal(t, other.ID, merged[0].ID)
	assert.Equal(t, kept.ID, merged[1].ID, "unchanged reminder keeps its ID")
	assert.Equal(t, Acknowledged, merged[1].Status)
	assert.Equal(t, "new line", merged[2].Message)
	assert.Equal(t, Pending, merged[2].Status)

	for _, r := range merged {
		assert.NotEqual(t, dropped.ID, r.ID)
	}
}
