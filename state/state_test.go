package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remindbot/reminder"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "reminders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func localTime(day, hour, minute int) time.Time {
	return time.Date(2024, 3, day, hour, minute, 0, 0, time.Local)
}

func TestAddAndGet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	r := reminder.New(localTime(5, 15, 30), "team sync", "alice", "")
	r.Tags = []string{"work", "weekly"}
	require.NoError(t, s.AddReminder(ctx, r, "alice", "bob"))

	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.True(t, got.DateTime.Equal(r.DateTime))
	assert.Equal(t, "team sync", got.Message)
	assert.Equal(t, "alice", got.Owner)
	assert.Equal(t, []string{"work", "weekly"}, got.Tags)
	assert.Equal(t, reminder.Pending, got.Status)

	users, err := s.UsersFor(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, users)

	_, err = s.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetRemindersAndForUser(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	late := reminder.New(localTime(9, 9, 0), "late", "alice", "")
	early := reminder.New(localTime(2, 9, 0), "early", "bob", "")
	require.NoError(t, s.AddReminder(ctx, late, "alice"))
	require.NoError(t, s.AddReminder(ctx, early, "bob", "alice"))

	all, err := s.GetReminders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "early", all[0].Message)

	some, err := s.GetReminders(ctx, late.ID)
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, late.ID, some[0].ID)

	alice, err := s.ForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 2)
	assert.Equal(t, "early", alice[0].Message)

	bob, err := s.ForUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bob, 1)

	none, err := s.ForUser(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSubscriptions(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	r := reminder.New(localTime(5, 9, 0), "x", "alice", "")
	require.NoError(t, s.AddReminder(ctx, r, "alice"))

	require.NoError(t, s.AddUser(ctx, r.ID, "bob"))
	require.NoError(t, s.AddUser(ctx, r.ID, "bob"))
	users, err := s.UsersFor(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, users)

	require.NoError(t, s.RemoveUser(ctx, r.ID, "alice"))
	assert.ErrorIs(t, s.RemoveUser(ctx, r.ID, "alice"), ErrNotFound)
	assert.ErrorIs(t, s.AddUser(ctx, uuid.New(), "bob"), ErrNotFound)
}

func TestRemoveReminder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	r := reminder.New(localTime(5, 9, 0), "x", "alice", "")
	require.NoError(t, s.AddReminder(ctx, r, "alice"))

	require.NoError(t, s.RemoveReminder(ctx, r.ID))
	assert.ErrorIs(t, s.RemoveReminder(ctx, r.ID), ErrNotFound)

	users, err := s.UsersFor(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestDueAndSetStatus(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	past := reminder.New(localTime(1, 9, 0), "past", "alice", "")
	now := reminder.New(localTime(1, 10, 0), "now", "alice", "")
	future := reminder.New(localTime(1, 11, 0), "future", "alice", "")
	for _, r := range []*reminder.Reminder{future, now, past} {
		require.NoError(t, s.AddReminder(ctx, r, "alice"))
	}

	due, err := s.Due(ctx, localTime(1, 10, 0))
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "past", due[0].Message)
	assert.Equal(t, "now", due[1].Message)

	require.NoError(t, s.SetStatus(ctx, past.ID, reminder.Triggered))
	due, err = s.Due(ctx, localTime(1, 10, 0))
	require.NoError(t, err)
	require.Len(t, due, 1)

	assert.ErrorIs(t, s.SetStatus(ctx, uuid.New(), reminder.Triggered), ErrNotFound)
}

func TestReplaceSource(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first := []*reminder.Reminder{
		reminder.New(localTime(5, 9, 0), "keep", "", ""),
		reminder.New(localTime(6, 9, 0), "drop", "", ""),
	}
	stored, err := s.ReplaceSource(ctx, "notes.md", first, "alice")
	require.NoError(t, err)
	require.Len(t, stored, 2)

	keepID := stored[0].ID
	require.NoError(t, s.SetStatus(ctx, keepID, reminder.Acknowledged))

	second := []*reminder.Reminder{
		reminder.New(localTime(5, 9, 0), "keep", "", ""),
		reminder.New(localTime(7, 9, 0), "added", "", ""),
	}
	stored, err = s.ReplaceSource(ctx, "notes.md", second, "alice")
	require.NoError(t, err)
	require.Len(t, stored, 2)

	all, err := s.ForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, keepID, all[0].ID)
	assert.Equal(t, reminder.Acknowledged, all[0].Status)
	assert.Equal(t, "alice", all[0].Owner)
	assert.Equal(t, "notes.md", all[0].Source)
	assert.Equal(t, "added", all[1].Message)
}

func TestVacuum(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	oldDone := reminder.New(localTime(1, 9, 0), "old done", "alice", "")
	oldDone.Status = reminder.Acknowledged
	oldPending := reminder.New(localTime(1, 9, 0), "old pending", "alice", "")
	orphan := reminder.New(localTime(9, 9, 0), "nobody", "alice", "")
	keep := reminder.New(localTime(9, 9, 0), "keep", "alice", "")

	require.NoError(t, s.AddReminder(ctx, oldDone, "alice"))
	require.NoError(t, s.AddReminder(ctx, oldPending, "alice"))
	require.NoError(t, s.AddReminder(ctx, orphan))
	require.NoError(t, s.AddReminder(ctx, keep, "alice"))

	result, err := s.Vacuum(ctx, localTime(2, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, VacuumResult{Jobs: 2, Links: 1}, result)

	left, err := s.GetReminders(ctx)
	require.NoError(t, err)
	require.Len(t, left, 2)
	for _, r := range left {
		assert.Contains(t, []uuid.UUID{oldPending.ID, keep.ID}, r.ID)
	}
}

func TestVacuumDropsPendingWithoutSubscribers(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	future := reminder.New(localTime(20, 9, 0), "nobody left", "alice", "")
	require.NoError(t, s.AddReminder(ctx, future, "alice"))
	require.NoError(t, s.RemoveUser(ctx, future.ID, "alice"))

	result, err := s.Vacuum(ctx, localTime(2, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, VacuumResult{Jobs: 1}, result)

	_, err = s.Get(ctx, future.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reminders.db")

	s, err := Open(path)
	require.NoError(t, err)
	r := reminder.New(localTime(5, 9, 0), "persisted", "alice", "")
	require.NoError(t, s.AddReminder(ctx, r, "alice"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Message)
	assert.Equal(t, path, s.Path())
}
