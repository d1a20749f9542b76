// Package state persists reminder jobs and the users subscribed to them in a
// SQLite database.
package state

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"remindbot/reminder"
)

const stateFileName = "reminders.db"

// ErrNotFound is returned when a reminder job does not exist.
var ErrNotFound = errors.New("reminder not found")

const schema = `
CREATE TABLE IF NOT EXISTS reminder_jobs (
	id         TEXT PRIMARY KEY,
	timestamp  TEXT NOT NULL,
	message    TEXT NOT NULL DEFAULT '',
	owner      TEXT NOT NULL DEFAULT '',
	status     INTEGER NOT NULL DEFAULT 0,
	source     TEXT NOT NULL DEFAULT '',
	line       INTEGER NOT NULL DEFAULT 0,
	tags       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reminder_jobs_timestamp ON reminder_jobs(timestamp);
CREATE INDEX IF NOT EXISTS idx_reminder_jobs_source ON reminder_jobs(source);

CREATE TABLE IF NOT EXISTS reminder_users (
	job_id  TEXT NOT NULL,
	user_id TEXT NOT NULL,
	PRIMARY KEY (job_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_reminder_users_user ON reminder_users(user_id);
`

const jobColumns = `id, timestamp, message, owner, status, source, line, tags, created_at`

// Store is a SQLite-backed reminder store. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the database location under the user's home directory.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".remindbot", stateFileName), nil
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddReminder stores r and subscribes users to it in one transaction.
func (s *Store) AddReminder(ctx context.Context, r *reminder.Reminder, users ...string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertJob(ctx, tx, r); err != nil {
			return err
		}
		for _, user := range users {
			if err := linkUser(ctx, tx, r.ID, user); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveReminder deletes a job and all of its subscriptions.
func (s *Store) RemoveReminder(ctx context.Context, id uuid.UUID) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM reminder_jobs WHERE id = ?`, id.String())
		if err != nil {
			return errors.Wrapf(err, "failed to delete reminder %s", id)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM reminder_users WHERE job_id = ?`, id.String()); err != nil {
			return errors.Wrapf(err, "failed to delete subscribers of %s", id)
		}
		return nil
	})
}

// Get returns a single reminder.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*reminder.Reminder, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM reminder_jobs WHERE id = ?`, id.String())
	r, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get reminder %s", id)
	}
	return r, nil
}

// GetReminders returns the reminders with the given ids, or every reminder
// when no id is given, ordered by due time.
func (s *Store) GetReminders(ctx context.Context, ids ...uuid.UUID) ([]*reminder.Reminder, error) {
	query := `SELECT ` + jobColumns + ` FROM reminder_jobs`
	args := make([]any, 0, len(ids))
	if len(ids) > 0 {
		marks := make([]string, len(ids))
		for i, id := range ids {
			marks[i] = "?"
			args = append(args, id.String())
		}
		query += ` WHERE id IN (` + strings.Join(marks, ", ") + `)`
	}
	query += ` ORDER BY timestamp ASC`

	return s.queryJobs(ctx, query, args...)
}

// ForUser returns the reminders a user is subscribed to, ordered by due time.
func (s *Store) ForUser(ctx context.Context, user string) ([]*reminder.Reminder, error) {
	return s.queryJobs(ctx, `
		SELECT `+prefixed("j", jobColumns)+`
		FROM reminder_jobs j
		JOIN reminder_users u ON u.job_id = j.id
		WHERE u.user_id = ?
		ORDER BY j.timestamp ASC`, user)
}

// UsersFor returns the users subscribed to a reminder.
func (s *Store) UsersFor(ctx context.Context, id uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM reminder_users WHERE job_id = ? ORDER BY user_id`, id.String())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list subscribers of %s", id)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var user string
		if err := rows.Scan(&user); err != nil {
			return nil, errors.Wrap(err, "failed to scan subscriber")
		}
		users = append(users, user)
	}
	return users, errors.Wrap(rows.Err(), "failed to iterate subscribers")
}

// AddUser subscribes user to an existing reminder. Subscribing twice is a no-op.
func (s *Store) AddUser(ctx context.Context, id uuid.UUID, user string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM reminder_jobs WHERE id = ?`, id.String()).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return errors.Wrapf(err, "failed to look up reminder %s", id)
		}
		return linkUser(ctx, tx, id, user)
	})
}

// RemoveUser unsubscribes user from a reminder.
func (s *Store) RemoveUser(ctx context.Context, id uuid.UUID, user string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reminder_users WHERE job_id = ? AND user_id = ?`, id.String(), user)
	if err != nil {
		return errors.Wrapf(err, "failed to unsubscribe %s from %s", user, id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Due returns the pending reminders due at or before before.
func (s *Store) Due(ctx context.Context, before time.Time) ([]*reminder.Reminder, error) {
	return s.queryJobs(ctx, `SELECT `+jobColumns+` FROM reminder_jobs
		WHERE status = ? AND timestamp <= ?
		ORDER BY timestamp ASC`,
		int(reminder.Pending), formatTime(before))
}

// SetStatus updates the status of a reminder.
func (s *Store) SetStatus(ctx context.Context, id uuid.UUID, status reminder.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reminder_jobs SET status = ? WHERE id = ?`, int(status), id.String())
	if err != nil {
		return errors.Wrapf(err, "failed to update status of %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceSource swaps the stored reminders of one markdown file for fresh.
// Unchanged reminders keep their ID and status; owner is subscribed to every
// reminder of the file. It returns the reminders now stored for source.
func (s *Store) ReplaceSource(ctx context.Context, source string, fresh []*reminder.Reminder, owner string) ([]*reminder.Reminder, error) {
	var merged []*reminder.Reminder
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := queryJobs(ctx, tx, `SELECT `+jobColumns+` FROM reminder_jobs WHERE source = ?`, source)
		if err != nil {
			return err
		}

		for _, r := range fresh {
			r.Source = source
			if r.Owner == "" {
				r.Owner = owner
			}
		}
		merged = reminder.MergeFromFile(existing, source, fresh)

		keep := make(map[uuid.UUID]bool, len(merged))
		for _, r := range merged {
			keep[r.ID] = true
		}
		for _, old := range existing {
			if keep[old.ID] {
				continue
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM reminder_jobs WHERE id = ?`, old.ID.String()); err != nil {
				return errors.Wrapf(err, "failed to delete stale reminder %s", old.ID)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM reminder_users WHERE job_id = ?`, old.ID.String()); err != nil {
				return errors.Wrapf(err, "failed to delete subscribers of %s", old.ID)
			}
		}

		for _, r := range merged {
			if err := insertJob(ctx, tx, r); err != nil {
				return err
			}
			if owner != "" {
				if err := linkUser(ctx, tx, r.ID, owner); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// VacuumResult counts the rows removed by Vacuum.
type VacuumResult struct {
	Jobs  int64
	Links int64
}

// Vacuum deletes delivered reminders due before olderThan, subscriptions whose
// job is gone and jobs nobody is subscribed to.
func (s *Store) Vacuum(ctx context.Context, olderThan time.Time) (VacuumResult, error) {
	var result VacuumResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM reminder_jobs WHERE status <> ? AND timestamp < ?`,
			int(reminder.Pending), formatTime(olderThan))
		if err != nil {
			return errors.Wrap(err, "failed to delete old reminders")
		}
		n, _ := res.RowsAffected()
		result.Jobs += n

		res, err = tx.ExecContext(ctx,
			`DELETE FROM reminder_users WHERE job_id NOT IN (SELECT id FROM reminder_jobs)`)
		if err != nil {
			return errors.Wrap(err, "failed to delete dangling subscriptions")
		}
		n, _ = res.RowsAffected()
		result.Links += n

		res, err = tx.ExecContext(ctx,
			`DELETE FROM reminder_jobs WHERE id NOT IN (SELECT job_id FROM reminder_users)`)
		if err != nil {
			return errors.Wrap(err, "failed to delete reminders without subscribers")
		}
		n, _ = res.RowsAffected()
		result.Jobs += n
		return nil
	})
	return result, err
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

func (s *Store) queryJobs(ctx context.Context, query string, args ...any) ([]*reminder.Reminder, error) {
	return queryJobs(ctx, s.db, query, args...)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryJobs(ctx context.Context, q querier, query string, args ...any) ([]*reminder.Reminder, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query reminders")
	}
	defer rows.Close()

	var reminders []*reminder.Reminder
	for rows.Next() {
		r, err := scanJob(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan reminder")
		}
		reminders = append(reminders, r)
	}
	return reminders, errors.Wrap(rows.Err(), "failed to iterate reminders")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*reminder.Reminder, error) {
	var (
		r                    reminder.Reminder
		id, ts, tags, create string
		status               int
	)
	if err := row.Scan(&id, &ts, &r.Message, &r.Owner, &status, &r.Source, &r.LineNumber, &tags, &create); err != nil {
		return nil, err
	}

	var err error
	if r.ID, err = uuid.Parse(id); err != nil {
		return nil, errors.Wrapf(err, "invalid reminder id %q", id)
	}
	if r.DateTime, err = parseTime(ts); err != nil {
		return nil, errors.Wrapf(err, "invalid timestamp of %s", id)
	}
	if r.CreatedAt, err = parseTime(create); err != nil {
		return nil, errors.Wrapf(err, "invalid creation time of %s", id)
	}
	r.Status = reminder.Status(status)
	r.Tags = strings.Fields(tags)
	return &r, nil
}

func insertJob(ctx context.Context, tx *sql.Tx, r *reminder.Reminder) error {
	_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO reminder_jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), formatTime(r.DateTime), r.Message, r.Owner, int(r.Status),
		r.Source, r.LineNumber, strings.Join(r.Tags, " "), formatTime(r.CreatedAt))
	return errors.Wrapf(err, "failed to store reminder %s", r.ID)
}

func linkUser(ctx context.Context, tx *sql.Tx, id uuid.UUID, user string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO reminder_users (job_id, user_id) VALUES (?, ?)`, id.String(), user)
	return errors.Wrapf(err, "failed to subscribe %s to %s", user, id)
}

// Timestamps are stored as local wall-clock text so they sort lexically.
func formatTime(t time.Time) string {
	return t.In(time.Local).Format(reminder.DateTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(reminder.DateTimeLayout, s, time.Local)
}

func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}
