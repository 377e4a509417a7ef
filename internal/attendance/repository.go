package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/zkfleet/zkfleet-core/internal/infrastructure/database"
	"github.com/zkfleet/zkfleet-core/internal/infrastructure/logging"
)

// defaultChunkSize is how many attendance rows are committed per
// transaction during a bulk load.
const defaultChunkSize = 1000

// Summary is the observable outcome of one store call.
type Summary struct {
	// Inserted counts rows actually written. Duplicate-key punches are
	// ignored by the uniqueness constraint and appear in no counter.
	Inserted int

	// Skipped counts records dropped before reaching SQL. The store
	// itself never skips; orchestration folds normalizer skips in here.
	Skipped int

	// Errored counts rows lost to failed chunks.
	Errored int
}

// Store is the idempotent persistence engine over the users and attendance
// tables.
//
// Users are replaced on conflict: the roster row keyed (device_ip, uid)
// always reflects the most recent sync. Punches are insert-if-absent keyed
// (device_ip, user_id, timestamp): events are immutable once observed and
// re-syncs are no-ops.
//
// Policy note: the punch key deliberately collapses a second event with an
// identical (device_ip, user_id, timestamp) triple — a firmware double-read
// at one-second resolution is treated as the same punch, matching the
// upstream data contract. Widening the key would change what "duplicate"
// means for every consumer of this table.
//
// The store assumes a single writer at a time; callers serialize access.
type Store struct {
	db        *database.DB
	chunkSize int
	log       *logging.Logger
}

// NewStore creates a Store. chunkSize <= 0 selects the default of 1000.
// The logger may be nil.
func NewStore(db *database.DB, chunkSize int, log *logging.Logger) (*Store, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Store{db: db, chunkSize: chunkSize, log: log}, nil
}

// EnsureSchema creates the users and attendance tables if absent. It never
// drops or truncates existing data; schema policy is additive only. The
// zkfleet binary applies the same DDL through embedded migrations — this
// path serves library and test use.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_ip TEXT NOT NULL,
			uid INTEGER,
			name TEXT,
			privilege TEXT,
			password TEXT,
			group_id TEXT,
			user_id TEXT,
			card TEXT,
			synced_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(device_ip, uid)
		);
		CREATE TABLE IF NOT EXISTS attendance (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_ip TEXT NOT NULL,
			uid INTEGER,
			user_id TEXT NOT NULL,
			name TEXT,
			timestamp TIMESTAMP,
			status INTEGER,
			punch INTEGER,
			imported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(device_ip, user_id, timestamp)
		);`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}

// UpsertUsers replaces the roster rows for one device. Each row is keyed
// (device_ip, uid) with last-write-wins semantics: attributes mutate over
// time and the latest sync is authoritative.
func (s *Store) UpsertUsers(ctx context.Context, deviceIP string, users []UserRecord) (Summary, error) {
	if deviceIP == "" {
		return Summary{}, ErrMissingDeviceIP
	}
	if len(users) == 0 {
		return Summary{}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Summary{}, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO users (device_ip, uid, name, privilege, password, group_id, user_id, card)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Summary{}, fmt.Errorf("preparing user upsert: %w", err)
	}
	defer stmt.Close()

	for _, u := range users {
		if _, err := stmt.ExecContext(ctx,
			deviceIP, u.UID, u.Name, string(u.Privilege), u.Password, u.GroupID, u.UserID, u.Card,
		); err != nil {
			return Summary{}, fmt.Errorf("upserting user uid=%d: %w", u.UID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Summary{}, fmt.Errorf("committing user upsert: %w", err)
	}
	return Summary{Inserted: len(users)}, nil
}

// AppendAttendance persists a batch of punches for one device in fixed-size
// chunks, with names resolved through the index.
//
// Durability is relaxed for the duration of the load and re-armed only after
// the whole operation finishes: an interruption mid-load can lose the
// in-flight chunk but never corrupts committed ones. A failing chunk adds
// its row count to the error tally and later chunks are still attempted.
func (s *Store) AppendAttendance(ctx context.Context, deviceIP string, events []AttendanceEvent, names NameIndex) (Summary, error) {
	if deviceIP == "" {
		return Summary{}, ErrMissingDeviceIP
	}
	if len(events) == 0 {
		return Summary{}, nil
	}

	if err := s.db.RelaxDurability(ctx); err != nil {
		return Summary{}, err
	}
	defer func() {
		if err := s.db.RestoreDurability(context.WithoutCancel(ctx)); err != nil && s.log != nil {
			s.log.Error("restoring durability after bulk load", "error", err)
		}
	}()

	var summary Summary
	for start := 0; start < len(events); start += s.chunkSize {
		end := min(start+s.chunkSize, len(events))
		chunk := events[start:end]

		inserted, err := s.insertChunk(ctx, deviceIP, chunk, names)
		if err != nil {
			summary.Errored += len(chunk)
			if s.log != nil {
				s.log.Warn("attendance chunk failed",
					"device_ip", deviceIP,
					"rows", len(chunk),
					"error", err,
				)
			}
			continue
		}
		summary.Inserted += inserted
	}
	return summary, nil
}

// insertChunk writes one chunk in its own transaction and reports how many
// rows were actually inserted (duplicates are ignored by the constraint).
func (s *Store) insertChunk(ctx context.Context, deviceIP string, chunk []AttendanceEvent, names NameIndex) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO attendance (device_ip, uid, user_id, name, timestamp, status, punch)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing attendance insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range chunk {
		name := names.Resolve(e.UID, e.UserID)
		res, err := stmt.ExecContext(ctx,
			deviceIP, e.UID, e.UserID, name, e.FormattedTime(), int(e.Status), e.Punch,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting punch user_id=%s: %w", e.UserID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing attendance chunk: %w", err)
	}
	return inserted, nil
}

// CountAttendance returns the persisted punch count for one device, or for
// the whole table when deviceIP is empty.
func (s *Store) CountAttendance(ctx context.Context, deviceIP string) (int, error) {
	var (
		count int
		err   error
	)
	if deviceIP == "" {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attendance").Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM attendance WHERE device_ip = ?", deviceIP).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("counting attendance: %w", err)
	}
	return count, nil
}

// AttendanceForDevice returns persisted punches for one device in timestamp
// order. limit > 0 caps the result; 0 returns everything.
func (s *Store) AttendanceForDevice(ctx context.Context, deviceIP string, limit int) ([]AttendanceEvent, error) {
	if deviceIP == "" {
		return nil, ErrMissingDeviceIP
	}

	query := `
		SELECT uid, user_id, timestamp, status, punch
		FROM attendance WHERE device_ip = ? ORDER BY timestamp`
	args := []any{deviceIP}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying attendance: %w", err)
	}
	defer rows.Close()

	var events []AttendanceEvent
	for rows.Next() {
		var (
			e      AttendanceEvent
			stamp  string
			status int
		)
		if err := rows.Scan(&e.UID, &e.UserID, &stamp, &status, &e.Punch); err != nil {
			return nil, fmt.Errorf("scanning punch row: %w", err)
		}
		ts, err := time.Parse(TimeLayout, stamp)
		if err != nil {
			return nil, fmt.Errorf("parsing stored timestamp %q: %w", stamp, err)
		}
		e.Timestamp = ts
		e.Status = Status(status)
		events = append(events, e)
	}
	return events, rows.Err()
}

// UsersForDevice returns the persisted roster for one device, ordered by uid.
func (s *Store) UsersForDevice(ctx context.Context, deviceIP string) ([]UserRecord, error) {
	if deviceIP == "" {
		return nil, ErrMissingDeviceIP
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT uid, name, privilege, password, group_id, user_id, card
		FROM users WHERE device_ip = ? ORDER BY uid`, deviceIP)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []UserRecord
	for rows.Next() {
		var u UserRecord
		var privilege string
		if err := rows.Scan(&u.UID, &u.Name, &privilege, &u.Password, &u.GroupID, &u.UserID, &u.Card); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		u.Privilege = Privilege(privilege)
		users = append(users, u)
	}
	return users, rows.Err()
}
