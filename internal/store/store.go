// Package store keeps named tapes in a SQLite database.
//
// Tapes are stored in their .adtp encoding, so every Get repeats the
// checksum and structural validation of a file load.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/born-ml/adtape/internal/serialization"
	"github.com/born-ml/adtape/internal/tape"
)

var log = commonlog.GetLogger("adtape.store")

// ErrNotFound indicates the requested tape doesn't exist.
var ErrNotFound = errors.New("store: tape not found")

// Entry describes a stored tape without decoding it.
type Entry struct {
	Name     string
	Rows     int
	Ops      int
	Checksum string // hex SHA-256 of the encoded body
	Created  time.Time
}

// Store is a SQLite-backed tape store. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: setting busy timeout: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS tapes (
		name     TEXT PRIMARY KEY,
		data     BLOB NOT NULL,
		num_rows INTEGER NOT NULL,
		num_ops  INTEGER NOT NULL,
		checksum TEXT NOT NULL,
		created  INTEGER NOT NULL
	)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: creating table: %w", err)
	}
	log.Debugf("opened tape store %s", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database path given to Open.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores t under name, replacing any previous tape with that name.
func (s *Store) Put(ctx context.Context, name string, t *tape.Tape) error {
	if name == "" {
		return errors.New("store: empty tape name")
	}
	data, err := serialization.Encode(t)
	if err != nil {
		return fmt.Errorf("store: encoding %q: %w", name, err)
	}
	sum := serialization.BodyChecksum(data[serialization.FixedHeaderSize:])

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO tapes (name, data, num_rows, num_ops, checksum, created) VALUES (?, ?, ?, ?, ?, ?)",
		name, data, t.NumVar, len(t.Ops), sum.String(), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store: saving %q: %w", name, err)
	}
	log.Debugf("stored tape %q (%d rows, %d bytes)", name, t.NumVar, len(data))
	return nil
}

// Get loads and validates the tape stored under name.
func (s *Store) Get(ctx context.Context, name string) (*tape.Tape, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM tapes WHERE name = ?", name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil, fmt.Errorf("store: querying %q: %w", name, err)
	}
	t, err := serialization.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("store: decoding %q: %w", name, err)
	}
	return t, nil
}

// List returns every stored tape ordered by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, num_rows, num_ops, checksum, created FROM tapes ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("store: listing tapes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.Name, &e.Rows, &e.Ops, &e.Checksum, &created); err != nil {
			return nil, fmt.Errorf("store: scanning tape row: %w", err)
		}
		e.Created = time.UnixMilli(created)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: listing tapes: %w", err)
	}
	return entries, nil
}

// Delete removes the tape stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tapes WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("store: deleting %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: deleting %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	log.Debugf("deleted tape %q", name)
	return nil
}
