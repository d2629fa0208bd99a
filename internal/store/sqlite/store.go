// Package sqlite is a local stand-in for the spreadsheet backend. Rows keep
// insertion order and are addressed by (school, title) like sheet rows are.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"gradtrack/internal/domain"
	"gradtrack/internal/store"
)

const storeName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS programs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	school_name     TEXT NOT NULL,
	program_title   TEXT NOT NULL,
	payload         TEXT NOT NULL,
	calculated_rank REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_programs_identity ON programs(school_name, program_title);
`

// Store implements store.Store on a sqlite file.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
	log  *zap.Logger

	// Now is the clock used for deadline urgency in the rank.
	Now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open creates or opens the database at path. ":memory:" gives a private
// in-process database.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// one connection: an in-memory database is per connection, and sqlite
	// serialises writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}

	return &Store{db: db, path: path, log: log, Now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Path() string { return s.path }

func (s *Store) Name() string { return storeName }

// List returns every row in insertion order with its Calculated Rank.
func (s *Store) List(ctx context.Context) ([]domain.WireRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload, calculated_rank FROM programs ORDER BY id`)
	if err != nil {
		return nil, &store.FetchError{Store: storeName, Err: err}
	}
	defer rows.Close()

	out := []domain.WireRecord{}
	for rows.Next() {
		var payload string
		var rank float64
		if err := rows.Scan(&payload, &rank); err != nil {
			return nil, &store.FetchError{Store: storeName, Err: err}
		}
		var w domain.WireRecord
		if err := json.Unmarshal([]byte(payload), &w); err != nil {
			return nil, &store.FetchError{Store: storeName, Err: fmt.Errorf("decode payload: %w", err)}
		}
		w[domain.LabelCalculatedRank] = rank
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.FetchError{Store: storeName, Err: err}
	}
	return out, nil
}

// Create appends a row. Duplicate identities are allowed, as in the sheet.
func (s *Store) Create(ctx context.Context, payload domain.WireRecord) error {
	id := payload.Identity()
	body, rank, err := s.encode(payload)
	if err != nil {
		return &store.WriteError{Store: storeName, Op: store.OpCreate, Identity: id, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO programs (school_name, program_title, payload, calculated_rank) VALUES (?, ?, ?, ?)`,
		id.SchoolName, id.ProgramTitle, body, rank)
	if err != nil {
		return &store.WriteError{Store: storeName, Op: store.OpCreate, Identity: id, Err: err}
	}
	s.log.Debug("program created", zap.Stringer("program", id), zap.Float64("rank", rank))
	return nil
}

// Update replaces the first row matching id. The payload's identity becomes
// the row's identity, so a rename is an update.
func (s *Store) Update(ctx context.Context, id domain.Identity, payload domain.WireRecord) error {
	body, rank, err := s.encode(payload)
	if err != nil {
		return &store.WriteError{Store: storeName, Op: store.OpUpdate, Identity: id, Err: err}
	}
	next := payload.Identity()

	s.mu.Lock()
	defer s.mu.Unlock()

	rowID, err := s.firstMatch(ctx, id)
	if err != nil {
		return &store.WriteError{Store: storeName, Op: store.OpUpdate, Identity: id, Err: err}
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE programs SET school_name = ?, program_title = ?, payload = ?, calculated_rank = ? WHERE id = ?`,
		next.SchoolName, next.ProgramTitle, body, rank, rowID)
	if err != nil {
		return &store.WriteError{Store: storeName, Op: store.OpUpdate, Identity: id, Err: err}
	}
	s.log.Debug("program updated", zap.Stringer("program", id), zap.Float64("rank", rank))
	return nil
}

// Delete removes the first row matching id and nothing else.
func (s *Store) Delete(ctx context.Context, id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rowID, err := s.firstMatch(ctx, id)
	if err != nil {
		return &store.WriteError{Store: storeName, Op: store.OpDelete, Identity: id, Err: err}
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM programs WHERE id = ?`, rowID); err != nil {
		return &store.WriteError{Store: storeName, Op: store.OpDelete, Identity: id, Err: err}
	}
	s.log.Debug("program deleted", zap.Stringer("program", id))
	return nil
}

func (s *Store) firstMatch(ctx context.Context, id domain.Identity) (int64, error) {
	var rowID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM programs WHERE school_name = ? AND program_title = ? ORDER BY id LIMIT 1`,
		id.SchoolName, id.ProgramTitle).Scan(&rowID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	return rowID, err
}

// encode strips any Calculated Rank sent by the caller; the store owns it.
func (s *Store) encode(payload domain.WireRecord) (string, float64, error) {
	w := payload.Clone()
	delete(w, domain.LabelCalculatedRank)

	b, err := json.Marshal(w)
	if err != nil {
		return "", 0, fmt.Errorf("encode payload: %w", err)
	}
	return string(b), CalculateRank(w, s.Now()), nil
}
