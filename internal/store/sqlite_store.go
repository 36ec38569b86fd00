package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"

	"github.com/somnia-app/gosomnia/pkg/resonance"
)

// SQLiteStore is the SQLite-backed journal store.
// Thread-safe for concurrent engine calls.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// Embeddings are stored as JSON float arrays so sqlite-vec's distance
// functions can consume them directly; NULL marks a zero-signal entry and
// keeps it out of similarity SQL entirely.
const schema = `
CREATE TABLE IF NOT EXISTS entries (
    id TEXT PRIMARY KEY,
    uid TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    text TEXT NOT NULL,
    embedding TEXT,
    symbols TEXT
);

CREATE INDEX IF NOT EXISTS idx_entries_uid_created ON entries(uid, created_at);
`

// NewSQLiteStore creates a new in-memory SQLite store.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:")
}

// NewSQLiteStoreWithDSN creates a store with a specific data source name.
// Use ":memory:" for in-memory or a file path for persistent storage.
func NewSQLiteStoreWithDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// PutEntry inserts or replaces an entry.
func (s *SQLiteStore) PutEntry(e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	embedding, err := marshalEmbedding(e.Embedding)
	if err != nil {
		return fmt.Errorf("marshal embedding for %s: %w", e.ID, err)
	}
	symbols, err := marshalSymbols(e.Symbols)
	if err != nil {
		return fmt.Errorf("marshal symbols for %s: %w", e.ID, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO entries (id, uid, created_at, text, embedding, symbols)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			uid = excluded.uid,
			created_at = excluded.created_at,
			text = excluded.text,
			embedding = excluded.embedding,
			symbols = excluded.symbols
	`, e.ID, e.UID, e.CreatedAt, e.Text, embedding, symbols)

	return err
}

// GetEntry retrieves an entry by ID, nil when absent.
func (s *SQLiteStore) GetEntry(id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, uid, created_at, text, embedding, symbols
		FROM entries WHERE id = ?
	`, id)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

// DeleteEntry removes an entry. Deleting a missing entry is a no-op.
func (s *SQLiteStore) DeleteEntry(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM entries WHERE id = ?`, id)
	return err
}

// ListWindow returns a user's entries inside [from, to], oldest first.
func (s *SQLiteStore) ListWindow(uid string, from, to int64) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, uid, created_at, text, embedding, symbols
		FROM entries
		WHERE uid = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at ASC, id ASC
	`, uid, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// CountEntries returns the number of entries for a user.
func (s *SQLiteStore) CountEntries(uid string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM entries WHERE uid = ?`, uid).Scan(&count)
	return count, err
}

// LatestEntryAt returns the newest createdAt for a user, 0 when none.
func (s *SQLiteStore) LatestEntryAt(uid string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest sql.NullInt64
	err := s.db.QueryRow(`SELECT MAX(created_at) FROM entries WHERE uid = ?`, uid).Scan(&latest)
	if err != nil {
		return 0, err
	}
	if !latest.Valid {
		return 0, nil
	}
	return latest.Int64, nil
}

// SimilarEntries ranks the user's entries by cosine similarity in SQL via
// sqlite-vec. Cosine distance is 1 - similarity, so ascending distance is
// descending similarity.
func (s *SQLiteStore) SimilarEntries(uid string, embedding []float32, k int) ([]SimilarHit, error) {
	if k <= 0 || resonance.IsZero(embedding) {
		return nil, nil
	}

	query, err := json.Marshal(embedding)
	if err != nil {
		return nil, fmt.Errorf("marshal query embedding: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, vec_distance_cosine(embedding, ?) AS dist
		FROM entries
		WHERE uid = ? AND embedding IS NOT NULL
		ORDER BY dist ASC, id ASC
		LIMIT ?
	`, string(query), uid, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []SimilarHit
	for rows.Next() {
		var hit SimilarHit
		var dist float64
		if err := rows.Scan(&hit.EntryID, &dist); err != nil {
			return nil, err
		}
		hit.Similarity = 1.0 - dist
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// scannable covers both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanEntry(row scannable) (*Entry, error) {
	var e Entry
	var embedding, symbols sql.NullString

	if err := row.Scan(&e.ID, &e.UID, &e.CreatedAt, &e.Text, &embedding, &symbols); err != nil {
		return nil, err
	}

	if embedding.Valid {
		if err := json.Unmarshal([]byte(embedding.String), &e.Embedding); err != nil {
			return nil, fmt.Errorf("unmarshal embedding for %s: %w", e.ID, err)
		}
	}
	if symbols.Valid {
		if err := json.Unmarshal([]byte(symbols.String), &e.Symbols); err != nil {
			return nil, fmt.Errorf("unmarshal symbols for %s: %w", e.ID, err)
		}
	}

	return &e, nil
}

// marshalEmbedding serializes a vector, mapping zero-signal embeddings to
// NULL so they never reach similarity SQL.
func marshalEmbedding(v []float32) (any, error) {
	if resonance.IsZero(v) {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func marshalSymbols(symbols []string) (any, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(symbols)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
