// Package store provides persistence for the dream journal. The engine
// treats entries as immutable once embedded; re-embedding after an edit is
// the writer's responsibility, not the store's.
package store

// Entry is one journal entry as the engine sees it. The embedding is either
// unit-normalized or absent (nil / all-zero, meaning "no signal"); the
// engine enforces that invariant at ingest.
type Entry struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	CreatedAt int64     `json:"createdAt"` // unix milliseconds
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
	Symbols   []string  `json:"symbols,omitempty"`
}

// SimilarHit is one result of a nearest-entry query.
type SimilarHit struct {
	EntryID    string  `json:"entryId"`
	Similarity float64 `json:"similarity"` // raw cosine, no recency decay
}

// Storer defines the interface for journal persistence.
// This allows swapping between MemStore (testing) and SQLiteStore (production).
type Storer interface {
	PutEntry(e *Entry) error
	GetEntry(id string) (*Entry, error)
	DeleteEntry(id string) error

	// ListWindow returns a user's entries with from <= createdAt <= to,
	// ordered by createdAt ascending.
	ListWindow(uid string, from, to int64) ([]*Entry, error)
	CountEntries(uid string) (int, error)

	// LatestEntryAt returns the newest createdAt for a user, 0 when the
	// journal is empty.
	LatestEntryAt(uid string) (int64, error)

	// SimilarEntries returns up to k entries closest to the embedding by
	// raw cosine similarity, best first. Zero-signal embeddings (the query
	// or stored ones) never participate.
	SimilarEntries(uid string, embedding []float32, k int) ([]SimilarHit, error)

	// Lifecycle
	Close() error
}
