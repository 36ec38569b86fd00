// Package vector maintains an approximate-nearest-neighbor index over
// journal entry embeddings, with snapshot persistence.
package vector

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/fogfish/hnsw"
	"github.com/fogfish/hnsw/vector"
	"github.com/hack-pad/hackpadfs"
	kvector "github.com/kshard/vector"
)

// Index wraps an HNSW graph keyed by entry ID. The graph itself keys on
// uint32, so the index keeps a bidirectional mapping between entry IDs and
// graph keys.
type Index struct {
	mu    sync.RWMutex
	graph *hnsw.HNSW[vector.VF32]
	ids   map[uint32]string
	keys  map[string]uint32
	next  uint32
	fs    hackpadfs.FS
	path  string
}

// snapshot is the gob form of a persisted index.
type snapshot struct {
	Nodes hnsw.Nodes[vector.VF32]
	IDs   map[uint32]string
	Next  uint32
}

// NewIndex creates an index backed by fs at path. An existing snapshot at
// path is loaded; otherwise the index starts empty.
func NewIndex(fs hackpadfs.FS, path string) (*Index, error) {
	idx := &Index{
		ids:  make(map[uint32]string),
		keys: make(map[string]uint32),
		fs:   fs,
		path: path,
	}

	if err := idx.Load(); err != nil {
		idx.graph = hnsw.New[vector.VF32](vector.SurfaceVF32(kvector.Cosine()))
	}

	return idx, nil
}

// Add inserts an embedding under an entry ID. Re-adding an existing ID
// returns an error; HNSW has no in-place update.
func (idx *Index) Add(entryID string, vec []float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.keys[entryID]; exists {
		return fmt.Errorf("entry %s already indexed", entryID)
	}

	if idx.graph.Size() > 0 {
		dim := len(idx.graph.Head().Vec)
		if len(vec) != dim {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", dim, len(vec))
		}
	}

	key := idx.next
	idx.next++
	idx.graph.Insert(vector.VF32{Key: key, Vec: vec})
	idx.ids[key] = entryID
	idx.keys[entryID] = key
	return nil
}

// Nearest returns the entry IDs of the k nearest neighbors of vec,
// closest first.
func (idx *Index) Nearest(vec []float32, k int) ([]string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if k <= 0 || idx.graph.Size() == 0 {
		return nil, nil
	}

	dim := len(idx.graph.Head().Vec)
	if len(vec) != dim {
		return nil, fmt.Errorf("vector dimension mismatch: expected %d, got %d", dim, len(vec))
	}

	ef := k * 2
	if ef < 100 {
		ef = 100
	}

	results := idx.graph.Search(vector.VF32{Vec: vec}, k, ef)
	out := make([]string, 0, len(results))
	for _, r := range results {
		if id, ok := idx.ids[r.Key]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// Has reports whether an entry ID is indexed.
func (idx *Index) Has(entryID string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.keys[entryID]
	return ok
}

// Size returns the number of indexed entries.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.graph.Size()
}

// Save writes a snapshot of the index to the backing filesystem.
func (idx *Index) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	snap := snapshot{
		Nodes: idx.graph.Nodes(),
		IDs:   idx.ids,
		Next:  idx.next,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}

	if err := hackpadfs.WriteFullFile(idx.fs, idx.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}

	return nil
}

// Load rehydrates the index from a snapshot on the backing filesystem.
func (idx *Index) Load() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	content, err := hackpadfs.ReadFile(idx.fs, idx.path)
	if err != nil {
		return err
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(content)).Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode index: %w", err)
	}

	idx.graph = hnsw.FromNodes[vector.VF32](
		vector.SurfaceVF32(kvector.Cosine()),
		snap.Nodes,
	)
	idx.ids = snap.IDs
	idx.next = snap.Next
	idx.keys = make(map[string]uint32, len(snap.IDs))
	for key, id := range snap.IDs {
		idx.keys[id] = key
	}

	return nil
}
