// Package engine ties the journal store, embedder, anchor cache, and
// constellation builder into the resonance pipeline.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/somnia-app/gosomnia/internal/cache"
	"github.com/somnia-app/gosomnia/internal/store"
	"github.com/somnia-app/gosomnia/pkg/anchor"
	"github.com/somnia-app/gosomnia/pkg/chunker"
	"github.com/somnia-app/gosomnia/pkg/constellation"
	"github.com/somnia-app/gosomnia/pkg/resonance"
	"github.com/somnia-app/gosomnia/pkg/symbols"
	"github.com/somnia-app/gosomnia/pkg/vector"
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config carries engine tuning. Zero values fall back to defaults.
type Config struct {
	Resonance      resonance.Config
	Graph          constellation.Config
	ChunkThreshold int
	Location       *time.Location
	Logger         *zap.Logger
	Index          *vector.Index
	Lexicon        *symbols.Lexicon
	Now            func() time.Time
}

// Engine resolves anchors against a user's dream journal.
type Engine struct {
	store          store.Storer
	embedder       Embedder
	cache          *cache.AnchorCache
	index          *vector.Index
	lexicon        *symbols.Lexicon
	scorer         *resonance.Scorer
	builder        *constellation.Builder
	log            *zap.Logger
	loc            *time.Location
	chunkThreshold int
	now            func() time.Time
}

// New creates an engine over a store and an embedder.
func New(st store.Storer, emb Embedder, cfg Config) *Engine {
	if cfg.Resonance == (resonance.Config{}) {
		cfg.Resonance = resonance.DefaultConfig()
	}
	if cfg.Graph == (constellation.Config{}) {
		cfg.Graph = constellation.DefaultConfig()
	}
	if cfg.ChunkThreshold <= 0 {
		cfg.ChunkThreshold = chunker.DefaultThreshold
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Lexicon == nil {
		cfg.Lexicon = symbols.DefaultLexicon()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	scorer := resonance.NewScorer(cfg.Resonance)
	scorer.Now = cfg.Now

	return &Engine{
		store:          st,
		embedder:       emb,
		cache:          cache.New(),
		index:          cfg.Index,
		lexicon:        cfg.Lexicon,
		scorer:         scorer,
		builder:        constellation.NewBuilder(cfg.Graph),
		log:            cfg.Logger,
		loc:            cfg.Location,
		chunkThreshold: cfg.ChunkThreshold,
		now:            cfg.Now,
	}
}

// EntryInput is a raw journal entry before ingestion.
type EntryInput struct {
	ID        string
	UID       string
	CreatedAt time.Time
	Text      string
}

// IngestEntry embeds, tags, and stores a journal entry, then invalidates
// the anchors its timestamp falls under.
func (e *Engine) IngestEntry(ctx context.Context, in EntryInput) (*store.Entry, error) {
	if in.ID == "" || in.UID == "" {
		return nil, fmt.Errorf("entry requires id and uid")
	}

	emb, err := e.embedText(ctx, in.Text)
	if err != nil {
		return nil, fmt.Errorf("embed entry %s: %w", in.ID, err)
	}

	entry := &store.Entry{
		ID:        in.ID,
		UID:       in.UID,
		CreatedAt: in.CreatedAt.UnixMilli(),
		Text:      in.Text,
		Embedding: emb,
		Symbols:   e.symbolsFor(in.Text),
	}

	if err := e.store.PutEntry(entry); err != nil {
		return nil, fmt.Errorf("store entry %s: %w", in.ID, err)
	}

	if e.index != nil && !resonance.IsZero(emb) {
		if err := e.index.Add(entry.ID, emb); err != nil {
			e.log.Warn("index insert failed",
				zap.String("entry_id", entry.ID),
				zap.Error(err))
		}
	}

	e.invalidateAnchors(in.UID, in.CreatedAt)

	e.log.Info("entry ingested",
		zap.String("entry_id", entry.ID),
		zap.String("uid", entry.UID),
		zap.Strings("symbols", entry.Symbols))

	return entry, nil
}

// embedText chunks long text, embeds each chunk, and averages the chunk
// vectors into one normalized entry embedding. Blank text yields a nil
// embedding, which downstream treats as no signal.
func (e *Engine) embedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	chunks := chunker.Chunk(text, e.chunkThreshold)

	var mean []float32
	for _, chunk := range chunks {
		vec, err := e.embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, err
		}
		if mean == nil {
			mean = make([]float32, len(vec))
		} else if len(vec) != len(mean) {
			return nil, fmt.Errorf("embedder returned inconsistent dimensions: %d vs %d", len(vec), len(mean))
		}
		for i, v := range vec {
			mean[i] += v
		}
	}

	n := float32(len(chunks))
	for i := range mean {
		mean[i] /= n
	}

	return resonance.Normalize(mean), nil
}

// symbolsFor merges lexicon matches with extracted keywords. Lexicon
// symbols come first; the combined set is capped.
func (e *Engine) symbolsFor(text string) []string {
	out := e.lexicon.Scan(text)
	seen := make(map[string]bool, len(out))
	for _, s := range out {
		seen[s] = true
	}

	for _, tok := range symbols.Extract(text, symbols.SymbolsMax) {
		if len(out) >= symbols.SymbolsMax {
			break
		}
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}

	if len(out) > symbols.SymbolsMax {
		out = out[:symbols.SymbolsMax]
	}
	return out
}

// invalidateAnchors drops the cached result of every period bucket the
// timestamp falls under.
func (e *Engine) invalidateAnchors(uid string, t time.Time) {
	for _, p := range []anchor.Period{anchor.PeriodDay, anchor.PeriodWeek, anchor.PeriodMonth, anchor.PeriodYear} {
		e.cache.Invalidate(anchor.New(uid, p, e.loc, t).String())
	}
}

// Resolve computes or retrieves the resonance result for an anchor.
// Results are cached per anchor key; concurrent resolves of the same key
// share one computation.
func (e *Engine) Resolve(ctx context.Context, key anchor.Key, anchorVec []float32) (*resonance.Result, error) {
	// A dead caller must not join the flight: its error would propagate to
	// healthy waiters sharing the key.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	anchorAt, err := key.Start()
	if err != nil {
		return nil, err
	}
	anchorEnd, err := key.End()
	if err != nil {
		return nil, err
	}

	latestMs, err := e.store.LatestEntryAt(key.UID)
	if err != nil {
		return nil, fmt.Errorf("latest entry for %s: %w", key.UID, err)
	}

	return e.cache.Resolve(key.String(), time.UnixMilli(latestMs), func() (*resonance.Result, error) {
		lookback := time.Duration(e.scorer.Config.LookbackDays * 24 * float64(time.Hour))
		from := anchorAt.Add(-lookback).UnixMilli()

		// Candidates stop at the bucket's close: a historical anchor must
		// not absorb entries written after its period ended.
		to := anchorEnd.UnixMilli() - 1
		if now := e.now().UnixMilli(); now < to {
			to = now
		}

		entries, err := e.store.ListWindow(key.UID, from, to)
		if err != nil {
			return nil, fmt.Errorf("list window for %s: %w", key.String(), err)
		}

		candidates := make([]resonance.Candidate, 0, len(entries))
		for _, en := range entries {
			candidates = append(candidates, resonance.Candidate{
				EntryID:   en.ID,
				CreatedAt: time.UnixMilli(en.CreatedAt),
				Embedding: en.Embedding,
			})
		}

		result := e.scorer.Score(anchorAt, anchorVec, candidates)
		result.AnchorKey = key.String()

		e.log.Info("resonance computed",
			zap.String("anchor_key", result.AnchorKey),
			zap.Int("candidates", result.Candidates),
			zap.Float64("p90", result.P90),
			zap.Float64("threshold", result.Threshold),
			zap.Int("hits", len(result.Hits)),
			zap.Float64("top_score", result.TopScore))

		return result, nil
	})
}

// Outcome is the result of an asynchronous resolve.
type Outcome struct {
	Result *resonance.Result
	Err    error
}

// ResolveAsync runs Resolve in its own goroutine and delivers the outcome
// on the returned channel. The channel is buffered, so the result never
// blocks on an absent reader.
func (e *Engine) ResolveAsync(ctx context.Context, key anchor.Key, anchorVec []float32) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		result, err := e.Resolve(ctx, key, anchorVec)
		ch <- Outcome{Result: result, Err: err}
	}()
	return ch
}

// Constellation resolves an anchor and builds the graph over its hits.
func (e *Engine) Constellation(ctx context.Context, key anchor.Key, anchorVec []float32) (*constellation.Graph, error) {
	result, err := e.Resolve(ctx, key, anchorVec)
	if err != nil {
		return nil, err
	}

	refs := make(map[string]constellation.EntryRef, len(result.Hits))
	for _, h := range result.Hits {
		en, err := e.store.GetEntry(h.EntryID)
		if err != nil {
			return nil, fmt.Errorf("load entry %s: %w", h.EntryID, err)
		}
		if en == nil {
			continue
		}
		refs[h.EntryID] = constellation.EntryRef{
			ID:        en.ID,
			Text:      en.Text,
			CreatedAt: time.UnixMilli(en.CreatedAt),
			Embedding: en.Embedding,
		}
	}

	g := e.builder.Build(result.Hits, refs)

	e.log.Info("constellation built",
		zap.String("anchor_key", result.AnchorKey),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Float64("avg_degree", g.AverageDegree()))

	return g, nil
}

// Related finds the k entries most similar to an embedding. The ANN index
// serves when present; otherwise the store ranks exhaustively.
func (e *Engine) Related(ctx context.Context, uid string, embedding []float32, k int) ([]store.SimilarHit, error) {
	if k <= 0 || resonance.IsZero(embedding) {
		return nil, nil
	}

	if e.index == nil || e.index.Size() == 0 {
		return e.store.SimilarEntries(uid, embedding, k)
	}

	// over-fetch: the index spans all users, so filter by uid after
	ids, err := e.index.Nearest(embedding, k*4)
	if err != nil {
		return nil, err
	}

	hits := make([]store.SimilarHit, 0, k)
	for _, id := range ids {
		if len(hits) >= k {
			break
		}
		en, err := e.store.GetEntry(id)
		if err != nil {
			return nil, err
		}
		if en == nil || en.UID != uid {
			continue
		}
		hits = append(hits, store.SimilarHit{
			EntryID:    en.ID,
			Similarity: resonance.CosineSimilarity(embedding, en.Embedding),
		})
	}
	return hits, nil
}

// InvalidateAnchor drops one cached anchor result.
func (e *Engine) InvalidateAnchor(key anchor.Key) {
	e.cache.Invalidate(key.String())
}
