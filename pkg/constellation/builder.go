package constellation

import (
	"math"
	"sort"
	"time"

	"github.com/somnia-app/gosomnia/pkg/resonance"
)

// Builder defaults.
const (
	// GraphTopK is the per-node edge budget.
	GraphTopK = 5

	// GraphEdgeMin drops low-signal edges regardless of rank.
	GraphEdgeMin = 0.65

	// MaxVisualOverlap is a layout hint carried through to the renderer;
	// the builder itself emits relational data only.
	MaxVisualOverlap = 2

	labelWords = 4
)

// Config holds graph construction parameters.
type Config struct {
	TopK       int     `json:"topK"`
	EdgeMin    float64 `json:"edgeMin"`
	TauDays    float64 `json:"tauDays"`
	MaxOverlap int     `json:"maxVisualOverlap"`
}

// DefaultConfig returns the production graph parameters.
func DefaultConfig() Config {
	return Config{
		TopK:       GraphTopK,
		EdgeMin:    GraphEdgeMin,
		TauDays:    resonance.TimeDecayTauDays,
		MaxOverlap: MaxVisualOverlap,
	}
}

// EntryRef is the slice of a journal entry the builder needs.
type EntryRef struct {
	ID        string
	Label     string
	Text      string
	CreatedAt time.Time
	Embedding []float32
}

// Builder turns resonance hits into a sparse constellation graph.
type Builder struct {
	Config Config
}

// NewBuilder creates a builder with the given config.
func NewBuilder(cfg Config) *Builder {
	return &Builder{Config: cfg}
}

// Build constructs the graph from hits. Only entries that cleared the
// resonance threshold are eligible. Edge weight is the pairwise decayed
// similarity: clamp(cosine, 0, 1) discounted by the age gap in days between
// the two entries. Edges below EdgeMin are dropped, and the strongest edges
// win the per-node TopK budget, so no node's edge set ever exceeds TopK.
func (b *Builder) Build(hits []resonance.Hit, refs map[string]EntryRef) *Graph {
	g := NewGraph()

	// Nodes first: a hit without edges still renders as a lone star.
	var ids []string
	for _, h := range hits {
		ref, ok := refs[h.EntryID]
		if !ok {
			continue
		}
		label := ref.Label
		if label == "" {
			label = labelFromText(ref.Text, labelWords)
		}
		g.EnsureNode(ref.ID, label, resonance.DecayWeightTau(h.AgeDays, b.Config.TauDays))
		ids = append(ids, ref.ID)
	}

	// All-pairs candidate edges over the (threshold-capped) hit set.
	var candidates []*Edge
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b2 := refs[ids[i]], refs[ids[j]]

			raw := resonance.CosineSimilarity(a.Embedding, b2.Embedding)
			gapDays := math.Abs(a.CreatedAt.Sub(b2.CreatedAt).Hours()) / 24.0
			weight := resonance.Clamp01(raw) * resonance.DecayWeightTau(gapDays, b.Config.TauDays)

			if weight < b.Config.EdgeMin {
				continue
			}
			candidates = append(candidates, &Edge{
				ID: EdgeID(ids[i], ids[j]), A: ids[i], B: ids[j], Weight: weight,
			})
		}
	}

	// Strongest edges claim the per-node budget first. Deterministic:
	// equal weights fall back to edge ID order.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Weight != candidates[j].Weight {
			return candidates[i].Weight > candidates[j].Weight
		}
		return candidates[i].ID < candidates[j].ID
	})

	for _, e := range candidates {
		if g.Degree(e.A) >= b.Config.TopK || g.Degree(e.B) >= b.Config.TopK {
			continue
		}
		g.AddEdge(e.A, e.B, e.Weight)
	}

	return g
}
