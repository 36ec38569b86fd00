package resonance

import (
	"sort"
	"time"
)

const hoursPerDay = 24.0

// Scorer ranks candidate entries against an anchor embedding. Pure and
// stateless given its inputs; the clock is injected so tests can pin
// ComputedAt.
type Scorer struct {
	Config Config
	Now    func() time.Time
}

// NewScorer creates a scorer with the given config and the wall clock.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{Config: cfg, Now: time.Now}
}

// Score evaluates candidates against the anchor instant and embedding.
//
// Candidates outside the lookback window or carrying a zero embedding are
// skipped. Each survivor scores clamp(cosine, 0, 1) * decay(ageDays). The
// threshold is the score distribution's percentile, floored at MinBase;
// below MinSample candidates the floor always wins. Hits are the survivors
// at or above the threshold, ordered by score descending with more recent
// entries first on ties. Total on every input: zero candidates yield an
// empty hit list, the base threshold, and a zero top score.
func (s *Scorer) Score(anchorAt time.Time, anchorVec []float32, candidates []Candidate) *Result {
	lookback := time.Duration(s.Config.LookbackDays * hoursPerDay * float64(time.Hour))

	scored := make([]Hit, 0, len(candidates))
	top := 0.0

	for _, c := range candidates {
		if anchorAt.Sub(c.CreatedAt) > lookback {
			continue
		}
		if IsZero(c.Embedding) {
			continue
		}

		ageDays := anchorAt.Sub(c.CreatedAt).Hours() / hoursPerDay
		if ageDays < 0 {
			// Entries timestamped after the anchor count as brand new.
			ageDays = 0
		}

		raw := CosineSimilarity(anchorVec, c.Embedding)
		decayed := Clamp01(raw) * DecayWeightTau(ageDays, s.Config.TauDays)

		scored = append(scored, Hit{
			EntryID:      c.EntryID,
			RawCosine:    raw,
			DecayedScore: decayed,
			AgeDays:      ageDays,
		})
		if decayed > top {
			top = decayed
		}
	}

	res := &Result{
		Threshold:  s.Config.MinBase,
		Hits:       []Hit{},
		TopScore:   top,
		Candidates: len(scored),
		ComputedAt: s.Now(),
	}

	if len(scored) == 0 {
		return res
	}

	scores := make([]float64, len(scored))
	for i, h := range scored {
		scores[i] = h.DecayedScore
	}
	res.P90 = Percentile(scores, s.Config.Percentile)

	if len(scored) >= s.Config.MinSample && res.P90 > s.Config.MinBase {
		res.Threshold = res.P90
	}

	for _, h := range scored {
		if h.DecayedScore >= res.Threshold {
			res.Hits = append(res.Hits, h)
		}
	}

	// Score descending; on ties the smaller age (more recent entry) wins.
	sort.SliceStable(res.Hits, func(i, j int) bool {
		if res.Hits[i].DecayedScore != res.Hits[j].DecayedScore {
			return res.Hits[i].DecayedScore > res.Hits[j].DecayedScore
		}
		return res.Hits[i].AgeDays < res.Hits[j].AgeDays
	})

	return res
}
