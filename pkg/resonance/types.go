// Package resonance scores how strongly past journal entries resonate with a
// reference point in time. Each candidate contributes cosine similarity
// against the anchor embedding, discounted by an exponential recency decay,
// and the hit cutoff adapts to the score distribution via a percentile
// threshold with a fixed floor.
package resonance

import "time"

// Tuning constants for the scoring model.
const (
	// TimeDecayTauDays is the e-folding time of the recency decay:
	// an entry 21 days old keeps 1/e of its raw similarity.
	TimeDecayTauDays = 21.0

	// ResonancePercentile selects the order statistic used for the
	// adaptive threshold.
	ResonancePercentile = 0.90

	// ResonanceMinBase floors the threshold so a tiny history cannot
	// collapse the cutoff to near zero.
	ResonanceMinBase = 0.78

	// LookbackDays is the default candidate window behind the anchor.
	LookbackDays = 90.0

	// MinPercentileSample is the candidate count below which the
	// percentile is too unstable to trust and the base floor always wins.
	MinPercentileSample = 5
)

// Config holds scoring parameters.
type Config struct {
	TauDays      float64 `json:"tauDays"`
	Percentile   float64 `json:"percentile"`
	MinBase      float64 `json:"minBase"`
	LookbackDays float64 `json:"lookbackDays"`
	MinSample    int     `json:"minSample"`
}

// DefaultConfig returns the production scoring parameters.
func DefaultConfig() Config {
	return Config{
		TauDays:      TimeDecayTauDays,
		Percentile:   ResonancePercentile,
		MinBase:      ResonanceMinBase,
		LookbackDays: LookbackDays,
		MinSample:    MinPercentileSample,
	}
}

// Candidate is one journal entry under consideration. The embedding must
// already be unit-normalized or all-zero; the scorer does not re-normalize.
type Candidate struct {
	EntryID   string
	CreatedAt time.Time
	Embedding []float32
}

// Hit is a candidate that cleared the threshold. Ephemeral: recomputed per
// query, never persisted.
type Hit struct {
	EntryID      string  `json:"entryId"`
	RawCosine    float64 `json:"rawCosine"`
	DecayedScore float64 `json:"decayedScore"`
	AgeDays      float64 `json:"ageDays"`
}

// Result is the artifact of one scoring pass, cached per anchor key.
type Result struct {
	AnchorKey  string    `json:"anchorKey"`
	Threshold  float64   `json:"threshold"`
	Hits       []Hit     `json:"hits"`
	P90        float64   `json:"p90"`
	TopScore   float64   `json:"topScore"`
	Candidates int       `json:"candidates"`
	ComputedAt time.Time `json:"computedAt"`
}
