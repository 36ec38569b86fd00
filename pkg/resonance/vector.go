package resonance

import "math"

// normEpsilon guards against floating-point underflow when normalizing.
const normEpsilon = 1e-12

// CosineSimilarity calculates the cosine similarity between two vectors.
// Returns 0.0 if dimensions mismatch or either vector is zero: a vector
// carrying no signal is "unrelated", never NaN.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	dotProduct := 0.0
	normA := 0.0
	normB := 0.0

	for i := 0; i < len(a); i++ {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA < normEpsilon || normB < normEpsilon {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Normalize returns a unit-length copy of v. The all-zero vector, a vector
// with sub-epsilon norm, or one containing NaN/Inf components comes back as
// an all-zero copy of the same dimensionality; callers treat that as
// "no signal" and exclude it from similarity contributions.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))

	sumSq := 0.0
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return out
		}
		sumSq += f * f
	}
	if sumSq < normEpsilon {
		return out
	}

	norm := float32(math.Sqrt(sumSq))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// IsZero reports whether v carries no signal (empty or all components zero).
func IsZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
