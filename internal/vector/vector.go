// Package vector provides similarity math for embedding vectors.
package vector

import "math"

// Cosine returns the cosine similarity between a and b.
// It returns 0.0 when the vectors differ in length or either has zero
// magnitude; it never panics. Scores are treated as [0,1] in this domain.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
