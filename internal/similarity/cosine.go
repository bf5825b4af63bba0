// Package similarity implements the bounded vector similarity used by the
// ranking pipeline.
package similarity

import "math"

// Cosine returns the cosine similarity between a and b, clamped to [-1, 1]
// to guard against floating-point overshoot. Empty, nil, or mismatched-length
// inputs are an undefined comparison and return 0 rather than an error, as
// does a zero-magnitude vector.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
