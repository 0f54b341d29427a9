package isodata

import "math"

// NeedsNormalization reports whether any normalization factor differs from 1.
func NeedsNormalization(rows []Joined) bool {
	for _, r := range rows {
		if r.Normalization != 1 {
			return true
		}
	}
	return false
}

// Normalize returns a copy of rows with corrected_area divided by the
// normalization factor. The input is never modified; on error no rows are
// returned.
func Normalize(rows []Joined) ([]Joined, error) {
	out := make([]Joined, len(rows))
	for i, r := range rows {
		f := r.Normalization
		if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &NormalizationError{Row: i + 1, Sample: r.Sample, Factor: f}
		}
		r.CorrectedArea = r.CorrectedArea / f
		out[i] = r
	}
	return out, nil
}
