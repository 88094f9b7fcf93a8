// Package features talks to the external audio analyzer and turns its
// output into per-target model input vectors.
package features

import (
	"context"
	"errors"
	"math"
	"strings"
)

// ErrExtractionFailed means the analyzer returned an empty or null feature
// set. It is terminal for the job.
var ErrExtractionFailed = errors.New("base feature extraction failed")

// Set is the analyzer's output: named groups of numeric fields. The core
// treats it as opaque apart from dotted-path lookup during vectorization.
type Set map[string]map[string]float64

// Extractor computes the base feature set for a local audio file.
type Extractor interface {
	Extract(ctx context.Context, path string) (Set, error)
}

// Vectorize builds a model input vector by resolving dotted paths
// ("spectral.centroid_mean") against the set. It reports not-ok when the
// field list is empty, any field is absent, or any value is NaN; callers
// must then skip the target without invoking the model. Infinite values
// pass through; bounded targets clamp them downstream.
func Vectorize(set Set, fields []string) ([]float64, bool) {
	if len(fields) == 0 || set == nil {
		return nil, false
	}

	vec := make([]float64, 0, len(fields))
	for _, field := range fields {
		group, name, ok := splitField(field)
		if !ok {
			return nil, false
		}
		values, ok := set[group]
		if !ok {
			return nil, false
		}
		v, ok := values[name]
		if !ok || math.IsNaN(v) {
			return nil, false
		}
		vec = append(vec, v)
	}
	return vec, true
}

func splitField(field string) (group, name string, ok bool) {
	idx := strings.IndexByte(field, '.')
	if idx <= 0 || idx == len(field)-1 {
		return "", "", false
	}
	return field[:idx], field[idx+1:], true
}
