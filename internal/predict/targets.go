// Package predict turns base feature sets into normalized per-target
// predictions. Models may live in-process (loaded from a local directory or
// a GCS bucket) or behind a remote inference service; the prediction
// contract is identical either way.
package predict

import (
	"math"
	"sort"
)

// KeyTarget is the rotational target: predictions are reduced to a pitch
// class in {0..11}.
const KeyTarget = "key"

// boundedTargets are clamped to the closed interval [0,1].
var boundedTargets = map[string]bool{
	"danceability":     true,
	"energy":           true,
	"valence":          true,
	"acousticness":     true,
	"instrumentalness": true,
	"liveness":         true,
	"speechiness":      true,
}

// targetFields maps each target to the dotted feature paths its model
// consumes, in vector order. The catalog is fixed: targets not listed here
// are never predicted.
var targetFields = map[string][]string{
	"danceability":     {"rhythm.tempo", "rhythm.beat_strength", "rhythm.onset_rate", "spectral.flux_mean"},
	"energy":           {"energy.rms_mean", "energy.rms_std", "spectral.centroid_mean", "spectral.flux_mean"},
	"valence":          {"tonal.mode", "spectral.centroid_mean", "rhythm.tempo", "energy.rms_mean"},
	"acousticness":     {"spectral.rolloff_mean", "spectral.flatness_mean", "energy.rms_mean"},
	"instrumentalness": {"vocal.presence", "spectral.flatness_mean", "spectral.contrast_mean"},
	"liveness":         {"energy.rms_std", "spectral.flatness_mean", "ambience.reverb_estimate"},
	"speechiness":      {"vocal.presence", "spectral.zcr_mean", "spectral.zcr_std"},
	"tempo":            {"rhythm.tempo", "rhythm.onset_rate"},
	"loudness":         {"energy.rms_mean", "energy.peak"},
	KeyTarget:          {"tonal.chroma_peak", "tonal.chroma_centroid", "tonal.mode"},
}

// Targets returns the full target catalog in stable order.
func Targets() []string {
	names := make([]string, 0, len(targetFields))
	for name := range targetFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldsFor returns the feature paths a target's vector is built from.
func FieldsFor(target string) []string {
	return targetFields[target]
}

// Normalize applies the per-target output policy to a raw model value:
// the key target rounds to the nearest pitch class mod 12, bounded targets
// clamp to [0,1], anything else passes through.
func Normalize(target string, raw float64) float64 {
	switch {
	case target == KeyTarget:
		k := int(math.Round(raw)) % 12
		if k < 0 {
			k += 12
		}
		return float64(k)
	case boundedTargets[target]:
		if raw < 0 {
			return 0
		}
		if raw > 1 {
			return 1
		}
		return raw
	default:
		return raw
	}
}
