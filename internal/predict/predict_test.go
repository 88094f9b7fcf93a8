package predict

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpaterson/trackml/internal/features"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{raw: 0, want: 0},
		{raw: 4.4, want: 4},
		{raw: 11.6, want: 0},
		{raw: 14.2, want: 2},
		{raw: 25, want: 1},
		{raw: -1, want: 11},
		{raw: -13.4, want: 11},
	}

	for _, tt := range tests {
		got := Normalize(KeyTarget, tt.raw)
		assert.Equal(t, tt.want, got, "raw=%f", tt.raw)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 11.0)
	}
}

func TestNormalizeBounded(t *testing.T) {
	assert.Equal(t, 0.0, Normalize("energy", -3.2))
	assert.Equal(t, 1.0, Normalize("danceability", 42.0))
	assert.Equal(t, 0.73, Normalize("valence", 0.73))
}

func TestNormalizePassThrough(t *testing.T) {
	assert.Equal(t, 128.4, Normalize("tempo", 128.4))
	assert.Equal(t, -7.2, Normalize("loudness", -7.2))
}

func TestModelPredict(t *testing.T) {
	m := &Model{Target: "energy", Bias: 0.1, Weights: []float64{0.5, -0.25}}

	got, err := m.Predict([]float64{2, 4})
	require.NoError(t, err)
	assert.InDelta(t, 0.1+1.0-1.0, got, 1e-9)
}

func TestModelPredictWidthMismatch(t *testing.T) {
	m := &Model{Target: "energy", Bias: 0, Weights: []float64{1, 2, 3}}

	_, err := m.Predict([]float64{1})
	assert.ErrorIs(t, err, ErrBadVector)
}

func TestLoadModel(t *testing.T) {
	doc := `{"target": "tempo", "bias": 60.0, "weights": [0.9, 12.5]}`

	m, err := LoadModel(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "tempo", m.Target)
	assert.Equal(t, 60.0, m.Bias)
	assert.Len(t, m.Weights, 2)
}

func TestLoadModelRejectsEmpty(t *testing.T) {
	_, err := LoadModel(strings.NewReader(`{"target": "", "weights": []}`))
	assert.Error(t, err)
}

func writeModelDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, target := range Targets() {
		weights := make([]string, len(FieldsFor(target)))
		for i := range weights {
			weights[i] = "0.1"
		}
		doc := `{"target": "` + target + `", "bias": 0.2, "weights": [` + strings.Join(weights, ",") + `]}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, target+".json"), []byte(doc), 0644))
	}
	return dir
}

func TestLocalStoreOpenMissing(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	_, err := store.Open(context.Background(), "energy")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestRegistryEager(t *testing.T) {
	store := NewLocalStore(writeModelDir(t))
	reg, err := NewRegistry(context.Background(), store, LoadEager)
	require.NoError(t, err)

	got, err := reg.Predict(context.Background(), "tempo", []float64{100, 2})
	require.NoError(t, err)
	assert.InDelta(t, 0.2+10.0+0.2, got, 1e-9)
}

func TestRegistryEagerToleratesMissingModels(t *testing.T) {
	dir := t.TempDir()
	doc := `{"target": "energy", "bias": 0, "weights": [1, 1, 1, 1]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "energy.json"), []byte(doc), 0644))

	reg, err := NewRegistry(context.Background(), NewLocalStore(dir), LoadEager)
	require.NoError(t, err)

	_, err = reg.Predict(context.Background(), "energy", []float64{1, 1, 1, 1})
	assert.NoError(t, err)

	_, err = reg.Predict(context.Background(), "tempo", []float64{1, 1})
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestRegistryEagerAllMissing(t *testing.T) {
	_, err := NewRegistry(context.Background(), NewLocalStore(t.TempDir()), LoadEager)
	assert.Error(t, err)
}

func TestRegistryLazy(t *testing.T) {
	store := NewLocalStore(writeModelDir(t))
	reg, err := NewRegistry(context.Background(), store, LoadLazy)
	require.NoError(t, err)

	got, err := reg.Predict(context.Background(), "tempo", []float64{100, 2})
	require.NoError(t, err)
	assert.InDelta(t, 0.2+10.0+0.2, got, 1e-9)

	_, err = reg.Predict(context.Background(), "no-such-target", []float64{1})
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestRegistryUnknownMode(t *testing.T) {
	_, err := NewRegistry(context.Background(), NewLocalStore(t.TempDir()), LoadMode("sometimes"))
	assert.Error(t, err)
}

// scriptedPredictor returns fixed raw values per target and errors for the rest.
type scriptedPredictor struct {
	raw map[string]float64
}

func (s *scriptedPredictor) Predict(_ context.Context, target string, _ []float64) (float64, error) {
	if v, ok := s.raw[target]; ok {
		return v, nil
	}
	return 0, errors.New("model load failed")
}

func fullFeatureSet() features.Set {
	set := features.Set{}
	for _, target := range Targets() {
		for _, field := range FieldsFor(target) {
			parts := strings.SplitN(field, ".", 2)
			if set[parts[0]] == nil {
				set[parts[0]] = map[string]float64{}
			}
			set[parts[0]][parts[1]] = 1.0
		}
	}
	return set
}

func TestAssembleNormalizesAndIsolates(t *testing.T) {
	p := &scriptedPredictor{raw: map[string]float64{
		"energy":  3.7,  // clamps to 1
		"valence": -0.4, // clamps to 0
		KeyTarget: 14.6, // rounds to 15, mod 12 = 3
		"tempo":   123.0,
	}}

	predictions := Assemble(context.Background(), p, fullFeatureSet())

	// Every catalog target has an entry, successful or skipped.
	assert.Len(t, predictions, len(Targets()))

	require.NotNil(t, predictions["energy"])
	assert.Equal(t, 1.0, *predictions["energy"])
	require.NotNil(t, predictions["valence"])
	assert.Equal(t, 0.0, *predictions["valence"])
	require.NotNil(t, predictions[KeyTarget])
	assert.Equal(t, 3.0, *predictions[KeyTarget])
	require.NotNil(t, predictions["tempo"])
	assert.Equal(t, 123.0, *predictions["tempo"])

	// Targets whose predictor failed are skipped, not fatal.
	assert.Nil(t, predictions["danceability"])
}

func TestAssembleSkipsUnvectorizableTargets(t *testing.T) {
	p := &scriptedPredictor{raw: map[string]float64{"energy": 0.5}}

	set := fullFeatureSet()
	delete(set, "rhythm") // breaks tempo, danceability, valence vectors

	predictions := Assemble(context.Background(), p, set)

	assert.Nil(t, predictions["tempo"])
	assert.Nil(t, predictions["danceability"])
	require.NotNil(t, predictions["energy"])
	assert.Equal(t, 0.5, *predictions["energy"])
}
