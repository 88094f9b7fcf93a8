package features

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSet() Set {
	return Set{
		"spectral": {"centroid_mean": 1520.5, "rolloff_mean": 3100.2},
		"rhythm":   {"tempo": 128.0, "beat_strength": 0.82},
	}
}

func TestVectorize(t *testing.T) {
	vec, ok := Vectorize(testSet(), []string{"spectral.centroid_mean", "rhythm.tempo"})
	require.True(t, ok)
	assert.Equal(t, []float64{1520.5, 128.0}, vec)
}

func TestVectorizeMissingField(t *testing.T) {
	_, ok := Vectorize(testSet(), []string{"spectral.centroid_mean", "rhythm.swing"})
	assert.False(t, ok)
}

func TestVectorizeMissingGroup(t *testing.T) {
	_, ok := Vectorize(testSet(), []string{"timbre.mfcc_1"})
	assert.False(t, ok)
}

func TestVectorizeEmptyFields(t *testing.T) {
	_, ok := Vectorize(testSet(), nil)
	assert.False(t, ok)
}

func TestVectorizeNaN(t *testing.T) {
	set := testSet()
	set["rhythm"]["tempo"] = math.NaN()

	_, ok := Vectorize(set, []string{"rhythm.tempo"})
	assert.False(t, ok)
}

func TestVectorizeKeepsInfiniteValues(t *testing.T) {
	set := testSet()
	set["rhythm"]["tempo"] = math.Inf(1)

	vec, ok := Vectorize(set, []string{"rhythm.tempo"})
	require.True(t, ok)
	assert.True(t, math.IsInf(vec[0], 1))
}

func TestVectorizeMalformedField(t *testing.T) {
	_, ok := Vectorize(testSet(), []string{"nodotted"})
	assert.False(t, ok)
}

func writeAudioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3fakeaudio"), 0644))
	return path
}

func TestHTTPExtractor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/analyze", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features": {"spectral": {"centroid_mean": 1520.5}}}`))
	}))
	defer srv.Close()

	extractor := NewHTTPExtractor(srv.URL, 5*time.Second)
	set, err := extractor.Extract(context.Background(), writeAudioFixture(t))

	require.NoError(t, err)
	assert.Equal(t, 1520.5, set["spectral"]["centroid_mean"])
}

func TestHTTPExtractorEmptySet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features": {}}`))
	}))
	defer srv.Close()

	extractor := NewHTTPExtractor(srv.URL, 5*time.Second)
	_, err := extractor.Extract(context.Background(), writeAudioFixture(t))

	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestHTTPExtractorServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "decode failure", http.StatusInternalServerError)
	}))
	defer srv.Close()

	extractor := NewHTTPExtractor(srv.URL, 5*time.Second)
	_, err := extractor.Extract(context.Background(), writeAudioFixture(t))

	assert.Error(t, err)
}
