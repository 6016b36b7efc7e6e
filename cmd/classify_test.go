package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/genre-api/internal/features"
	"github.com/killallgit/genre-api/internal/prediction"
)

// writeArtifacts stores a nearest-centroid model with genres at feature levels 0, 1 and 2
func writeArtifacts(t *testing.T, dir string) {
	t.Helper()
	rows := make([]string, 3)
	for c := range rows {
		rows[c] = "[" + strings.TrimSuffix(strings.Repeat(fmt.Sprintf("%d,", c), features.NumFeatures), ",") + "]"
	}
	files := map[string]string{
		"genre_classifier.json":    `{"type":"nearest_centroid","centroids":[` + strings.Join(rows, ",") + `]}`,
		"genre_scaler.json":        `{"mean":[` + strings.TrimSuffix(strings.Repeat("0,", features.NumFeatures), ",") + `]}`,
		"genre_label_encoder.json": `{"classes":["blues","jazz","metal"]}`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

// writeSilence writes one second of 16-bit mono silence
func writeSilence(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, 22050, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 22050},
		Data:           make([]int, 22050),
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

func TestClassifyCommand(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)
	t.Setenv("GENRE_MODEL_ARTIFACTS_DIR", dir)
	t.Setenv("GENRE_STORAGE_TEMP_DIR", dir)

	clip := filepath.Join(dir, "silence.wav")
	writeSilence(t, clip)

	out, err := execute(t, "classify", "--json", clip)
	require.NoError(t, err)

	var result struct {
		File string `json:"file"`
		prediction.GenrePrediction
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &result))
	assert.Equal(t, clip, result.File)
	assert.Equal(t, "blues", result.Genre)
	assert.Equal(t, 1.0, result.Confidence)

	_, err = execute(t, "classify", "--json", filepath.Join(dir, "missing.wav"))
	assert.Error(t, err)
}

func TestPrintRanking(t *testing.T) {
	result := &prediction.GenrePrediction{
		Genre:      "jazz",
		Confidence: 0.7,
		TopGenres: []prediction.GenreScore{
			{Genre: "jazz", Confidence: 0.7},
			{Genre: "blues", Confidence: 0.2},
			{Genre: "metal", Confidence: 0.1},
		},
	}

	var buf bytes.Buffer
	printRanking(&buf, "clip.wav", result, 2, 1500*time.Millisecond)
	out := buf.String()

	assert.Contains(t, out, "clip.wav")
	assert.Contains(t, out, "Genre:        jazz (70.0%)")
	assert.Contains(t, out, "Elapsed:      1.5s")
	assert.Contains(t, out, "blues")
	assert.NotContains(t, out, "metal")

	buf.Reset()
	printRanking(&buf, "live", result, 0, 0)
	assert.Contains(t, buf.String(), "metal")
	assert.NotContains(t, buf.String(), "Elapsed")
}
