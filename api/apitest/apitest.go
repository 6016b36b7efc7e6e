// Package apitest provides fakes shared by the handler tests.
package apitest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/killallgit/genre-api/internal/features"
	"github.com/killallgit/genre-api/internal/model"
	"github.com/killallgit/genre-api/internal/prediction"
)

// Genres are the classes of the artifacts returned by Artifacts
var Genres = []string{"blues", "jazz", "metal"}

// Artifacts builds a nearest-centroid model over Genres
func Artifacts(t *testing.T) *model.Artifacts {
	t.Helper()

	rows := make([]string, len(Genres))
	for c := range rows {
		vals := make([]string, features.NumFeatures)
		for i := range vals {
			vals[i] = fmt.Sprint(c)
		}
		rows[c] = "[" + strings.Join(vals, ",") + "]"
	}
	clf, err := model.ParseClassifier([]byte(`{"type":"nearest_centroid","centroids":[` + strings.Join(rows, ",") + `]}`))
	require.NoError(t, err)

	scaler, err := model.ParseScaler([]byte(`{"mean":[` + strings.TrimSuffix(strings.Repeat("0,", features.NumFeatures), ",") + `]}`))
	require.NoError(t, err)

	enc, err := model.NewLabelEncoder(Genres)
	require.NoError(t, err)

	artifacts, err := model.NewArtifacts(clf, scaler, enc)
	require.NoError(t, err)
	return artifacts
}

// Call records one ClassifyBytes invocation
type Call struct {
	Data     []byte
	Filename string
	Source   string
}

// Classifier is a canned GenreClassifier
type Classifier struct {
	Model  *model.Artifacts
	Result *prediction.GenrePrediction
	Err    error

	mu    sync.Mutex
	calls []Call
}

// ClassifyBytes records the call and returns the canned result
func (f *Classifier) ClassifyBytes(ctx context.Context, data []byte, filename, source string) (*prediction.GenrePrediction, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Data: data, Filename: filename, Source: source})
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	return f.Result, nil
}

// Artifacts returns the configured model
func (f *Classifier) Artifacts() *model.Artifacts {
	return f.Model
}

// Calls returns the recorded invocations
func (f *Classifier) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Result is a typical ranked prediction
func Result() *prediction.GenrePrediction {
	return &prediction.GenrePrediction{
		Genre:      "jazz",
		Confidence: 0.7,
		TopGenres: []prediction.GenreScore{
			{Genre: "jazz", Confidence: 0.7},
			{Genre: "blues", Confidence: 0.2},
			{Genre: "metal", Confidence: 0.1},
		},
	}
}
