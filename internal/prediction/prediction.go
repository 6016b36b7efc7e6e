package prediction

import (
	"math"
	"sort"

	"github.com/killallgit/genre-api/internal/features"
	"github.com/killallgit/genre-api/internal/model"
	apperrors "github.com/killallgit/genre-api/pkg/errors"
)

// GenreScore is one genre and the classifier's confidence in it
type GenreScore struct {
	Genre      string  `json:"genre" example:"rock"`
	Confidence float64 `json:"confidence" example:"0.8123"`
}

// GenrePrediction is the ranked outcome for one clip
type GenrePrediction struct {
	Genre      string       `json:"genre" example:"rock"`
	Confidence float64      `json:"confidence" example:"0.8123"`
	TopGenres  []GenreScore `json:"top_genres"`
}

// Predict scales vec, queries the classifier according to its capability and ranks every genre.
// Confidences are rounded to 4 decimals after ranking.
func Predict(vec features.Vector, artifacts *model.Artifacts) (*GenrePrediction, error) {
	if artifacts == nil || artifacts.Classifier == nil || artifacts.Scaler == nil || artifacts.Encoder == nil {
		return nil, apperrors.InferenceError("model artifacts are not loaded")
	}

	x, err := artifacts.Scaler.Transform(vec.Slice())
	if err != nil {
		return nil, apperrors.InferenceError("%v", err)
	}

	var confidences []float64
	switch artifacts.Capability {
	case model.Probabilistic:
		est, ok := artifacts.Classifier.(model.ProbabilityEstimator)
		if !ok {
			return nil, apperrors.InferenceError("classifier %s does not provide probabilities", artifacts.ModelName())
		}
		confidences = est.PredictProba(x)
	case model.Scoring:
		scorer, ok := artifacts.Classifier.(model.DecisionScorer)
		if !ok {
			return nil, apperrors.InferenceError("classifier %s does not provide decision scores", artifacts.ModelName())
		}
		confidences = model.Softmax(scorer.DecisionFunction(x))
	case model.LabelOnly:
		genre, err := artifacts.Encoder.InverseTransform(artifacts.Classifier.Predict(x))
		if err != nil {
			return nil, apperrors.InferenceError("%v", err)
		}
		return &GenrePrediction{
			Genre:      genre,
			Confidence: 1.0,
			TopGenres:  []GenreScore{{Genre: genre, Confidence: 1.0}},
		}, nil
	default:
		return nil, apperrors.InferenceError("unknown classifier capability %s", artifacts.Capability)
	}

	return rank(confidences, artifacts.Encoder)
}

// rank orders every class by descending confidence, keeping class order on ties
func rank(confidences []float64, encoder *model.LabelEncoder) (*GenrePrediction, error) {
	if len(confidences) != encoder.Len() {
		return nil, apperrors.InferenceError("classifier returned %d confidences for %d genres", len(confidences), encoder.Len())
	}

	order := make([]int, len(confidences))
	for i, c := range confidences {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, apperrors.InferenceError("classifier returned a non-finite confidence")
		}
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return confidences[order[a]] > confidences[order[b]]
	})

	top := make([]GenreScore, len(order))
	for r, idx := range order {
		genre, err := encoder.InverseTransform(idx)
		if err != nil {
			return nil, apperrors.InferenceError("%v", err)
		}
		top[r] = GenreScore{Genre: genre, Confidence: round4(confidences[idx])}
	}

	return &GenrePrediction{
		Genre:      top[0].Genre,
		Confidence: top[0].Confidence,
		TopGenres:  top,
	}, nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
