package model

import (
	"encoding/json"
	"fmt"

	"github.com/killallgit/genre-api/internal/features"
)

// Scaler standardizes a feature vector with per-feature mean and scale
type Scaler struct {
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
	FeatureNames []string  `json:"feature_names,omitempty"`
}

// ParseScaler decodes a scaler artifact. It must cover exactly the extractor's
// features, and if feature names are recorded they must match the vector order.
func ParseScaler(data []byte) (*Scaler, error) {
	var s Scaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid scaler json: %w", err)
	}

	if len(s.Mean) != features.NumFeatures {
		return nil, fmt.Errorf("scaler mean has %d values, expected %d", len(s.Mean), features.NumFeatures)
	}
	if len(s.Scale) == 0 {
		s.Scale = make([]float64, len(s.Mean))
		for i := range s.Scale {
			s.Scale[i] = 1
		}
	}
	if len(s.Scale) != len(s.Mean) {
		return nil, fmt.Errorf("scaler scale has %d values, mean has %d", len(s.Scale), len(s.Mean))
	}

	if len(s.FeatureNames) > 0 {
		if len(s.FeatureNames) != features.NumFeatures {
			return nil, fmt.Errorf("scaler lists %d feature names, expected %d", len(s.FeatureNames), features.NumFeatures)
		}
		for i, name := range s.FeatureNames {
			if name != features.Names[i] {
				return nil, fmt.Errorf("scaler feature %d is %q, expected %q", i, name, features.Names[i])
			}
		}
	}

	// A constant training feature has zero scale and is only centered
	for i, v := range s.Scale {
		if v == 0 {
			s.Scale[i] = 1
		}
	}

	return &s, nil
}

// NumFeatures is the input width the scaler was fitted on
func (s *Scaler) NumFeatures() int {
	return len(s.Mean)
}

// Transform returns (x - mean) / scale without modifying x
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}
