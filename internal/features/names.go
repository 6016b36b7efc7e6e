package features

import "fmt"

// NumFeatures is the length of every feature vector the classifier accepts
const NumFeatures = 57

// NumMFCC is the number of cepstral coefficients summarized in the vector
const NumMFCC = 20

// Vector holds one clip's features in Names order
type Vector [NumFeatures]float64

// Slot offsets into Vector
const (
	idxChroma     = 0
	idxRMS        = 2
	idxCentroid   = 4
	idxBandwidth  = 6
	idxRolloff    = 8
	idxZCR        = 10
	idxHarmony    = 12
	idxPercussive = 14
	idxTempo      = 16
	idxMFCC       = 17
)

// Names lists the feature names in vector order. The order is frozen: the scaler and classifier depend on it.
var Names = buildNames()

func buildNames() [NumFeatures]string {
	var names [NumFeatures]string
	groups := []string{
		"chroma_stft",
		"rms",
		"spectral_centroid",
		"spectral_bandwidth",
		"rolloff",
		"zero_crossing_rate",
		"harmony",
		"perceptr",
	}

	i := 0
	for _, g := range groups {
		names[i] = g + "_mean"
		names[i+1] = g + "_var"
		i += 2
	}
	names[i] = "tempo"
	i++
	for k := 1; k <= NumMFCC; k++ {
		names[i] = fmt.Sprintf("mfcc%d_mean", k)
		names[i+1] = fmt.Sprintf("mfcc%d_var", k)
		i += 2
	}
	return names
}

// Map returns the vector keyed by feature name
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, NumFeatures)
	for i, name := range Names {
		m[name] = v[i]
	}
	return m
}

// Slice returns a copy of the vector as a slice
func (v Vector) Slice() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, v[:])
	return out
}
