package model

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/killallgit/genre-api/pkg/config"
	apperrors "github.com/killallgit/genre-api/pkg/errors"
)

// Artifacts bundles the trained classifier with its scaler and label encoder.
// It is built once at startup and only read afterwards.
type Artifacts struct {
	Classifier Classifier
	Capability Capability
	Scaler     *Scaler
	Encoder    *LabelEncoder
}

// NewArtifacts checks that the three parts agree on feature and class counts
// and resolves the classifier's capability
func NewArtifacts(clf Classifier, scaler *Scaler, encoder *LabelEncoder) (*Artifacts, error) {
	if clf == nil || scaler == nil || encoder == nil {
		return nil, fmt.Errorf("classifier, scaler and label encoder are all required")
	}
	if clf.NumFeatures() != scaler.NumFeatures() {
		return nil, fmt.Errorf("classifier expects %d features, scaler produces %d", clf.NumFeatures(), scaler.NumFeatures())
	}
	if clf.NumClasses() != encoder.Len() {
		return nil, fmt.Errorf("classifier has %d classes, label encoder has %d", clf.NumClasses(), encoder.Len())
	}

	return &Artifacts{
		Classifier: clf,
		Capability: ResolveCapability(clf),
		Scaler:     scaler,
		Encoder:    encoder,
	}, nil
}

// Load reads and validates the artifacts named by cfg
func Load(cfg config.ModelConfig) (*Artifacts, error) {
	clfPath := filepath.Join(cfg.ArtifactsDir, cfg.ClassifierFile)
	data, err := os.ReadFile(clfPath)
	if err != nil {
		return nil, apperrors.ArtifactLoadError("classifier", err)
	}
	clf, err := ParseClassifier(data)
	if err != nil {
		return nil, apperrors.ArtifactLoadError("classifier", fmt.Errorf("%s: %w", clfPath, err))
	}

	scalerPath := filepath.Join(cfg.ArtifactsDir, cfg.ScalerFile)
	data, err = os.ReadFile(scalerPath)
	if err != nil {
		return nil, apperrors.ArtifactLoadError("scaler", err)
	}
	scaler, err := ParseScaler(data)
	if err != nil {
		return nil, apperrors.ArtifactLoadError("scaler", fmt.Errorf("%s: %w", scalerPath, err))
	}

	encoderPath := filepath.Join(cfg.ArtifactsDir, cfg.LabelEncoderFile)
	data, err = os.ReadFile(encoderPath)
	if err != nil {
		return nil, apperrors.ArtifactLoadError("label encoder", err)
	}
	encoder, err := ParseLabelEncoder(data)
	if err != nil {
		return nil, apperrors.ArtifactLoadError("label encoder", fmt.Errorf("%s: %w", encoderPath, err))
	}

	artifacts, err := NewArtifacts(clf, scaler, encoder)
	if err != nil {
		return nil, apperrors.ArtifactLoadError("model artifacts", err)
	}

	log.Printf("[INFO] Loaded %s (%s) with %d genres from %s",
		clf.Name(), artifacts.Capability, encoder.Len(), cfg.ArtifactsDir)
	return artifacts, nil
}

// ModelName is the classifier's estimator name
func (a *Artifacts) ModelName() string {
	return a.Classifier.Name()
}

// Genres lists every known genre in class-index order
func (a *Artifacts) Genres() []string {
	return a.Encoder.Classes()
}
