package cmd

import (
	"log"

	"github.com/killallgit/genre-api/internal/audio"
	"github.com/killallgit/genre-api/internal/features"
	"github.com/killallgit/genre-api/internal/model"
	"github.com/killallgit/genre-api/internal/services/cache"
	"github.com/killallgit/genre-api/internal/services/classifier"
	"github.com/killallgit/genre-api/pkg/config"
	"github.com/killallgit/genre-api/pkg/ffmpeg"
)

// pipeline is the classification stack shared by serve, classify and listen
type pipeline struct {
	artifacts *model.Artifacts
	service   *classifier.Service
	cache     *cache.MemoryCache
}

// close stops background work owned by the pipeline
func (p *pipeline) close() {
	if p.cache != nil {
		p.cache.Stop()
	}
}

// newPipeline loads the model artifacts and wires the decoder, extractor and classifier.
// Artifact failures are fatal; a missing ffmpeg only disables the fallback decoder.
func newPipeline(cfg *config.Config, opts ...classifier.ServiceOption) (*pipeline, error) {
	artifacts, err := model.Load(cfg.Model)
	if err != nil {
		return nil, err
	}

	var fallback audio.PCMDecoder
	ff := ffmpeg.New(cfg.Processing.FFmpegPath, cfg.Processing.FFprobePath, cfg.Processing.FFmpegTimeout)
	if err := ff.ValidateBinaries(); err != nil {
		log.Printf("[WARN] %v; only wav, flac and mp3 can be decoded", err)
	} else {
		fallback = ff
	}

	p := &pipeline{artifacts: artifacts}

	options := []classifier.ServiceOption{
		classifier.WithWorkers(cfg.Processing.Workers),
		classifier.WithProcessing(cfg.Processing),
		classifier.WithDurationCaps(cfg.Audio.MaxFileDuration, cfg.Audio.MaxCaptureDuration),
	}
	if cfg.Cache.Enabled {
		p.cache = cache.NewMemoryCache(cfg.Cache.MaxEntries, cfg.Cache.CleanupInterval)
		options = append(options, classifier.WithCache(p.cache, cfg.Cache.DefaultTTL))
	}
	options = append(options, opts...)

	p.service = classifier.NewService(
		audio.NewDecoder(fallback, cfg.Storage.TempDir),
		features.NewExtractor(),
		artifacts,
		options...,
	)
	return p, nil
}
