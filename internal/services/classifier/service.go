package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/killallgit/genre-api/internal/audio"
	"github.com/killallgit/genre-api/internal/model"
	"github.com/killallgit/genre-api/internal/models"
	"github.com/killallgit/genre-api/internal/prediction"
	"github.com/killallgit/genre-api/internal/services/cache"
	"github.com/killallgit/genre-api/pkg/config"
	apperrors "github.com/killallgit/genre-api/pkg/errors"
)

const (
	DefaultWorkers            = 2
	DefaultMaxFileDuration    = 30 * time.Second
	DefaultMaxCaptureDuration = 10 * time.Second
)

// Service runs decode, extraction and prediction for one clip at a time per worker slot
type Service struct {
	decoder    Decoder
	extractor  Extractor
	artifacts  *model.Artifacts
	sem        *semaphore.Weighted
	workers    int
	processing config.ProcessingConfig
	maxFile    time.Duration
	maxCapture time.Duration
	cache      cache.Cache
	cacheTTL   time.Duration
	recorder   Recorder
}

// ServiceOption is a functional option for configuring the service
type ServiceOption func(*Service)

// WithWorkers bounds how many pipelines run at once
func WithWorkers(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithProcessing sets the timeout budget
func WithProcessing(p config.ProcessingConfig) ServiceOption {
	return func(s *Service) {
		s.processing = p
	}
}

// WithDurationCaps sets how much audio file and capture inputs may contribute
func WithDurationCaps(file, capture time.Duration) ServiceOption {
	return func(s *Service) {
		if file > 0 {
			s.maxFile = file
		}
		if capture > 0 {
			s.maxCapture = capture
		}
	}
}

// WithCache reuses results for identical input bytes
func WithCache(c cache.Cache, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithRecorder stores every fresh prediction
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) {
		s.recorder = r
	}
}

// NewService creates a classification service over loaded artifacts
func NewService(decoder Decoder, extractor Extractor, artifacts *model.Artifacts, opts ...ServiceOption) *Service {
	s := &Service{
		decoder:    decoder,
		extractor:  extractor,
		artifacts:  artifacts,
		workers:    DefaultWorkers,
		maxFile:    DefaultMaxFileDuration,
		maxCapture: DefaultMaxCaptureDuration,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.sem = semaphore.NewWeighted(int64(s.workers))
	return s
}

// Artifacts returns the loaded model artifacts
func (s *Service) Artifacts() *model.Artifacts {
	return s.artifacts
}

// job is one pipeline run
type job struct {
	source      string
	filename    string
	digest      string
	maxDuration time.Duration
	decode      func(ctx context.Context) (*audio.Waveform, error)
}

// ClassifyFile classifies an audio file on disk
func (s *Service) ClassifyFile(ctx context.Context, path string) (*prediction.GenrePrediction, error) {
	digest, err := fileDigest(path)
	if err != nil {
		return nil, apperrors.DecodeError(err)
	}

	return s.run(ctx, job{
		source:      models.SourceFile,
		filename:    filepath.Base(path),
		digest:      digest,
		maxDuration: s.maxFile,
		decode: func(ctx context.Context) (*audio.Waveform, error) {
			return s.decoder.DecodeFile(ctx, path, s.maxFile)
		},
	})
}

// ClassifyBytes classifies an encoded audio buffer. filename is only a hint for the
// fallback decoder and the history record.
func (s *Service) ClassifyBytes(ctx context.Context, data []byte, filename, source string) (*prediction.GenrePrediction, error) {
	if len(data) == 0 {
		return nil, apperrors.ValidationError("audio", "No audio data received.")
	}

	return s.run(ctx, job{
		source:      source,
		filename:    filename,
		digest:      bytesDigest(data),
		maxDuration: s.maxFile,
		decode: func(ctx context.Context) (*audio.Waveform, error) {
			return s.decoder.DecodeBytes(ctx, data, filename, s.maxFile)
		},
	})
}

// ClassifyPCM classifies raw 16-bit little-endian mono PCM, as produced by system capture
func (s *Service) ClassifyPCM(ctx context.Context, raw []byte, sampleRate int) (*prediction.GenrePrediction, error) {
	return s.run(ctx, job{
		source:      models.SourceCapture,
		digest:      bytesDigest(raw) + fmt.Sprintf("@%d", sampleRate),
		maxDuration: s.maxCapture,
		decode: func(ctx context.Context) (*audio.Waveform, error) {
			return audio.FromPCM16(raw, sampleRate, s.maxCapture)
		},
	})
}

// run executes the stages in order under the worker limit and the proportional timeout
func (s *Service) run(ctx context.Context, j job) (*prediction.GenrePrediction, error) {
	key := cacheKey(j.digest, j.maxDuration)
	if cached, ok := s.fromCache(ctx, key); ok {
		log.Printf("[DEBUG] Cache hit for %s (%s)", j.digest[:12], j.source)
		return cached, nil
	}

	timeout := s.processing.PipelineTimeout(j.maxDuration)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, s.contextError(err, timeout)
	}
	defer s.sem.Release(1)

	start := time.Now()

	waveform, err := j.decode(ctx)
	if err != nil {
		return nil, s.contextError(err, timeout)
	}

	vec, err := s.extractor.Extract(ctx, waveform)
	if err != nil {
		return nil, s.contextError(err, timeout)
	}

	result, err := prediction.Predict(vec, s.artifacts)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	log.Printf("[INFO] Classified %s clip (%.1fs of audio) as %s (%.4f) in %v",
		j.source, waveform.Duration().Seconds(), result.Genre, result.Confidence, elapsed.Round(time.Millisecond))

	s.toCache(ctx, key, result)
	s.record(ctx, j, waveform, result, elapsed)

	return result, nil
}

// contextError reports deadline expiry as a timeout and passes other errors through
func (s *Service) contextError(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.TimeoutError("classification", timeout.String())
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "classification cancelled")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeInternal, "classification failed")
}

func (s *Service) fromCache(ctx context.Context, key string) (*prediction.GenrePrediction, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var result prediction.GenrePrediction
	if err := json.Unmarshal(data, &result); err != nil {
		log.Printf("[WARN] Dropping unreadable cache entry %s: %v", key, err)
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}
	return &result, true
}

func (s *Service) toCache(ctx context.Context, key string, result *prediction.GenrePrediction) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		log.Printf("[WARN] Failed to encode prediction for cache: %v", err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		log.Printf("[WARN] Failed to cache prediction: %v", err)
	}
}

// record stores the prediction; failures are logged and never fail the request
func (s *Service) record(ctx context.Context, j job, w *audio.Waveform, result *prediction.GenrePrediction, elapsed time.Duration) {
	if s.recorder == nil {
		return
	}

	p := &models.Prediction{
		Source:           j.source,
		Filename:         j.filename,
		AudioSHA256:      j.digest,
		AudioSeconds:     w.Duration().Seconds(),
		ProcessingMillis: elapsed.Milliseconds(),
		ModelName:        s.artifacts.ModelName(),
	}
	if err := p.SetResult(result); err != nil {
		log.Printf("[WARN] Failed to encode prediction for history: %v", err)
		return
	}
	if err := s.recorder.Record(context.WithoutCancel(ctx), p); err != nil {
		log.Printf("[WARN] Failed to record prediction: %v", err)
	}
}

func cacheKey(digest string, maxDuration time.Duration) string {
	return fmt.Sprintf("prediction:%s:%d", digest, maxDuration.Milliseconds())
}

func bytesDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
