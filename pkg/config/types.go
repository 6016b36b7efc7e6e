package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment  string           `mapstructure:"environment"`
	Server       ServerConfig     `mapstructure:"server"`
	Database     DatabaseConfig   `mapstructure:"database"`
	Model        ModelConfig      `mapstructure:"model"`
	Audio        AudioConfig      `mapstructure:"audio"`
	Processing   ProcessingConfig `mapstructure:"processing"`
	Capture      CaptureConfig    `mapstructure:"capture"`
	Storage      StorageConfig    `mapstructure:"storage"`
	Cache        CacheConfig      `mapstructure:"cache"`
	RateLimiting RateLimitConfig  `mapstructure:"rate_limiting"`
	Security     SecurityConfig   `mapstructure:"security"`
	Logging      LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

// DatabaseConfig contains database settings. An empty path disables prediction history.
type DatabaseConfig struct {
	Path                  string        `mapstructure:"path"`
	MaxConnections        int           `mapstructure:"max_connections"`
	MaxIdleConnections    int           `mapstructure:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `mapstructure:"connection_max_lifetime"`
	Verbose               bool          `mapstructure:"verbose"`
}

// ModelConfig locates the classifier, scaler and label encoder artifacts
type ModelConfig struct {
	ArtifactsDir     string `mapstructure:"artifacts_dir"`
	ClassifierFile   string `mapstructure:"classifier_file"`
	ScalerFile       string `mapstructure:"scaler_file"`
	LabelEncoderFile string `mapstructure:"label_encoder_file"`
}

// AudioConfig bounds how much audio each request analyzes
type AudioConfig struct {
	MaxFileDuration    time.Duration `mapstructure:"max_file_duration"`
	MaxCaptureDuration time.Duration `mapstructure:"max_capture_duration"`
}

// ProcessingConfig contains pipeline execution settings
type ProcessingConfig struct {
	Workers               int           `mapstructure:"workers"`
	TimeoutBase           time.Duration `mapstructure:"timeout_base"`
	TimeoutPerAudioSecond time.Duration `mapstructure:"timeout_per_audio_second"`
	FFmpegPath            string        `mapstructure:"ffmpeg_path"`
	FFprobePath           string        `mapstructure:"ffprobe_path"`
	FFmpegTimeout         time.Duration `mapstructure:"ffmpeg_timeout"`
}

// CaptureConfig contains system audio capture settings
type CaptureConfig struct {
	PactlPath string `mapstructure:"pactl_path"`
	ParecPath string `mapstructure:"parec_path"`
	Device    string `mapstructure:"device"`
}

// StorageConfig contains temp file settings
type StorageConfig struct {
	TempDir         string        `mapstructure:"temp_dir"`
	MaxTempAge      time.Duration `mapstructure:"max_temp_age"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// CacheConfig contains prediction cache settings
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultTTL      time.Duration `mapstructure:"default_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	MaxEntries      int           `mapstructure:"max_entries"`
}

// RateLimitConfig contains rate limiting settings for prediction routes
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	CORSOrigins     []string `mapstructure:"cors_origins"`
	EnableRequestID bool     `mapstructure:"enable_request_id"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}
