package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	apperrors "github.com/killallgit/genre-api/pkg/errors"
)

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		setDefaults()

		// Environment overrides, e.g. GENRE_SERVER_PORT
		viper.SetEnvPrefix("GENRE")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		configPath := filepath.Clean("./config/settings.yaml")
		viper.SetConfigFile(configPath)

		if err := viper.ReadInConfig(); err != nil {
			// A missing file means defaults and env vars only
			if _, statErr := os.Stat(configPath); !os.IsNotExist(statErr) {
				initErr = fmt.Errorf("error reading config file %s: %w", configPath, err)
				return
			}
		}

		if err := validate(); err != nil {
			initErr = fmt.Errorf("invalid configuration: %w", err)
		}
	})

	return initErr
}

// reset clears viper state and allows Init to run again
func reset() {
	viper.Reset()
	once = sync.Once{}
	initErr = nil
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// Get returns a config value by key using Viper directly
func Get(key string) any {
	return viper.Get(key)
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// validate validates the configuration using Viper values
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	if viper.GetString("database.path") == "" {
		log.Printf("[WARN] No database path configured, prediction history disabled")
	}

	if viper.GetString("model.artifacts_dir") == "" {
		return apperrors.ConfigError("model.artifacts_dir", "must not be empty")
	}

	if viper.GetDuration("audio.max_file_duration") <= 0 {
		return fmt.Errorf("invalid audio.max_file_duration: %s", viper.GetDuration("audio.max_file_duration"))
	}

	if viper.GetDuration("audio.max_capture_duration") <= 0 {
		return fmt.Errorf("invalid audio.max_capture_duration: %s", viper.GetDuration("audio.max_capture_duration"))
	}

	// Auto-correct invalid worker count
	if viper.GetInt("processing.workers") <= 0 {
		viper.Set("processing.workers", 2)
	}

	if viper.GetDuration("storage.cleanup_interval") <= 0 {
		log.Printf("[WARN] Invalid storage.cleanup_interval %s, using 15m", viper.GetDuration("storage.cleanup_interval"))
		viper.Set("storage.cleanup_interval", 15*time.Minute)
	}
	if viper.GetDuration("storage.max_temp_age") <= 0 {
		viper.Set("storage.max_temp_age", time.Hour)
	}

	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Model.ArtifactsDir == "" {
		return apperrors.ConfigError("model.artifacts_dir", "must not be empty")
	}

	if c.Audio.MaxFileDuration <= 0 || c.Audio.MaxCaptureDuration <= 0 {
		return apperrors.ConfigError("audio", "duration caps must be positive")
	}

	if c.Processing.Workers <= 0 {
		c.Processing.Workers = 2
	}

	if c.Storage.CleanupInterval <= 0 {
		c.Storage.CleanupInterval = 15 * time.Minute
	}
	if c.Storage.MaxTempAge <= 0 {
		c.Storage.MaxTempAge = time.Hour
	}

	return nil
}

// Address is the host:port the HTTP server listens on
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PipelineTimeout is the time budget for one classification of up to maxDuration of audio
func (p ProcessingConfig) PipelineTimeout(maxDuration time.Duration) time.Duration {
	return p.TimeoutBase + time.Duration(maxDuration.Seconds()*float64(p.TimeoutPerAudioSecond))
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.read_timeout", 60*time.Second)
	viper.SetDefault("server.write_timeout", 120*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)
	viper.SetDefault("server.max_upload_bytes", 52428800)

	// Database defaults
	viper.SetDefault("database.path", "./data/predictions.db")
	viper.SetDefault("database.max_connections", 10)
	viper.SetDefault("database.max_idle_connections", 5)
	viper.SetDefault("database.connection_max_lifetime", 30*time.Minute)
	viper.SetDefault("database.verbose", false)

	// Model artifact defaults
	viper.SetDefault("model.artifacts_dir", "./artifacts")
	viper.SetDefault("model.classifier_file", "genre_classifier.json")
	viper.SetDefault("model.scaler_file", "genre_scaler.json")
	viper.SetDefault("model.label_encoder_file", "genre_label_encoder.json")

	// Audio defaults
	viper.SetDefault("audio.max_file_duration", 30*time.Second)
	viper.SetDefault("audio.max_capture_duration", 10*time.Second)

	// Processing defaults
	viper.SetDefault("processing.workers", 2)
	viper.SetDefault("processing.timeout_base", 10*time.Second)
	viper.SetDefault("processing.timeout_per_audio_second", 2*time.Second)
	viper.SetDefault("processing.ffmpeg_path", "ffmpeg")
	viper.SetDefault("processing.ffprobe_path", "ffprobe")
	viper.SetDefault("processing.ffmpeg_timeout", 2*time.Minute)

	// Capture defaults
	viper.SetDefault("capture.pactl_path", "pactl")
	viper.SetDefault("capture.parec_path", "parec")
	viper.SetDefault("capture.device", "")

	// Storage defaults
	viper.SetDefault("storage.temp_dir", os.TempDir())
	viper.SetDefault("storage.max_temp_age", 1*time.Hour)
	viper.SetDefault("storage.cleanup_interval", 15*time.Minute)

	// Cache defaults
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.default_ttl", 10*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 5*time.Minute)
	viper.SetDefault("cache.max_entries", 500)

	// Rate limiting defaults
	viper.SetDefault("rate_limiting.enabled", true)
	viper.SetDefault("rate_limiting.requests_per_second", 2.0)
	viper.SetDefault("rate_limiting.burst", 5)

	// Security defaults
	viper.SetDefault("security.cors_origins", []string{"*"})
	viper.SetDefault("security.enable_request_id", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
}
