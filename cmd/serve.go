package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/killallgit/genre-api/api"
	"github.com/killallgit/genre-api/api/types"
	"github.com/killallgit/genre-api/internal/audio"
	"github.com/killallgit/genre-api/internal/database"
	"github.com/killallgit/genre-api/internal/models"
	"github.com/killallgit/genre-api/internal/services/classifier"
	"github.com/killallgit/genre-api/internal/services/cleanup"
	"github.com/killallgit/genre-api/internal/services/history"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Genre Classification API server with the configured settings.

The model artifacts are loaded once at startup; the server refuses to start
if any of them is missing or inconsistent.

Example:
  genre-api serve
  genre-api serve --port 9090
  genre-api serve --host 127.0.0.1 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load config (lazy loading - only when serve command is run)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Flags override config values
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		if serverPort < 0 || serverPort > 65535 {
			return fmt.Errorf("invalid server port: %d", serverPort)
		}
		cfg.Server.Port = serverPort
	}

	deps := &types.Dependencies{
		Build: types.BuildInfo{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime},
	}

	var opts []classifier.ServiceOption
	if cfg.Database.Path != "" {
		db, err := database.Initialize(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		if err := db.AutoMigrate(&models.Prediction{}); err != nil {
			return fmt.Errorf("failed to auto-migrate database: %w", err)
		}

		deps.DB = db
		deps.HistoryService = history.NewService(history.NewRepository(db.DB))
		opts = append(opts, classifier.WithRecorder(deps.HistoryService))
	}

	p, err := newPipeline(cfg, opts...)
	if err != nil {
		return err
	}
	defer p.close()

	deps.Classifier = p.service
	if p.cache != nil {
		deps.CacheStats = p.cache
	}

	// Sweep decoder scratch files left behind by crashes
	sweeper := cleanup.NewService(cfg.Storage.TempDir, audio.TempFilePrefix, cfg.Storage.MaxTempAge, cfg.Storage.CleanupInterval)
	sweeper.Start(commandContext(cmd))
	defer sweeper.Stop()

	server := api.NewServer(cfg)
	server.SetDependencies(deps)
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	log.Printf("[INFO] Starting Genre Classification API on %s (model %s, %d genres)",
		server.Addr(), p.artifacts.ModelName(), len(p.artifacts.Genres()))

	// Channel to receive server errors
	serverErr := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wait for interrupt signal or server error
	var runErr error
	select {
	case <-ctx.Done():
		log.Printf("[INFO] Shutting down server...")
	case runErr = <-serverErr:
		log.Printf("[ERROR] %v", runErr)
	}

	// Create a context with timeout for shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Printf("[INFO] Server gracefully stopped")
	return runErr
}

// commandContext returns the command's context, or Background when run outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
