package cmd

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/killallgit/genre-api/pkg/config"
	"github.com/killallgit/genre-api/pkg/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "genre-api",
	Short: "Music genre classification API server",
	Long: `Genre Classification API - predicts the genre of an audio clip

Audio is decoded to mono 22050 Hz, reduced to 57 timbral and rhythmic
features and passed through a pre-trained scaler and classifier.

Features:
  • HTTP API for file uploads and browser recordings
  • One-off classification of local files
  • Live classification of whatever the system is playing
  • Prediction history in sqlite`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		min, err := logging.Setup(level)
		if err != nil {
			return err
		}
		if min == logging.LevelDebug {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	// Add persistent flags for logging configuration
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// loadConfig loads the configuration when a command needs it.
// Commands call it lazily so help and version work without a settings file.
func loadConfig() (*config.Config, error) {
	if err := config.Init(); err != nil {
		return nil, fmt.Errorf("error initializing config: %w", err)
	}

	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
