package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/killallgit/genre-api/internal/capture"
	"github.com/killallgit/genre-api/internal/services/classifier"
)

// listenCmd classifies what the machine is currently playing
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Classify the audio currently playing on this machine",
	Long: `Record the system output through a PulseAudio or PipeWire monitor source
and classify it.

Example:
  genre-api listen
  genre-api listen --duration 5s --loop`,
	RunE: runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
	listenCmd.Flags().Duration("duration", 0, "how long to record (default audio.max_capture_duration)")
	listenCmd.Flags().Bool("loop", false, "keep listening until interrupted")
	listenCmd.Flags().String("device", "", "monitor source to record (default auto-detect)")
	listenCmd.Flags().Int("top", 5, "number of ranked genres to print")
}

func runListen(cmd *cobra.Command, args []string) error {
	duration, _ := cmd.Flags().GetDuration("duration")
	loop, _ := cmd.Flags().GetBool("loop")
	device, _ := cmd.Flags().GetString("device")
	top, _ := cmd.Flags().GetInt("top")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if device != "" {
		cfg.Capture.Device = device
	}
	if duration <= 0 || duration > cfg.Audio.MaxCaptureDuration {
		duration = cfg.Audio.MaxCaptureDuration
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := capture.NewPulseSource(cfg.Capture)
	for {
		err := listenOnce(ctx, cmd, src, p.service, duration, top)
		if ctx.Err() != nil {
			return nil
		}
		if !loop {
			return err
		}
		if err != nil {
			if errors.Is(err, capture.ErrAudioSystemUnavailable) || errors.Is(err, capture.ErrNoMonitor) {
				return err
			}
			log.Printf("[WARN] %v", err)
		}
	}
}

func listenOnce(ctx context.Context, cmd *cobra.Command, src capture.Source, svc *classifier.Service, duration time.Duration, top int) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Listening for %v...\n", duration)

	raw, err := src.Capture(ctx, duration)
	if err != nil {
		return err
	}

	result, err := svc.ClassifyPCM(ctx, raw, src.SampleRate())
	if err != nil {
		return err
	}

	printRanking(cmd.OutOrStdout(), time.Now().Format("15:04:05"), result, top, 0)
	return nil
}
