package cmd

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/killallgit/genre-api/internal/model"
)

// Set with -ldflags "-X github.com/killallgit/genre-api/cmd.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
	OS        = runtime.GOOS
	Arch      = runtime.GOARCH
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build and model information",
	Long: `Print the build of this binary and the classifier it would serve.

The model section loads the configured artifacts, so it shows the
estimator, its capability, the genre labels and the feature count the
scaler expects. Use --short to print the version number alone.`,
	Run: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("short", "s", false, "print just the version number")
}

func runVersion(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()

	if short, _ := cmd.Flags().GetBool("short"); short {
		fmt.Fprintf(out, "v%s\n", Version)
		return
	}

	rule := repeatString("-", 40)
	fmt.Fprintln(out, "Genre Classification API")
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "Version:      v%s\n", Version)
	fmt.Fprintf(out, "Git Commit:   %s\n", GitCommit)
	fmt.Fprintf(out, "Build Time:   %s\n", BuildTime)
	fmt.Fprintf(out, "Go Version:   %s\n", GoVersion)
	fmt.Fprintf(out, "OS/Arch:      %s/%s\n", OS, Arch)
	fmt.Fprintln(out, rule)
	printModelInfo(out)
	fmt.Fprintln(out, rule)
}

// printModelInfo describes the configured artifacts, or why they could not be read
func printModelInfo(out io.Writer) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(out, "Model:        not loaded (%v)\n", err)
		return
	}

	artifacts, err := model.Load(cfg.Model)
	if err != nil {
		fmt.Fprintf(out, "Model:        not loaded (%v)\n", err)
		return
	}

	fmt.Fprintf(out, "Model:        %s (%s)\n", artifacts.ModelName(), artifacts.Capability)
	fmt.Fprintf(out, "Genres:       %d [%s]\n", len(artifacts.Genres()), strings.Join(artifacts.Genres(), ", "))
	fmt.Fprintf(out, "Features:     %d\n", artifacts.Scaler.NumFeatures())
	fmt.Fprintf(out, "Artifacts:    %s\n", cfg.Model.ArtifactsDir)
}
