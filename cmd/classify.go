package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/killallgit/genre-api/internal/prediction"
)

// classifyCmd classifies local files without starting the server
var classifyCmd = &cobra.Command{
	Use:   "classify <file> [file...]",
	Short: "Classify audio files",
	Long: `Classify one or more local audio files and print the genre ranking.

Example:
  genre-api classify song.mp3
  genre-api classify --json a.wav b.flac`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().Bool("json", false, "print results as JSON")
	classifyCmd.Flags().Int("top", 5, "number of ranked genres to print")
}

func runClassify(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	top, _ := cmd.Flags().GetInt("top")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.close()

	out := cmd.OutOrStdout()
	var failed int
	for _, path := range args {
		start := time.Now()
		result, err := p.service.ClassifyFile(commandContext(cmd), path)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			continue
		}

		if asJSON {
			if err := writeJSON(out, path, result); err != nil {
				return err
			}
			continue
		}
		printRanking(out, path, result, top, time.Since(start))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) could not be classified", failed, len(args))
	}
	return nil
}

func writeJSON(w io.Writer, path string, result *prediction.GenrePrediction) error {
	enc := json.NewEncoder(w)
	return enc.Encode(struct {
		File string `json:"file"`
		*prediction.GenrePrediction
	}{File: path, GenrePrediction: result})
}

// printRanking writes the top entries of a prediction as a small table with confidence bars
func printRanking(w io.Writer, label string, result *prediction.GenrePrediction, top int, elapsed time.Duration) {
	fmt.Fprintf(w, "%s\n", label)
	fmt.Fprintln(w, repeatString("-", 40))
	fmt.Fprintf(w, "Genre:        %s (%.1f%%)\n", result.Genre, result.Confidence*100)
	if elapsed > 0 {
		fmt.Fprintf(w, "Elapsed:      %v\n", elapsed.Round(time.Millisecond))
	}

	if top <= 0 || top > len(result.TopGenres) {
		top = len(result.TopGenres)
	}
	for _, g := range result.TopGenres[:top] {
		fmt.Fprintf(w, "  %-12s %6.2f%% %s\n", g.Genre, g.Confidence*100, repeatString("█", int(g.Confidence*20+0.5)))
	}
	fmt.Fprintln(w, repeatString("-", 40))
}

// repeatString repeats a string n times
func repeatString(s string, n int) string {
	if n <= 0 {
		return ""
	}
	result := ""
	for i := 0; i < n; i++ {
		result += s
	}
	return result
}
