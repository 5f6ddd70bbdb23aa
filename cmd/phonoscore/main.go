// Command phonoscore scores recorded pronunciation against reference text.
//
// It is the offline entry point to the scoring engine: audio comes from WAV
// files, acoustic model output comes from captured frame-probability JSON
// sidecar files, and reports are printed as JSON. The engine itself is
// transport-agnostic; a serving layer embeds the same packages.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagVerbose bool
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "phonoscore",
	Short: "Pronunciation scoring engine",
	Long: `Phonoscore aligns decoded speech against a reference sentence and produces
a 0-100 pronunciation score with an optional phoneme-level breakdown.

Audio is read from 16-bit PCM WAV files; acoustic model output is read from
frame-probability JSON sidecar files captured from the model server.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	SilenceUsage: true,
}

func setupLogging() {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	if flagQuiet {
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress non-error output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
