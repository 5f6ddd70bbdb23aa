package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LQ758/phonoscore/internal/config"
	"github.com/LQ758/phonoscore/internal/observe"
	"github.com/LQ758/phonoscore/internal/score"
	"github.com/LQ758/phonoscore/pkg/acoustic/framefile"
	"github.com/LQ758/phonoscore/pkg/audio"
)

var (
	flagRef           string
	flagMode          string
	flagFramesSuffix  string
	flagMaxConcurrent int
)

var scoreCmd = &cobra.Command{
	Use:   "score [wav files...]",
	Short: "Score utterances against a reference sentence",
	Long: `Score one or more recorded utterances against the reference sentence.

Each WAV file must have a frame-probability sidecar next to it: for
utterance.wav the default sidecar is utterance.frames.json, containing the
captured acoustic model output. Reports are printed to stdout as JSON, one
per input file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&flagRef, "ref", "r", "", "reference sentence (required)")
	scoreCmd.Flags().StringVarP(&flagMode, "mode", "m", "", "report mode: simple or detailed (default from config)")
	scoreCmd.Flags().StringVar(&flagFramesSuffix, "frames-suffix", ".frames.json", "suffix of the frame-probability sidecar file")
	scoreCmd.Flags().IntVar(&flagMaxConcurrent, "max-concurrent", 4, "maximum utterances scored in parallel")
	_ = scoreCmd.MarkFlagRequired("ref")
	rootCmd.AddCommand(scoreCmd)
}

// fileReport pairs an input file with its report for ordered output.
type fileReport struct {
	File   string        `json:"file"`
	Report *score.Report `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mode := score.Mode(cfg.Scoring.Mode)
	if flagMode != "" {
		mode = score.Mode(flagMode)
		if !mode.IsValid() {
			return fmt.Errorf("mode %q is invalid; valid values: simple, detailed", flagMode)
		}
	}

	shutdown, err := observe.InitProvider(cmd.Context(), observe.ProviderConfig{})
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	shape := audio.Shape{
		SampleRate:    cfg.Audio.SampleRate,
		Channels:      cfg.Audio.Channels,
		BitsPerSample: 16,
	}

	reports := make([]fileReport, len(args))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(flagMaxConcurrent)
	for i, path := range args {
		g.Go(func() error {
			rep, err := scoreFile(gctx, cfg, shape, path, flagRef, mode)
			mu.Lock()
			defer mu.Unlock()
			reports[i] = fileReport{File: path}
			if err != nil {
				slog.Error("scoring failed", "file", path, "err", err)
				reports[i].Error = err.Error()
				return nil
			}
			reports[i].Report = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if len(reports) == 1 {
		if reports[0].Error != "" {
			return fmt.Errorf("%s: %s", reports[0].File, reports[0].Error)
		}
		return enc.Encode(reports[0].Report)
	}
	return enc.Encode(reports)
}

// scoreFile scores a single WAV file using its frame-probability sidecar.
func scoreFile(ctx context.Context, cfg *config.Config, shape audio.Shape, wavPath, ref string, mode score.Mode) (*score.Report, error) {
	clip, err := audio.ReadWAVFile(wavPath, shape)
	if err != nil {
		return nil, err
	}

	provider := framefile.New(framesPath(wavPath, flagFramesSuffix))
	engine, err := buildEngine(cfg, provider, observe.DefaultMetrics())
	if err != nil {
		return nil, err
	}

	slog.Debug("scoring utterance",
		"file", wavPath,
		"duration_s", fmt.Sprintf("%.2f", clip.Duration()),
		"mode", mode,
	)

	return engine.Score(ctx, score.Request{
		Samples:       clip.Samples,
		SampleRate:    clip.SampleRate,
		ReferenceText: ref,
		Mode:          mode,
	})
}

// framesPath derives the sidecar path: utterance.wav -> utterance<suffix>.
func framesPath(wavPath, suffix string) string {
	base := strings.TrimSuffix(wavPath, ".wav")
	return base + suffix
}
