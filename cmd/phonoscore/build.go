package main

import (
	"fmt"

	"github.com/LQ758/phonoscore/internal/align"
	"github.com/LQ758/phonoscore/internal/config"
	"github.com/LQ758/phonoscore/internal/decode"
	"github.com/LQ758/phonoscore/internal/observe"
	"github.com/LQ758/phonoscore/internal/phoneme"
	"github.com/LQ758/phonoscore/internal/quality"
	"github.com/LQ758/phonoscore/internal/score"
	"github.com/LQ758/phonoscore/pkg/acoustic"
	"github.com/LQ758/phonoscore/pkg/durations"
	"github.com/LQ758/phonoscore/pkg/lexicon"
)

// loadConfig loads the configured file, or defaults when no file is given.
func loadConfig() (*config.Config, error) {
	if flagConfig == "" {
		return config.Default(), nil
	}
	return config.Load(flagConfig)
}

// buildDictionary returns the embedded base dictionary, extended by the
// configured lexicon file when one is set.
func buildDictionary(cfg *config.Config) (*lexicon.Dictionary, error) {
	dict := lexicon.Base()
	if cfg.Data.LexiconPath != "" {
		if err := dict.LoadFile(cfg.Data.LexiconPath); err != nil {
			return nil, err
		}
	}
	return dict, nil
}

// buildEngine assembles the full scoring pipeline from configuration.
// Every failure here is a startup configuration error.
func buildEngine(cfg *config.Config, provider acoustic.Provider, metrics *observe.Metrics) (*score.Engine, error) {
	dict, err := buildDictionary(cfg)
	if err != nil {
		return nil, err
	}

	durModel := durations.Default()
	if cfg.Data.DurationsPath != "" {
		if durModel, err = durations.LoadFile(cfg.Data.DurationsPath); err != nil {
			return nil, err
		}
	}

	distTable := align.DefaultDistanceTable()
	if cfg.Data.DistancePath != "" {
		if distTable, err = align.LoadDistanceTable(cfg.Data.DistancePath); err != nil {
			return nil, err
		}
	}

	aggregator, err := score.NewAggregator(score.Weights{
		Duration:    cfg.Scoring.Weights.Duration,
		Quality:     cfg.Scoring.Weights.Quality,
		Consistency: cfg.Scoring.Weights.Consistency,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid scoring weights: %w", err)
	}

	var estOpts []quality.Option
	if len(cfg.Model.Baselines) > 0 {
		estOpts = append(estOpts, quality.WithBaselines(cfg.Model.Baselines))
	}

	return score.NewEngine(
		phoneme.NewMapper(dict),
		decode.NewDecoder(),
		align.NewAligner(distTable, align.WithGapCosts(cfg.Scoring.InsertionPenalty, cfg.Scoring.DeletionPenalty)),
		quality.NewEstimator(durModel, estOpts...),
		aggregator,
		provider,
		score.WithMetrics(metrics),
		score.WithFrameRate(cfg.Model.FrameRate),
	)
}
