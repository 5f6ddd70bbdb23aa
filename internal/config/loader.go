package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// weightSumTolerance is how far scoring.weights may drift from 1.0 before
// the configuration is rejected.
const weightSumTolerance = 1e-3

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied for absent fields. It is a convenience
// wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Unknown YAML keys are rejected so typos fail fast.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero-valued fields from [Default]. Explicit zero
// weights are indistinguishable from absent ones, so the default weight
// split is applied only when all three are zero.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = def.Server.LogLevel
	}
	if cfg.Scoring.AlignmentMethod == "" {
		cfg.Scoring.AlignmentMethod = def.Scoring.AlignmentMethod
	}
	if cfg.Scoring.Mode == "" {
		cfg.Scoring.Mode = def.Scoring.Mode
	}
	if cfg.Scoring.Weights == (WeightsConfig{}) {
		cfg.Scoring.Weights = def.Scoring.Weights
	}
	if cfg.Scoring.InsertionPenalty == 0 {
		cfg.Scoring.InsertionPenalty = def.Scoring.InsertionPenalty
	}
	if cfg.Scoring.DeletionPenalty == 0 {
		cfg.Scoring.DeletionPenalty = def.Scoring.DeletionPenalty
	}
	if cfg.Audio.SampleRate == 0 {
		cfg.Audio.SampleRate = def.Audio.SampleRate
	}
	if cfg.Audio.Channels == 0 {
		cfg.Audio.Channels = def.Audio.Channels
	}
	if cfg.Audio.Format == "" {
		cfg.Audio.Format = def.Audio.Format
	}
	if cfg.Model.FrameRate == 0 {
		cfg.Model.FrameRate = def.Model.FrameRate
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if !cfg.Scoring.AlignmentMethod.IsValid() {
		errs = append(errs, fmt.Errorf("scoring.alignment_method %q is invalid; valid values: ctc-edit", cfg.Scoring.AlignmentMethod))
	}
	if !cfg.Scoring.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("scoring.mode %q is invalid; valid values: simple, detailed", cfg.Scoring.Mode))
	}

	w := cfg.Scoring.Weights
	for name, v := range map[string]float64{
		"duration":    w.Duration,
		"quality":     w.Quality,
		"consistency": w.Consistency,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("scoring.weights.%s %.3f is negative", name, v))
		}
	}
	if sum := w.Duration + w.Quality + w.Consistency; math.Abs(sum-1.0) > weightSumTolerance {
		errs = append(errs, fmt.Errorf("scoring.weights sum to %.3f, want 1.0", sum))
	}

	if cfg.Scoring.InsertionPenalty < 0 {
		errs = append(errs, fmt.Errorf("scoring.insertion_penalty %.3f is negative", cfg.Scoring.InsertionPenalty))
	}
	if cfg.Scoring.DeletionPenalty < 0 {
		errs = append(errs, fmt.Errorf("scoring.deletion_penalty %.3f is negative", cfg.Scoring.DeletionPenalty))
	}

	if cfg.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d must be positive", cfg.Audio.SampleRate))
	}
	if cfg.Audio.Channels != 1 {
		errs = append(errs, fmt.Errorf("audio.channels %d is unsupported; the acoustic model consumes mono audio", cfg.Audio.Channels))
	}
	if cfg.Audio.Format != "pcm16" {
		errs = append(errs, fmt.Errorf("audio.format %q is unsupported; valid values: pcm16", cfg.Audio.Format))
	}

	if cfg.Model.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("model.frame_rate %.1f must be positive", cfg.Model.FrameRate))
	}
	for sym, b := range cfg.Model.Baselines {
		if b <= 0 || b > 1 {
			errs = append(errs, fmt.Errorf("model.baselines[%s] %.3f is out of range (0, 1]", sym, b))
		}
	}

	return errors.Join(errs...)
}
