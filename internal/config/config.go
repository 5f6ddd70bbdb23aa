// Package config provides the configuration schema and loader for the
// pronunciation scoring engine.
//
// Configuration is loaded once at startup and validated eagerly — in
// particular the scoring weights, which must sum to 1.0. Silent
// renormalization is never applied: it would make scores incomparable
// across deployments.
package config

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// AlignmentMethod selects the decoding + alignment strategy.
type AlignmentMethod string

// AlignCTCEdit is the CTC-style greedy collapse followed by weighted
// edit-distance alignment. Currently the only implemented method.
const AlignCTCEdit AlignmentMethod = "ctc-edit"

// IsValid reports whether m is a recognised alignment method.
func (m AlignmentMethod) IsValid() bool {
	return m == AlignCTCEdit
}

// Mode selects the report verbosity.
type Mode string

const (
	ModeSimple   Mode = "simple"
	ModeDetailed Mode = "detailed"
)

// IsValid reports whether m is a recognised mode.
func (m Mode) IsValid() bool {
	return m == ModeSimple || m == ModeDetailed
}

// Config is the root configuration structure, typically loaded from a YAML
// file using [Load] or [LoadFromReader].
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Scoring ScoringConfig `yaml:"scoring"`
	Audio   AudioConfig   `yaml:"audio"`
	Model   ModelConfig   `yaml:"model"`
	Data    DataConfig    `yaml:"data"`
}

// ServerConfig holds process-level settings.
type ServerConfig struct {
	// LogLevel controls verbosity. Default: info.
	LogLevel LogLevel `yaml:"log_level"`
}

// ScoringConfig holds the scoring parameters.
type ScoringConfig struct {
	// AlignmentMethod selects the decode/align strategy. Default: ctc-edit.
	AlignmentMethod AlignmentMethod `yaml:"alignment_method"`

	// Mode is the default report verbosity. Default: simple.
	Mode Mode `yaml:"mode"`

	// Weights is the duration/quality/consistency weight split.
	// Must sum to 1.0; validated at startup.
	Weights WeightsConfig `yaml:"weights"`

	// InsertionPenalty is the fixed alignment cost of an inserted label.
	// Default: 1.0.
	InsertionPenalty float64 `yaml:"insertion_penalty"`

	// DeletionPenalty is the fixed alignment cost of a dropped phoneme.
	// Default: 1.0.
	DeletionPenalty float64 `yaml:"deletion_penalty"`
}

// WeightsConfig is the per-component scoring weight split.
type WeightsConfig struct {
	Duration    float64 `yaml:"duration"`
	Quality     float64 `yaml:"quality"`
	Consistency float64 `yaml:"consistency"`
}

// AudioConfig is the audio shape contract utterances must satisfy,
// validated before any decoding happens.
type AudioConfig struct {
	// SampleRate in Hz. Default: 16000.
	SampleRate int `yaml:"sample_rate"`

	// Channels must be 1; the acoustic model consumes mono audio.
	Channels int `yaml:"channels"`

	// Format is the PCM sample format. Only "pcm16" is supported.
	Format string `yaml:"format"`
}

// ModelConfig describes the acoustic model collaborator's output shape.
type ModelConfig struct {
	// FrameRate is the model's output rate in frames per second,
	// used for speaking-rate analysis. Default: 50.
	FrameRate float64 `yaml:"frame_rate"`

	// Baselines maps phoneme symbols to baseline recognition confidences
	// in (0, 1], used to renormalize the quality signal for phonemes the
	// model finds inherently hard. Optional.
	Baselines map[string]float64 `yaml:"baselines"`
}

// DataConfig points at optional data files overriding the built-in tables.
type DataConfig struct {
	// LexiconPath is an extra pronunciation dictionary merged over the
	// embedded base dictionary. Optional.
	LexiconPath string `yaml:"lexicon_path"`

	// DurationsPath is a YAML duration model replacing the built-in one.
	// Optional.
	DurationsPath string `yaml:"durations_path"`

	// DistancePath is a YAML phonetic distance table replacing the
	// built-in one. Optional.
	DistancePath string `yaml:"distance_path"`
}

// Default returns a Config with all defaults applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{LogLevel: LogInfo},
		Scoring: ScoringConfig{
			AlignmentMethod:  AlignCTCEdit,
			Mode:             ModeSimple,
			Weights:          WeightsConfig{Duration: 0.3, Quality: 0.5, Consistency: 0.2},
			InsertionPenalty: 1.0,
			DeletionPenalty:  1.0,
		},
		Audio: AudioConfig{SampleRate: 16000, Channels: 1, Format: "pcm16"},
		Model: ModelConfig{FrameRate: 50},
	}
}
