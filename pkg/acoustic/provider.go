// Package acoustic defines the Provider interface for acoustic model backends.
//
// An acoustic provider wraps a frame-synchronous classifier (e.g., a Wav2Vec2
// CTC model served over gRPC, or a captured-output file reader) and exposes it
// as a plain function from audio samples to per-frame label probability
// distributions. The scoring core never sees the model itself — only the
// ordered [FrameProbability] sequence — so the whole pipeline can be tested
// with synthetic frames and no model loaded.
//
// Implementations must be deterministic for identical input audio and must be
// safe for concurrent use: multiple scoring requests may call Frames at once.
package acoustic

import "context"

// Blank is the reserved no-label class emitted by CTC-style models for frames
// that do not belong to any phoneme. Frames whose top label is Blank are
// dropped during decoding and never start a new label span.
const Blank = "<blank>"

// FrameProbability is one time step of acoustic model output: a distribution
// over label symbols for a single fixed-duration audio frame.
type FrameProbability struct {
	// Index is the zero-based frame index within the utterance.
	Index int `json:"index"`

	// Probs maps label symbols (including [Blank]) to their probability.
	// Probabilities are expected to sum to at most 1; the map must be
	// non-empty for the frame to be decodable.
	Probs map[string]float64 `json:"probs"`
}

// Top returns the highest-probability label of the frame and its probability.
// Ties are broken by choosing the lexicographically smallest symbol so that
// decoding is deterministic regardless of map iteration order.
func (f FrameProbability) Top() (symbol string, prob float64) {
	for s, p := range f.Probs {
		if p > prob || (p == prob && (symbol == "" || s < symbol)) {
			symbol, prob = s, p
		}
	}
	return symbol, prob
}

// Provider is the abstraction over any acoustic model backend.
type Provider interface {
	// Frames runs the acoustic model over the given mono audio samples and
	// returns one FrameProbability per model frame, ordered by frame index
	// and covering the whole utterance.
	//
	// samples are normalized to [-1, 1]; sampleRate is the rate they were
	// recorded at. Implementations must return an error (rather than a
	// truncated sequence) when the model fails mid-utterance.
	Frames(ctx context.Context, samples []float64, sampleRate int) ([]FrameProbability, error)
}
