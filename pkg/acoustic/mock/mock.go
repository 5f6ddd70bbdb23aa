// Package mock provides an in-memory mock implementation of
// [acoustic.Provider] for use in unit tests.
//
// The mock records every call and returns a pre-configured frame sequence,
// so the scoring pipeline can be exercised with synthetic model output and
// no real model loaded. It is safe for concurrent use.
//
// Example:
//
//	p := &mock.Provider{
//	    FramesResult: mock.UniformFrames([]string{"K", "AE", "T"}, 4, 0.95),
//	}
//	frames, err := p.Frames(ctx, samples, 16000)
package mock

import (
	"context"
	"sync"

	"github.com/LQ758/phonoscore/pkg/acoustic"
)

// Compile-time interface assertion.
var _ acoustic.Provider = (*Provider)(nil)

// FramesCall records the arguments of a single [Provider.Frames] call.
type FramesCall struct {
	// SampleCount is the length of the samples slice passed to Frames.
	SampleCount int
	// SampleRate is the sample rate passed to Frames.
	SampleRate int
}

// Provider is a mock implementation of [acoustic.Provider].
// The exported FramesResult and FramesError fields control return values;
// Calls accumulates invocation records.
type Provider struct {
	mu sync.Mutex

	// FramesResult is returned by [Provider.Frames].
	FramesResult []acoustic.FrameProbability

	// FramesError is the error returned by [Provider.Frames]. When non-nil,
	// FramesResult is ignored.
	FramesError error

	// Calls records every Frames invocation in order.
	Calls []FramesCall
}

// Frames implements [acoustic.Provider].
func (p *Provider) Frames(_ context.Context, samples []float64, sampleRate int) ([]acoustic.FrameProbability, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, FramesCall{SampleCount: len(samples), SampleRate: sampleRate})
	p.mu.Unlock()

	if p.FramesError != nil {
		return nil, p.FramesError
	}
	return p.FramesResult, nil
}

// UniformFrames builds a synthetic frame sequence that emits each symbol for
// framesPer consecutive frames at the given confidence, with the remaining
// probability mass assigned to the blank class. Useful for constructing
// clean decoder input in tests.
func UniformFrames(symbols []string, framesPer int, confidence float64) []acoustic.FrameProbability {
	frames := make([]acoustic.FrameProbability, 0, len(symbols)*framesPer)
	idx := 0
	for _, sym := range symbols {
		for range framesPer {
			frames = append(frames, acoustic.FrameProbability{
				Index: idx,
				Probs: map[string]float64{
					sym:            confidence,
					acoustic.Blank: 1 - confidence,
				},
			})
			idx++
		}
	}
	return frames
}

// BlankFrames builds a frame sequence where every frame's top label is the
// blank class — a silent or unrecognizable utterance.
func BlankFrames(n int) []acoustic.FrameProbability {
	frames := make([]acoustic.FrameProbability, n)
	for i := range frames {
		frames[i] = acoustic.FrameProbability{
			Index: i,
			Probs: map[string]float64{acoustic.Blank: 0.99},
		}
	}
	return frames
}
