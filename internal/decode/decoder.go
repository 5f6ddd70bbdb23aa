// Package decode collapses frame-synchronous acoustic model output into a
// compact label sequence.
//
// The collapse rule is the standard one for CTC-style classifier output: at
// each frame take the highest-probability label, merge runs of consecutive
// identical labels into one span, and drop frames whose top label is the
// blank class. Greedy best-path decoding is chosen over beam search for
// latency — downstream alignment already tolerates substitution and
// insertion noise, so the extra search effort buys little.
package decode

import (
	"fmt"
	"math"

	"github.com/LQ758/phonoscore/pkg/acoustic"
)

// Label is one emitted symbol after collapsing repeated and blank frames.
type Label struct {
	// Symbol is the decoded label symbol.
	Symbol string

	// StartFrame is the first frame of the span (inclusive).
	StartFrame int

	// EndFrame is the frame after the last frame of the span (exclusive),
	// so EndFrame-StartFrame is the span length.
	EndFrame int

	// Confidence is the mean top-label probability across the span.
	Confidence float64

	// FrameConfidences holds the per-frame top-label probabilities over the
	// span, in frame order. The quality estimator derives its consistency
	// signal from their spread.
	FrameConfidences []float64
}

// Span returns the label duration in frames.
func (l Label) Span() int { return l.EndFrame - l.StartFrame }

// Decoder performs the greedy CTC-style collapse.
// The zero value is not usable; construct with [NewDecoder].
type Decoder struct {
	blank string
}

// NewDecoder returns a Decoder treating [acoustic.Blank] as the no-label class.
func NewDecoder() *Decoder {
	return &Decoder{blank: acoustic.Blank}
}

// Decode collapses frames into labels.
//
// An all-blank input yields an empty (nil) label sequence — that is a valid
// result representing silence, handled by the aligner as total deletion, not
// an error. A frame with an empty probability map or a non-finite probability
// is malformed model output and fails the decode.
func (d *Decoder) Decode(frames []acoustic.FrameProbability) ([]Label, error) {
	var (
		labels []Label
		cur    *Label
	)

	for i, frame := range frames {
		top, prob := frame.Top()
		if top == "" {
			return nil, fmt.Errorf("decode: frame %d has no label probabilities", i)
		}
		if math.IsNaN(prob) || math.IsInf(prob, 0) {
			return nil, fmt.Errorf("decode: frame %d has non-finite probability for %q", i, top)
		}

		if top == d.blank {
			// Blank closes the active span and does not start a new one.
			cur = flush(&labels, cur)
			continue
		}

		if cur != nil && cur.Symbol == top {
			cur.EndFrame = i + 1
			cur.FrameConfidences = append(cur.FrameConfidences, prob)
			continue
		}

		flush(&labels, cur)
		cur = &Label{
			Symbol:           top,
			StartFrame:       i,
			EndFrame:         i + 1,
			FrameConfidences: []float64{prob},
		}
	}
	flush(&labels, cur)

	return labels, nil
}

// flush finalizes cur's mean confidence and appends it to labels.
// Returns nil so callers can clear the active span in one statement.
func flush(labels *[]Label, cur *Label) *Label {
	if cur == nil {
		return nil
	}
	var sum float64
	for _, c := range cur.FrameConfidences {
		sum += c
	}
	cur.Confidence = sum / float64(len(cur.FrameConfidences))
	*labels = append(*labels, *cur)
	return nil
}
