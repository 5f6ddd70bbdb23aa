// Package framefile implements [acoustic.Provider] backed by a JSON file of
// captured model output.
//
// The file format is a JSON array of frame objects:
//
//	[
//	  {"index": 0, "probs": {"K": 0.91, "<blank>": 0.09}},
//	  {"index": 1, "probs": {"AE": 0.88, "EH": 0.07, "<blank>": 0.05}}
//	]
//
// This is the offline-scoring path: the acoustic model (typically GPU-bound
// and served elsewhere) dumps its frame posteriors once, and scoring can then
// be re-run deterministically without the model. The audio samples passed to
// Frames are ignored beyond a non-empty check.
package framefile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/LQ758/phonoscore/pkg/acoustic"
)

// Compile-time interface assertion.
var _ acoustic.Provider = (*Provider)(nil)

// Provider reads frame probabilities from a JSON file on every Frames call.
type Provider struct {
	// Path is the JSON file to read.
	Path string
}

// New returns a Provider reading from path. The file is not opened until
// Frames is called, so construction never fails.
func New(path string) *Provider {
	return &Provider{Path: path}
}

// Frames implements [acoustic.Provider]. It returns the file's frames sorted
// by frame index. An unreadable or malformed file is a model failure from the
// caller's point of view and is reported as an error.
func (p *Provider) Frames(_ context.Context, _ []float64, _ int) ([]acoustic.FrameProbability, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("framefile: read %q: %w", p.Path, err)
	}

	var frames []acoustic.FrameProbability
	if err := json.Unmarshal(data, &frames); err != nil {
		return nil, fmt.Errorf("framefile: decode %q: %w", p.Path, err)
	}

	sort.Slice(frames, func(i, j int) bool { return frames[i].Index < frames[j].Index })
	return frames, nil
}
