package score

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LQ758/phonoscore/internal/align"
	"github.com/LQ758/phonoscore/internal/decode"
	"github.com/LQ758/phonoscore/internal/observe"
	"github.com/LQ758/phonoscore/internal/phoneme"
	"github.com/LQ758/phonoscore/internal/quality"
	"github.com/LQ758/phonoscore/pkg/acoustic"
)

// defaultFrameRate is the acoustic model frame rate in frames per second,
// used only for the speaking-rate figures in detailed reports.
const defaultFrameRate = 50.0

// EngineOption is a functional option for configuring an [Engine].
type EngineOption func(*Engine)

// WithMetrics attaches a metrics sink to the engine. Without it the engine
// records nothing.
func WithMetrics(m *observe.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithFrameRate overrides the model frame rate used in timing analysis.
func WithFrameRate(framesPerSecond float64) EngineOption {
	return func(e *Engine) {
		if framesPerSecond > 0 {
			e.frameRate = framesPerSecond
		}
	}
}

// Engine wires the full scoring pipeline: reference text through the mapper,
// audio through the acoustic provider and decoder, both sequences through
// the aligner, and the result through the estimator and aggregator.
//
// An Engine holds no per-request state — each Score call is a self-contained
// computation over its own inputs — so a single Engine serves any number of
// concurrent requests without locking. Cancelling the request context aborts
// the acoustic model call; the pure stages run to completion (they are
// microseconds of work with nothing to roll back).
type Engine struct {
	mapper     *phoneme.Mapper
	decoder    *decode.Decoder
	aligner    *align.Aligner
	estimator  *quality.Estimator
	aggregator *Aggregator
	provider   acoustic.Provider

	metrics   *observe.Metrics
	frameRate float64
}

// NewEngine assembles an engine from its stages. All five collaborators are
// required; a nil one is a startup configuration error.
func NewEngine(
	mapper *phoneme.Mapper,
	decoder *decode.Decoder,
	aligner *align.Aligner,
	estimator *quality.Estimator,
	aggregator *Aggregator,
	provider acoustic.Provider,
	opts ...EngineOption,
) (*Engine, error) {
	var missing []error
	for name, ok := range map[string]bool{
		"phoneme mapper":    mapper != nil,
		"frame decoder":     decoder != nil,
		"sequence aligner":  aligner != nil,
		"quality estimator": estimator != nil,
		"score aggregator":  aggregator != nil,
		"acoustic provider": provider != nil,
	} {
		if !ok {
			missing = append(missing, fmt.Errorf("score: %s is required", name))
		}
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}

	e := &Engine{
		mapper:     mapper,
		decoder:    decoder,
		aligner:    aligner,
		estimator:  estimator,
		aggregator: aggregator,
		provider:   provider,
		frameRate:  defaultFrameRate,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Request is one scoring request: a fully recorded utterance plus the
// reference sentence it is measured against.
type Request struct {
	// Samples are normalized mono audio samples in [-1, 1].
	Samples []float64

	// SampleRate is the rate Samples were recorded at, in Hz.
	SampleRate int

	// ReferenceText is the sentence the speaker was asked to read.
	ReferenceText string

	// Mode selects simple or detailed report output.
	Mode Mode
}

// Score runs the full pipeline for one request.
//
// Failure modes, in the order they can occur: [*phoneme.UnmappableError]
// when the reference contains unknown words, [*AcousticModelError] when the
// model collaborator fails or returns malformed frames, and
// [ErrAlignmentIncomplete] for internal defects. An utterance that decodes
// to nothing is not an error — it scores 0 via an all-deletion alignment.
func (e *Engine) Score(ctx context.Context, req Request) (*Report, error) {
	if !req.Mode.IsValid() {
		return nil, fmt.Errorf("score: mode %q is invalid; valid values: simple, detailed", req.Mode)
	}

	start := time.Now()
	report, err := e.score(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.metrics.RecordRequest(ctx, string(req.Mode), status, time.Since(start).Seconds())
	return report, err
}

func (e *Engine) score(ctx context.Context, req Request) (*Report, error) {
	// Expected sequence from reference text.
	stage := time.Now()
	expected, err := e.mapper.Map(req.ReferenceText)
	e.metrics.RecordStage(ctx, observe.StageMap, time.Since(stage).Seconds())
	if err != nil {
		var unmappable *phoneme.UnmappableError
		if errors.As(err, &unmappable) && e.metrics != nil {
			e.metrics.UnmappableWords.Add(ctx, int64(len(unmappable.Words)))
		}
		return nil, err
	}

	// Frame probabilities from the acoustic model collaborator.
	stage = time.Now()
	frames, err := e.provider.Frames(ctx, req.Samples, req.SampleRate)
	e.metrics.RecordStage(ctx, observe.StageAcoustic, time.Since(stage).Seconds())
	if err != nil {
		return nil, &AcousticModelError{Err: err}
	}
	if len(frames) == 0 {
		return nil, &AcousticModelError{Err: errors.New("model returned no frames")}
	}

	// Greedy CTC-style collapse.
	stage = time.Now()
	decoded, err := e.decoder.Decode(frames)
	e.metrics.RecordStage(ctx, observe.StageDecode, time.Since(stage).Seconds())
	if err != nil {
		// Malformed frames are the model's fault, not the decoder's.
		return nil, &AcousticModelError{Err: err}
	}
	if len(decoded) == 0 {
		slog.Debug("decode produced no labels; scoring as silence",
			"reference", req.ReferenceText,
			"frames", len(frames),
		)
		if e.metrics != nil {
			e.metrics.EmptyDecodes.Add(ctx, 1)
		}
	}

	// Alignment.
	stage = time.Now()
	ops := e.aligner.Align(expected, decoded)
	e.metrics.RecordStage(ctx, observe.StageAlign, time.Since(stage).Seconds())
	if err := verifyCoverage(ops, len(expected), len(decoded)); err != nil {
		return nil, err
	}

	// Per-unit features and final aggregation.
	stage = time.Now()
	feats := make([]quality.Features, len(ops))
	for i, op := range ops {
		feats[i] = e.estimator.Estimate(op)
	}
	report, err := e.aggregator.Aggregate(ops, feats, req.Mode)
	e.metrics.RecordStage(ctx, observe.StageScore, time.Since(stage).Seconds())
	if err != nil {
		return nil, err
	}

	if req.Mode == ModeDetailed {
		report.Timing = timing(frames, decoded, e.frameRate)
	}
	return report, nil
}

// verifyCoverage checks the aligner's core invariant: every expected unit
// and every decoded label is touched exactly once.
func verifyCoverage(ops []align.Op, expectedLen, decodedLen int) error {
	var gotExpected, gotDecoded int
	for _, op := range ops {
		if op.Expected != nil {
			gotExpected++
		}
		if op.Decoded != nil {
			gotDecoded++
		}
	}
	if gotExpected != expectedLen || gotDecoded != decodedLen {
		return fmt.Errorf("%w: ops cover %d/%d expected and %d/%d decoded",
			ErrAlignmentIncomplete, gotExpected, expectedLen, gotDecoded, decodedLen)
	}
	return nil
}

// timing builds the speaking-rate summary for detailed reports.
func timing(frames []acoustic.FrameProbability, decoded []decode.Label, frameRate float64) *TimingAnalysis {
	t := &TimingAnalysis{TotalFrames: len(frames)}
	if seconds := float64(len(frames)) / frameRate; seconds > 0 {
		t.PhonemesPerSecond = float64(len(decoded)) / seconds
	}
	if len(decoded) > 0 {
		var spans int
		for _, l := range decoded {
			spans += l.Span()
		}
		t.MeanUnitFrames = float64(spans) / float64(len(decoded))
	}
	return t
}
