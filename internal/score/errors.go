package score

import (
	"errors"
	"fmt"
)

// AcousticModelError marks a failure of the acoustic model collaborator —
// the call failed outright or returned malformed frames. It is a distinct
// type so callers can tell "bad audio / model down" apart from "bad
// reference text" (which surfaces as [*phoneme.UnmappableError]). The core
// never retries; retry policy belongs to the calling layer.
type AcousticModelError struct {
	Err error
}

func (e *AcousticModelError) Error() string {
	return fmt.Sprintf("score: acoustic model: %v", e.Err)
}

func (e *AcousticModelError) Unwrap() error { return e.Err }

// ErrAlignmentIncomplete reports a defect in the aligner: the operation
// sequence did not cover every expected unit and decoded label exactly once.
// A silently wrong score is worse than a visible failure, so this aborts the
// request instead of degrading.
var ErrAlignmentIncomplete = errors.New("score: alignment did not cover both sequences exactly once")
