// Package align reconciles the expected phoneme sequence against the decoded
// label sequence using a weighted edit distance.
//
// Substitution cost is phonetic distance between the two symbols, not unit
// cost — confusing AE for EH is cheaper than confusing AE for K — while
// insertions and deletions carry fixed configurable penalties. The dynamic
// programming table is (|expected|+1) × (|decoded|+1); for utterances of a
// few seconds this is tens by tens and costs nothing, so no banded or
// streaming variant exists.
//
// Tie-breaking is deterministic: when several paths reach the same minimum
// cost, diagonal moves (Match/Substitution) win over gaps, and Deletion wins
// over Insertion. Identical inputs therefore always produce identical
// alignments.
package align

import (
	"github.com/LQ758/phonoscore/internal/decode"
	"github.com/LQ758/phonoscore/internal/phoneme"
)

// OpKind is the kind of a single alignment operation.
type OpKind string

const (
	Match        OpKind = "match"
	Substitution OpKind = "substitution"
	Insertion    OpKind = "insertion"
	Deletion     OpKind = "deletion"
)

// Op relates one expected unit and/or one decoded label.
//
// Exactly one of Expected/Decoded is nil for Insertion (no expected side)
// and Deletion (no decoded side); both are set for Match and Substitution.
type Op struct {
	Kind OpKind

	// Expected is the reference unit involved, nil for Insertion.
	Expected *phoneme.Unit

	// Decoded is the decoded label involved, nil for Deletion.
	Decoded *decode.Label

	// Penalty is the cost this operation contributed to the alignment:
	// 0 for Match, the phonetic distance for Substitution, and the fixed
	// gap penalty for Insertion/Deletion.
	Penalty float64
}

const (
	defaultInsertionCost = 1.0
	defaultDeletionCost  = 1.0
)

// Option is a functional option for configuring an [Aligner].
type Option func(*Aligner)

// WithGapCosts overrides the fixed insertion and deletion penalties.
func WithGapCosts(insertion, deletion float64) Option {
	return func(a *Aligner) {
		a.insCost = insertion
		a.delCost = deletion
	}
}

// Aligner computes weighted edit-distance alignments.
// It is read-only after construction and safe for concurrent use.
type Aligner struct {
	dist    *DistanceTable
	insCost float64
	delCost float64
}

// NewAligner returns an Aligner using the given distance table for
// substitution costs. A nil table falls back to [DefaultDistanceTable].
func NewAligner(dist *DistanceTable, opts ...Option) *Aligner {
	if dist == nil {
		dist = DefaultDistanceTable()
	}
	a := &Aligner{dist: dist, insCost: defaultInsertionCost, delCost: defaultDeletionCost}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Align produces the operation sequence relating expected to decoded.
//
// Every expected unit and every decoded label appears in exactly one
// operation. An empty decoded sequence against non-empty expected yields an
// all-Deletion alignment (the speaker said nothing recognizable); empty
// expected input is a caller error rejected upstream by the mapper and
// yields an all-Insertion alignment here rather than a panic.
func (a *Aligner) Align(expected []phoneme.Unit, decoded []decode.Label) []Op {
	n, m := len(expected), len(decoded)

	// cost[i][j] is the minimum cost of aligning expected[:i] with decoded[:j].
	cost := make([][]float64, n+1)
	for i := range cost {
		cost[i] = make([]float64, m+1)
	}
	for i := 1; i <= n; i++ {
		cost[i][0] = cost[i-1][0] + a.delCost
	}
	for j := 1; j <= m; j++ {
		cost[0][j] = cost[0][j-1] + a.insCost
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			diag := cost[i-1][j-1] + a.dist.Cost(expected[i-1].Symbol, decoded[j-1].Symbol)
			del := cost[i-1][j] + a.delCost
			ins := cost[i][j-1] + a.insCost
			cost[i][j] = min(diag, del, ins)
		}
	}

	// Backtrack from the end cell, preferring diagonal, then deletion,
	// then insertion, and reverse into forward order.
	ops := make([]Op, 0, max(n, m))
	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && cost[i][j] == cost[i-1][j-1]+a.dist.Cost(expected[i-1].Symbol, decoded[j-1].Symbol):
			subCost := a.dist.Cost(expected[i-1].Symbol, decoded[j-1].Symbol)
			kind := Substitution
			if expected[i-1].Symbol == decoded[j-1].Symbol {
				kind = Match
			}
			ops = append(ops, Op{
				Kind:     kind,
				Expected: &expected[i-1],
				Decoded:  &decoded[j-1],
				Penalty:  subCost,
			})
			i, j = i-1, j-1
		case i > 0 && cost[i][j] == cost[i-1][j]+a.delCost:
			ops = append(ops, Op{Kind: Deletion, Expected: &expected[i-1], Penalty: a.delCost})
			i--
		default:
			ops = append(ops, Op{Kind: Insertion, Decoded: &decoded[j-1], Penalty: a.insCost})
			j--
		}
	}

	for l, r := 0, len(ops)-1; l < r; l, r = l+1, r-1 {
		ops[l], ops[r] = ops[r], ops[l]
	}
	return ops
}

// Cost returns the total weighted edit distance of an alignment.
func Cost(ops []Op) float64 {
	var total float64
	for _, op := range ops {
		total += op.Penalty
	}
	return total
}
