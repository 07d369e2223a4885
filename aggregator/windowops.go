package aggregator

import "github.com/kuangyh/winsaw/window"

// This file bridges the Saw-shaped aggregators above (Sum, Count, Avg,
// Quantile) into window.Ops bundles, generalizing the single-method
// Merger contract into the windowing operator's full
// create/accumulate/combine/deduct/finish/equal record. Every Combine here
// is written to mutate only its first argument and return it — the second
// argument may be a frame's own stored accumulator, read again by later
// overlapping windows in from-scratch mode, and must not be corrupted.

// SumOps returns the window.Ops for a running sum over Metric items. Sum is
// its own inverse, so the incremental combine-leading/deduct-trailing fast
// path is available.
func SumOps() window.Ops[Metric, Metric, Metric] {
	return window.Ops[Metric, Metric, Metric]{
		CreateEmpty: func() Metric { return 0 },
		Accumulate:  func(acc Metric, item Metric) Metric { return acc + item },
		Combine:     func(a, b Metric) Metric { return a + b },
		Deduct:      func(a, b Metric) Metric { return a - b },
		Finish:      func(a Metric) Metric { return a },
		Equal:       func(a, b Metric) bool { return a == b },
	}
}

// CountOps returns the window.Ops counting items regardless of value,
// mirroring Count.Emit. Like Sum, subtraction is Count's own inverse.
func CountOps() window.Ops[Metric, Metric, Metric] {
	return window.Ops[Metric, Metric, Metric]{
		CreateEmpty: func() Metric { return 0 },
		Accumulate:  func(acc Metric, _ Metric) Metric { return acc + 1 },
		Combine:     func(a, b Metric) Metric { return a + b },
		Deduct:      func(a, b Metric) Metric { return a - b },
		Finish:      func(a Metric) Metric { return a },
		Equal:       func(a, b Metric) bool { return a == b },
	}
}

// AvgOps returns the window.Ops computing a mean, keeping sum and count
// separately so repeated combine/deduct stays exact (see AvgState).
func AvgOps() window.Ops[Metric, AvgState, Metric] {
	return window.Ops[Metric, AvgState, Metric]{
		CreateEmpty: func() AvgState { return AvgState{} },
		Accumulate: func(acc AvgState, item Metric) AvgState {
			acc.Sum += item
			acc.Count++
			return acc
		},
		Combine: func(a, b AvgState) AvgState {
			a.Sum += b.Sum
			a.Count += b.Count
			return a
		},
		Deduct: func(a, b AvgState) AvgState {
			a.Sum -= b.Sum
			a.Count -= b.Count
			return a
		},
		Finish: func(a AvgState) Metric {
			if a.Count == 0 {
				return 0
			}
			return a.Sum / Metric(a.Count)
		},
		Equal: func(a, b AvgState) bool { return a == b },
	}
}

// QuantileOps returns the window.Ops wrapping QuantileState. The digest's
// merge-based sample stack has no subtraction inverse (collapsing samples
// is lossy), so Deduct is left nil: the engine always recomputes sliding
// windows for this aggregation from scratch, the corpus's own grounded
// example of spec.md's "no deduct" path.
func QuantileOps(desireNumBuckets int, sampleRate float64) window.Ops[Metric, *QuantileState, Quantile] {
	bufferSize := int(float64(desireNumBuckets) / sampleRate)
	return window.Ops[Metric, *QuantileState, Quantile]{
		CreateEmpty: func() *QuantileState { return NewQuantileState(bufferSize) },
		Accumulate: func(acc *QuantileState, item Metric) *QuantileState {
			acc.AddMetric(item)
			return acc
		},
		Combine: func(a, b *QuantileState) *QuantileState {
			// MergeFrom only ever fails (ErrNotMergeable) on a bufferSize mismatch, which
			// cannot happen here since every accumulator in one operator
			// shares the bufferSize captured above.
			if err := a.MergeFrom(b); err != nil {
				panic(err)
			}
			return a
		},
		Deduct: nil,
		Finish: func(a *QuantileState) Quantile { return a.Result() },
		// Only used when Deduct is supplied (it is not, for Quantile). This
		// compares pointer identity, not digest contents, so it is not a
		// by-value Equal in the sense of window.Ops.
		Equal: func(a, b *QuantileState) bool { return a == b },
	}
}
