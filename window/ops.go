package window

// Ops bundles the pluggable operations on an accumulator type A over item
// type T, deriving external result R. It generalizes aggregator.Merger's
// single MergeFrom method into the full record of callables the windowing
// operator needs.
//
// Contract: CreateEmpty must be deterministic, and its result must remain
// Equal-stable for the lifetime of the operator — the operator captures one
// "empty" accumulator at construction and reuses it for equality checks
// (Invariant E, spec.md §3/§9 open question (i)). Combine must be
// associative and commutative over non-empty frames. If Deduct is non-nil
// it must be a true inverse of Combine: Deduct(Combine(x, y), y) must equal
// x under Equal. Finish must be pure.
type Ops[T any, A any, R any] struct {
	// CreateEmpty produces a fresh, empty accumulator.
	CreateEmpty func() A

	// Accumulate folds one item into an accumulator. It may mutate and
	// return the same A, or return a fresh A; callers use only the
	// returned value.
	Accumulate func(A, T) A

	// Combine folds two accumulators, leading-edge add in incremental mode
	// and the horizontal fold across a window's frames otherwise.
	Combine func(A, A) A

	// Deduct is the optional inverse of Combine used for incremental
	// sliding-window maintenance (trailing-edge subtract). Nil disables
	// the incremental fast path; the engine falls back to recomputing
	// each window from scratch.
	Deduct func(A, A) A

	// Finish derives the externally visible result from an accumulator.
	Finish func(A) R

	// Equal reports whether two accumulators are equal by value. Required
	// because an accumulator may be a mutable buffer (e.g. a running
	// count); a reference/identity check is insufficient (spec.md §9).
	Equal func(A, A) bool
}

// HasDeduct reports whether the incremental combine/deduct fast path is
// available for this bundle.
func (ops Ops[T, A, R]) HasDeduct() bool {
	return ops.Deduct != nil
}
