package window

// SlidingWindowState is a single per-key accumulator map reflecting the
// "current" window when incremental (combine leading / deduct trailing)
// maintenance is enabled. It never contains an entry equal to the empty
// accumulator (Invariant E, spec.md §3).
type SlidingWindowState[K comparable, A any] struct {
	emptyAcc     A
	equal        func(A, A) bool
	createEmpty  func() A
	current      map[K]A
}

// NewSlidingWindowState constructs an empty SlidingWindowState. emptyAcc is
// the sentinel captured once at operator construction (Invariant E).
func NewSlidingWindowState[K comparable, A any](emptyAcc A, equal func(A, A) bool, createEmpty func() A) *SlidingWindowState[K, A] {
	return &SlidingWindowState[K, A]{
		emptyAcc:    emptyAcc,
		equal:       equal,
		createEmpty: createEmpty,
		current:     make(map[K]A),
	}
}

// Patch applies op (Ops.Combine for a leading-edge add, Ops.Deduct for a
// trailing-edge subtract) to every (key, v) pair in patchFrame. A nil
// patchFrame is a no-op. Any resulting accumulator equal to the empty
// sentinel is removed rather than stored, keeping the sliding state's size
// proportional to keys actually present in the live window.
func (s *SlidingWindowState[K, A]) Patch(op func(A, A) A, patchFrame KeyMap[K, A]) {
	for key, v := range patchFrame {
		base, ok := s.current[key]
		if !ok {
			base = s.createEmpty()
		}
		result := op(base, v)
		if s.equal(result, s.emptyAcc) {
			delete(s.current, key)
		} else {
			s.current[key] = result
		}
	}
}

// AsMapSnapshot returns the live mapping. Callers must treat it as
// read-only; it is not a copy.
func (s *SlidingWindowState[K, A]) AsMapSnapshot() map[K]A {
	return s.current
}
