package window

// ProgressMarker is an in-band signal that no further item with sequence
// <= Seq will arrive; it authorizes emission of completed windows.
type ProgressMarker struct {
	Seq FrameSeq
}

// Frame is one emitted output row: the result of aggregating key's
// accumulator over the window ending at FrameSeq.
type Frame[K comparable, R any] struct {
	FrameSeq FrameSeq
	Key      K
	Result   R
}

// Item is one element of an Emitter's lazy output sequence: either a Frame
// row or, as the final element, the forwarded ProgressMarker.
type Item[K comparable, R any] struct {
	IsMarker bool
	Frame    Frame[K, R]
	Marker   ProgressMarker
}

// Engine is the progress-driven driver (C5): given a progress marker, it
// decides which frame sequences to emit, computes each window (tumbling /
// incremental / from-scratch), and produces a lazy sequence of output items
// followed by the marker itself.
//
// An Engine is single-owner: the host must invoke OnProgressMarker serially,
// never concurrently, and must fully drain one Emitter (or abandon it, e.g.
// on cancellation) before most callers would want to start another — the
// engine does not itself enforce this, matching spec.md §5's single-thread
// single-instance model.
type Engine[T any, K comparable, A any, R any] struct {
	def   Definition
	ops   Ops[T, A, R]
	store *FrameStore[T, K, A]
	state *SlidingWindowState[K, A] // nil when ops.Deduct == nil

	cursorInitialized bool
	nextFrameSeqToEmit FrameSeq
}

// NewEngine constructs an Engine over the given FrameStore. If ops.Deduct is
// non-nil, incremental sliding-window maintenance is enabled and a
// SlidingWindowState is created automatically.
func NewEngine[T any, K comparable, A any, R any](def Definition, ops Ops[T, A, R], store *FrameStore[T, K, A]) *Engine[T, K, A, R] {
	e := &Engine[T, K, A, R]{
		def:   def,
		ops:   ops,
		store: store,
	}
	if ops.HasDeduct() {
		e.state = NewSlidingWindowState[K, A](ops.CreateEmpty(), ops.Equal, ops.CreateEmpty)
	}
	return e
}

// OnProgressMarker drives the engine for marker P, returning a lazy Emitter.
// The emission cursor is updated eagerly here: Step 1 initializes it on the
// first marker seen with a non-empty FrameStore, and Step 2 advances it to
// the end of this marker's range. The FrameStore and the sliding state are
// only mutated as the returned Emitter is pulled; an Emitter that is never
// pulled leaves them as they were, while the frames in its range are still
// skipped by later markers.
func (e *Engine[T, K, A, R]) OnProgressMarker(marker ProgressMarker) *Emitter[T, K, A, R] {
	// Step 1 — cursor initialization, first marker only.
	if !e.cursorInitialized {
		if e.store.Empty() {
			// No emission possible yet; forward the marker, cursor stays
			// uninitialized so a later marker can pick up from real data.
			return &Emitter[T, K, A, R]{markerOnly: true, marker: marker}
		}
		minSeq, _ := e.store.MinFrameSeq()
		if minSeq < marker.Seq {
			e.nextFrameSeqToEmit = minSeq
		} else {
			e.nextFrameSeqToEmit = marker.Seq
		}
		e.cursorInitialized = true
	}

	// Step 2 — compute emission range; advance cursor immediately so a
	// subsequent marker continues after this batch even if this Emitter is
	// abandoned mid-drain.
	rangeStart := e.nextFrameSeqToEmit
	rangeEnd := e.def.HigherFrameSeq(marker.Seq)
	e.nextFrameSeqToEmit = rangeEnd

	return &Emitter[T, K, A, R]{
		engine:     e,
		frameSeq:   rangeStart,
		rangeEnd:   rangeEnd,
		marker:     marker,
		markerOnly: rangeStart >= rangeEnd,
	}
}

// computeWindow returns the window at frameSeq as a key->accumulator map,
// using the incremental or from-scratch path depending on ops.Deduct and
// def.IsTumbling.
func (e *Engine[T, K, A, R]) computeWindow(frameSeq FrameSeq) map[K]A {
	if e.def.IsTumbling() {
		leading := e.store.Get(frameSeq)
		if leading == nil {
			return nil
		}
		return leading
	}
	if e.ops.HasDeduct() {
		e.state.Patch(e.ops.Combine, e.store.Get(frameSeq))
		return e.state.AsMapSnapshot()
	}
	// From-scratch: fold every frame in [lo, frameSeq] into a fresh map.
	lo := e.def.TrailingEdge(frameSeq)
	window := make(map[K]A)
	for seq := lo; seq <= frameSeq; seq += e.def.FrameLength() {
		frame := e.store.Get(seq)
		for key, v := range frame {
			base, ok := window[key]
			if !ok {
				base = e.ops.CreateEmpty()
			}
			window[key] = e.ops.Combine(base, v)
		}
	}
	return window
}

// completeWindow runs the Step 3c completion side effect for frameSeq: evict
// the trailing frame and, in incremental mode, deduct it from the sliding
// state. Runs exactly once per emitted frame, even when the window yielded
// zero rows.
func (e *Engine[T, K, A, R]) completeWindow(frameSeq FrameSeq) {
	trailing := e.def.TrailingEdge(frameSeq)
	evicted := e.store.Evict(trailing)
	if e.ops.HasDeduct() {
		e.state.Patch(e.ops.Deduct, evicted)
	}
}
