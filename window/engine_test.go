package window

import "testing"

func sumOps() Ops[float64, float64, float64] {
	return Ops[float64, float64, float64]{
		CreateEmpty: func() float64 { return 0 },
		Accumulate:  func(acc float64, item float64) float64 { return acc + item },
		Combine:     func(a, b float64) float64 { return a + b },
		Deduct:      func(a, b float64) float64 { return a - b },
		Finish:      func(a float64) float64 { return a },
		Equal:       func(a, b float64) bool { return a == b },
	}
}

func sumOpsNoDeduct() Ops[float64, float64, float64] {
	ops := sumOps()
	ops.Deduct = nil
	return ops
}

func drain[T any, K comparable, A any, R any](e *Emitter[T, K, A, R]) ([]Frame[K, R], ProgressMarker) {
	var rows []Frame[K, R]
	var marker ProgressMarker
	for {
		item, ok := e.Next()
		if !ok {
			break
		}
		if item.IsMarker {
			marker = item.Marker
			continue
		}
		rows = append(rows, item.Frame)
	}
	return rows, marker
}

func newTestEngine(def Definition, ops Ops[float64, float64, float64]) (*Engine[float64, string, float64, float64], *FrameStore[float64, string, float64]) {
	store := NewFrameStore[float64, string, float64](ops.CreateEmpty, ops.Accumulate)
	return NewEngine[float64, string, float64, float64](def, ops, store), store
}

func frameResult(rows []Frame[string, float64], frameSeq FrameSeq, key string) (float64, bool) {
	for _, r := range rows {
		if r.FrameSeq == frameSeq && r.Key == key {
			return r.Result, true
		}
	}
	return 0, false
}

func TestTumblingEmitsOneFramePerBucket(t *testing.T) {
	def := Tumbling(1)
	engine, store := newTestEngine(def, sumOps())
	for seq := FrameSeq(0); seq <= 2; seq++ {
		store.Upsert(seq, "a", float64(seq+1))
	}

	emitter := engine.OnProgressMarker(ProgressMarker{Seq: 2})
	rows, marker := drain(emitter)
	if marker.Seq != 2 {
		t.Fatalf("marker.Seq = %d, want 2", marker.Seq)
	}
	for seq := FrameSeq(0); seq <= 2; seq++ {
		want := float64(seq + 1)
		got, ok := frameResult(rows, seq, "a")
		if !ok || got != want {
			t.Fatalf("frame %d: got %v, ok=%v, want %v", seq, got, ok, want)
		}
	}
	if !store.Empty() {
		t.Fatalf("tumbling frames should all be evicted once emitted, store.Len()=%d", store.Len())
	}
}

func TestSlidingWithDeductMatchesNaiveSum(t *testing.T) {
	def := Sliding(1, 3)
	engine, store := newTestEngine(def, sumOps())
	for seq := FrameSeq(0); seq <= 5; seq++ {
		store.Upsert(seq, "a", float64(seq+1))
	}

	emitter := engine.OnProgressMarker(ProgressMarker{Seq: 5})
	rows, _ := drain(emitter)

	// A window ending at frameSeq folds frames [frameSeq-2, frameSeq].
	for seq := FrameSeq(2); seq <= 5; seq++ {
		var want float64
		for s := seq - 2; s <= seq; s++ {
			want += float64(s + 1)
		}
		got, ok := frameResult(rows, seq, "a")
		if !ok || got != want {
			t.Fatalf("frame %d: got %v, ok=%v, want %v", seq, got, ok, want)
		}
	}
}

func TestSlidingNoDeductMatchesWithDeduct(t *testing.T) {
	def := Sliding(1, 3)
	withDeduct, storeA := newTestEngine(def, sumOps())
	noDeduct, storeB := newTestEngine(def, sumOpsNoDeduct())

	for seq := FrameSeq(0); seq <= 6; seq++ {
		storeA.Upsert(seq, "a", float64(seq*2+1))
		storeB.Upsert(seq, "a", float64(seq*2+1))
	}

	rowsA, _ := drain(withDeduct.OnProgressMarker(ProgressMarker{Seq: 6}))
	rowsB, _ := drain(noDeduct.OnProgressMarker(ProgressMarker{Seq: 6}))

	if len(rowsA) != len(rowsB) {
		t.Fatalf("row count mismatch: with-deduct=%d no-deduct=%d", len(rowsA), len(rowsB))
	}
	for _, row := range rowsA {
		want, ok := frameResult(rowsB, row.FrameSeq, row.Key)
		if !ok || want != row.Result {
			t.Fatalf("frame %d diverges: with-deduct=%v no-deduct=%v (ok=%v)", row.FrameSeq, row.Result, want, ok)
		}
	}
}

func TestEmptyWindowEmitsNoRowsForAbsentKey(t *testing.T) {
	def := Sliding(1, 3)
	engine, store := newTestEngine(def, sumOps())
	store.Upsert(0, "a", 1)
	// Frames 1 and 2 never get an item for "a"; the window ending at frame 2
	// still has data (from frame 0) so the key keeps appearing, but from
	// frame 3 onward nothing of "a" is left in range. Frame 5 carries "b".
	store.Upsert(5, "b", 9)

	emitter := engine.OnProgressMarker(ProgressMarker{Seq: 5})
	rows, marker := drain(emitter)
	if marker.Seq != 5 {
		t.Fatalf("marker.Seq = %d, want 5", marker.Seq)
	}
	if _, ok := frameResult(rows, 3, "a"); ok {
		t.Fatalf("key %q should have fully aged out of the window ending at frame 3", "a")
	}
	if _, ok := frameResult(rows, 5, "b"); !ok {
		t.Fatalf("expected a row for key %q at frame 5", "b")
	}
}

func TestLateMarkerWithEmptyStoreOnlyForwardsMarker(t *testing.T) {
	def := Tumbling(1)
	engine, _ := newTestEngine(def, sumOps())

	emitter := engine.OnProgressMarker(ProgressMarker{Seq: 100})
	rows, marker := drain(emitter)
	if len(rows) != 0 {
		t.Fatalf("expected no rows from an empty store, got %d", len(rows))
	}
	if marker.Seq != 100 {
		t.Fatalf("marker.Seq = %d, want 100", marker.Seq)
	}
	if engine.cursorInitialized {
		t.Fatalf("cursor should stay uninitialized until real data arrives")
	}
}

func TestTrailingFramesAreEvicted(t *testing.T) {
	def := Sliding(1, 2)
	engine, store := newTestEngine(def, sumOps())
	for seq := FrameSeq(0); seq <= 4; seq++ {
		store.Upsert(seq, "a", 1)
	}

	drain(engine.OnProgressMarker(ProgressMarker{Seq: 4}))

	// Window length 2: by the time frame 4 has completed, frames <= 2
	// (TrailingEdge(4) = 4-2+1 = 3, so frame 2 already fell out) must be
	// gone from the store.
	if got := store.Get(2); got != nil {
		t.Fatalf("frame 2 should have been evicted, got %v", got)
	}
	if got := store.Get(4); got == nil {
		t.Fatalf("frame 4 should still be live")
	}
}
