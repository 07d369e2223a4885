package window

import "testing"

func testOperator(name string, def Definition) *Operator[float64, string, float64, float64] {
	return NewOperator(Config[float64, string, float64, float64]{
		Name:            name,
		Definition:      def,
		Ops:             sumOps(),
		ExtractFrameSeq: func(v float64) FrameSeq { return FrameSeq(v) },
		ExtractKey:      func(v float64) string { return "k" },
	})
}

func TestOperatorDrainEmitsOneRowPerTumblingFrame(t *testing.T) {
	op := testOperator("TestOperatorDrainEmitsOneRowPerTumblingFrame", Tumbling(1))
	for seq := 0; seq < 3; seq++ {
		op.OnItem(float64(seq))
	}

	emitter := op.OnProgressMarker(ProgressMarker{Seq: 2})
	var rows []Frame[string, float64]
	marker := op.Drain(emitter, func(f Frame[string, float64]) {
		rows = append(rows, f)
	})
	if marker.Seq != 2 {
		t.Fatalf("marker.Seq = %d, want 2", marker.Seq)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for _, row := range rows {
		// Tumbling(1): each frame's single item is its own frameSeq value,
		// so the summed result equals the frame it came from.
		if row.Result != float64(row.FrameSeq) {
			t.Fatalf("frame %d: result = %v, want %v", row.FrameSeq, row.Result, row.FrameSeq)
		}
	}
}
