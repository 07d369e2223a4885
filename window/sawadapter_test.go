package window

import (
	"testing"

	"github.com/kuangyh/winsaw"
	"golang.org/x/net/context"
)

func TestSawAdapterEmitAndResult(t *testing.T) {
	adapter := NewSawAdapter(Config[float64, string, float64, float64]{
		Name:            "TestSawAdapterEmitAndResult",
		Definition:      Tumbling(1),
		Ops:             sumOps(),
		ExtractFrameSeq: func(v float64) FrameSeq { return FrameSeq(v) },
		ExtractKey:      func(v float64) string { return "k" },
	})

	for seq := 0; seq < 2; seq++ {
		if err := adapter.Emit(saw.Datum{Value: ItemEnvelope(float64(seq))}); err != nil {
			t.Fatalf("Emit(item) error: %v", err)
		}
	}
	if err := adapter.Emit(saw.Datum{Value: MarkerEnvelope[float64](ProgressMarker{Seq: 1})}); err != nil {
		t.Fatalf("Emit(marker) error: %v", err)
	}

	got, err := adapter.Result(context.Background())
	if err != nil {
		t.Fatalf("Result error: %v", err)
	}
	result := got.(WindowResult[string, float64])
	if !result.HaveMarker || result.Marker.Seq != 1 {
		t.Fatalf("unexpected marker state: %+v", result)
	}
	if len(result.Frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(result.Frames))
	}

	// A second Result call with nothing new emitted should come back empty.
	got2, err := adapter.Result(context.Background())
	if err != nil {
		t.Fatalf("Result error: %v", err)
	}
	if len(got2.(WindowResult[string, float64]).Frames) != 0 {
		t.Fatalf("expected no new frames on second Result call")
	}
}

func TestSawAdapterRejectsWrongEnvelopeType(t *testing.T) {
	adapter := NewSawAdapter(Config[float64, string, float64, float64]{
		Name:            "TestSawAdapterRejectsWrongEnvelopeType",
		Definition:      Tumbling(1),
		Ops:             sumOps(),
		ExtractFrameSeq: func(v float64) FrameSeq { return FrameSeq(v) },
		ExtractKey:      func(v float64) string { return "k" },
	})
	err := adapter.Emit(saw.Datum{Value: float64(1)})
	if err == nil {
		t.Fatalf("expected an error for a non-Envelope Datum value")
	}
}
