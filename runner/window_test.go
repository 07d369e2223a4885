package runner

import (
	"testing"

	"github.com/kuangyh/winsaw"
	"github.com/kuangyh/winsaw/window"
	"golang.org/x/net/context"
)

func sumOps() window.Ops[float64, float64, float64] {
	return window.Ops[float64, float64, float64]{
		CreateEmpty: func() float64 { return 0 },
		Accumulate:  func(acc float64, item float64) float64 { return acc + item },
		Combine:     func(a, b float64) float64 { return a + b },
		Deduct:      func(a, b float64) float64 { return a - b },
		Finish:      func(a float64) float64 { return a },
		Equal:       func(a, b float64) bool { return a == b },
	}
}

func keyHash(key saw.DatumKey) int {
	var h int
	for _, b := range []byte(key) {
		h = h*31 + int(b)
	}
	if h < 0 {
		h = -h
	}
	return h
}

func TestShardedWindowRunnerRoutesByKeyAndBroadcastsMarkers(t *testing.T) {
	runner := NewShardedWindowRunner(WindowRunnerSpec[float64, string, float64, float64]{
		NumShards:       4,
		QueueBufferSize: 16,
		KeyHashFunc:     keyHash,
		Config: window.Config[float64, string, float64, float64]{
			Name:            "TestShardedWindowRunnerRoutesByKeyAndBroadcastsMarkers",
			Definition:      window.Tumbling(1),
			Ops:             sumOps(),
			ExtractFrameSeq: func(v float64) window.FrameSeq { return window.FrameSeq(v) },
			ExtractKey:      func(v float64) string { return "biz-a" },
		},
	})

	for seq := 0; seq < 3; seq++ {
		runner.OnItem(float64(seq), saw.DatumKey("biz-a"))
	}
	runner.OnProgressMarker(window.ProgressMarker{Seq: 2})

	var total float64
	rowCount := 0
	if err := runner.Drain(context.Background(), func(f window.Frame[string, float64]) {
		total += f.Result
		rowCount++
	}); err != nil {
		t.Fatalf("Drain error: %v", err)
	}
	if rowCount != 3 {
		t.Fatalf("got %d rows across shards, want 3 (frames 0, 1, 2)", rowCount)
	}
	if total != 3 {
		t.Fatalf("total = %v, want 3", total)
	}
}
