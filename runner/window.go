package runner

import (
	"github.com/kuangyh/winsaw"
	"github.com/kuangyh/winsaw/table"
	"github.com/kuangyh/winsaw/window"
	"golang.org/x/net/context"
)

// WindowRunnerSpec configures a ShardedWindowRunner, mirroring BatchSpec's
// shape for the windowing operator instead of a plain Saw.
type WindowRunnerSpec[T any, K comparable, A any, R any] struct {
	// NumShards independent window.Operator instances to run, each owned by
	// its own runner.Queue. Defaults to 1.
	NumShards       int
	QueueBufferSize int
	// KeyHashFunc assigns an incoming item's Datum key to a shard; nil
	// routes every item to shard 0 (useful for a single-key or
	// already-pre-sharded input).
	KeyHashFunc table.KeyHashFunc
	Config      window.Config[T, K, A, R]
}

// ShardedWindowRunner distributes one logical windowing operator across
// spec.NumShards independently owned Operator instances, per spec.md §5's
// single-thread single-instance model: each shard is driven serially by its
// own runner.Queue goroutine, so parallelism comes from sharding rather than
// from synchronizing one Operator. A Datum's key routes to exactly one
// shard via KeyHashFunc; a ProgressMarker is broadcast to every shard, since
// each shard's Engine independently decides what it now has enough data to
// emit — grounded on runner.BatchSpec's KeyHashFunc pre-hashing and
// runner.QueueGroup/Queue for off-goroutine ingestion.
type ShardedWindowRunner[T any, K comparable, A any, R any] struct {
	spec   WindowRunnerSpec[T, K, A, R]
	group  QueueGroup
	shards []*window.SawAdapter[T, K, A, R]
	queues []*Queue
}

// NewShardedWindowRunner constructs spec.NumShards Operator instances (via
// window.NewSawAdapter) and a Queue for each, ready to accept OnItem/
// OnProgressMarker calls.
func NewShardedWindowRunner[T any, K comparable, A any, R any](spec WindowRunnerSpec[T, K, A, R]) *ShardedWindowRunner[T, K, A, R] {
	if spec.NumShards == 0 {
		spec.NumShards = 1
	}
	runner := &ShardedWindowRunner[T, K, A, R]{
		spec:   spec,
		shards: make([]*window.SawAdapter[T, K, A, R], spec.NumShards),
		queues: make([]*Queue, spec.NumShards),
	}
	for i := 0; i < spec.NumShards; i++ {
		adapter := window.NewSawAdapter(spec.Config)
		runner.shards[i] = adapter
		runner.queues[i] = runner.group.New(adapter, spec.QueueBufferSize)
	}
	return runner
}

// OnItem routes item to exactly one shard, by key, through that shard's
// Queue. Returns once the item is queued, blocking while that Queue's
// buffer is full; the item is folded into the Operator's FrameStore
// asynchronously.
func (r *ShardedWindowRunner[T, K, A, R]) OnItem(item T, key saw.DatumKey) {
	shard := 0
	if r.spec.KeyHashFunc != nil {
		shard = r.spec.KeyHashFunc(key) % len(r.queues)
		if shard < 0 {
			shard += len(r.queues)
		}
	}
	r.queues[shard].Sched(saw.Datum{Value: window.ItemEnvelope(item)})
}

// OnProgressMarker broadcasts marker to every shard's Queue.
func (r *ShardedWindowRunner[T, K, A, R]) OnProgressMarker(marker window.ProgressMarker) {
	for _, q := range r.queues {
		q.Sched(saw.Datum{Value: window.MarkerEnvelope[T](marker)})
	}
}

// Drain waits for all scheduled items and markers to be processed by every
// shard, then invokes onFrame for each buffered Frame row in shard order.
// There is no ordering guarantee across shards — per spec.md §5 they are
// independent operator instances — but within one shard, Frame rows are
// produced in the ascending-FrameSeq order each marker's Emitter yielded
// them.
func (r *ShardedWindowRunner[T, K, A, R]) Drain(ctx context.Context, onFrame func(window.Frame[K, R])) error {
	r.group.Join()
	for _, adapter := range r.shards {
		result, err := adapter.Result(ctx)
		if err != nil {
			return err
		}
		wr := result.(window.WindowResult[K, R])
		for _, f := range wr.Frames {
			onFrame(f)
		}
	}
	return nil
}
