package window

import "github.com/kuangyh/winsaw"

// Operator is the shell (C6) wiring input items into a FrameStore, routing
// progress markers into an Engine, and exposing the output sequence. It
// never blocks and never allocates unboundedly per call: per item it
// allocates at most one frame map entry and one accumulator-sized value.
type Operator[T any, K comparable, A any, R any] struct {
	name   string
	def    Definition
	ops    Ops[T, A, R]
	store  *FrameStore[T, K, A]
	engine *Engine[T, K, A, R]

	extractFrameSeq func(T) FrameSeq
	extractKey      func(T) K

	itemsAccepted saw.VarInt
	framesEvicted saw.VarInt
	windowsEmitted saw.VarInt
}

// Config bundles an Operator's construction parameters, per spec.md §6.
type Config[T any, K comparable, A any, R any] struct {
	Name            string
	Definition      Definition
	Ops             Ops[T, A, R]
	ExtractFrameSeq func(T) FrameSeq
	ExtractKey      func(T) K
}

// NewOperator constructs an Operator from a Config.
func NewOperator[T any, K comparable, A any, R any](cfg Config[T, K, A, R]) *Operator[T, K, A, R] {
	store := NewFrameStore[T, K, A](cfg.Ops.CreateEmpty, cfg.Ops.Accumulate)
	return &Operator[T, K, A, R]{
		name:            cfg.Name,
		def:             cfg.Definition,
		ops:             cfg.Ops,
		store:           store,
		engine:          NewEngine[T, K, A, R](cfg.Definition, cfg.Ops, store),
		extractFrameSeq: cfg.ExtractFrameSeq,
		extractKey:      cfg.ExtractKey,
		itemsAccepted:   saw.ReportInt(cfg.Name, "itemsAccepted"),
		framesEvicted:   saw.ReportInt(cfg.Name, "framesEvicted"),
		windowsEmitted:  saw.ReportInt(cfg.Name, "windowsEmitted"),
	}
}

// OnItem extracts frameSeq and key from item and folds it into the
// FrameStore. Always succeeds from this layer's point of view; a panicking
// Accumulate/extractor is a contract violation per spec.md §7 kind 1 and is
// allowed to propagate as a fatal operator error.
func (op *Operator[T, K, A, R]) OnItem(item T) {
	frameSeq := op.extractFrameSeq(item)
	key := op.extractKey(item)
	op.store.Upsert(frameSeq, key, item)
	op.itemsAccepted.Add(1)
}

// OnProgressMarker drives the Engine for marker and returns the lazy output
// Emitter. The windowsEmitted/framesEvicted metrics are only updated when
// the Emitter is consumed through Drain; pulling Emitter.Next directly
// leaves them unchanged.
func (op *Operator[T, K, A, R]) OnProgressMarker(marker ProgressMarker) *Emitter[T, K, A, R] {
	return op.engine.OnProgressMarker(marker)
}

// Drain fully consumes emitter, invoking onFrame for each Frame row in
// order and returning the forwarded marker. It is a convenience wrapper
// around Emitter.Next for callers that do not need to interleave output
// with other work; it also updates the operator's windowsEmitted/
// framesEvicted counters as frames complete.
func (op *Operator[T, K, A, R]) Drain(emitter *Emitter[T, K, A, R], onFrame func(Frame[K, R])) ProgressMarker {
	emitter.OnFrameComplete = func(FrameSeq) {
		op.windowsEmitted.Add(1)
		op.framesEvicted.Add(1)
	}
	var marker ProgressMarker
	for {
		item, ok := emitter.Next()
		if !ok {
			break
		}
		if item.IsMarker {
			marker = item.Marker
			break
		}
		onFrame(item.Frame)
	}
	return marker
}
