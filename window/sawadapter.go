package window

import (
	"errors"

	"github.com/kuangyh/winsaw"
	"golang.org/x/net/context"
)

var errNotEnvelope = errors.New("saw.Datum.Value is not an Envelope")

// Envelope is the Datum.Value shape SawAdapter accepts, letting a windowed
// item and an in-band ProgressMarker travel the same Datum stream (and so
// the same Hub topic / runner.Queue) that the rest of the package already
// moves Datums through.
type Envelope[T any] struct {
	Item     T
	Marker   ProgressMarker
	IsMarker bool
}

// ItemEnvelope wraps a regular windowed item.
func ItemEnvelope[T any](item T) Envelope[T] {
	return Envelope[T]{Item: item}
}

// MarkerEnvelope wraps a progress marker.
func MarkerEnvelope[T any](marker ProgressMarker) Envelope[T] {
	return Envelope[T]{Marker: marker, IsMarker: true}
}

// WindowResult is SawAdapter's Result value: every Frame row emitted since
// the previous Result call, in the order their Emitters produced them, plus
// the most recently forwarded marker.
type WindowResult[K comparable, R any] struct {
	Frames     []Frame[K, R]
	Marker     ProgressMarker
	HaveMarker bool
}

// SawAdapter bridges an Operator into saw.Saw so it can be driven by Hub,
// Table and runner.Queue/Par exactly like the interface{}-based aggregators
// in package aggregator. Datum.Key is ignored on input — the Operator
// derives its own grouping key from each item via Config.ExtractKey — and
// Datum.Value must be an Envelope[T].
//
// Saw's Result method returns a snapshot of current state; Operator has no
// such snapshot; it has a lazy pull sequence produced each time a marker
// arrives. SawAdapter reconciles the two by draining every Emitter eagerly,
// inside Emit, and buffering the rows for the next Result call. A SawAdapter
// is single-owner, matching spec.md §5 and package window's emitter
// contract generally.
type SawAdapter[T any, K comparable, A any, R any] struct {
	op *Operator[T, K, A, R]

	pending    []Frame[K, R]
	lastMarker ProgressMarker
	haveMarker bool
}

// NewSawAdapter constructs a SawAdapter around a fresh Operator built from
// cfg.
func NewSawAdapter[T any, K comparable, A any, R any](cfg Config[T, K, A, R]) *SawAdapter[T, K, A, R] {
	return &SawAdapter[T, K, A, R]{op: NewOperator(cfg)}
}

// Emit implements saw.Saw. An item Envelope is folded into the operator's
// FrameStore; a marker Envelope drives the Engine and drains its Emitter
// immediately, buffering every completed Frame row for Result.
func (a *SawAdapter[T, K, A, R]) Emit(datum saw.Datum) error {
	env, ok := datum.Value.(Envelope[T])
	if !ok {
		return &ContractError{Op: "SawAdapter.Emit", Err: errNotEnvelope}
	}
	if !env.IsMarker {
		a.op.OnItem(env.Item)
		return nil
	}
	emitter := a.op.OnProgressMarker(env.Marker)
	marker := a.op.Drain(emitter, func(f Frame[K, R]) {
		a.pending = append(a.pending, f)
	})
	a.lastMarker = marker
	a.haveMarker = true
	return nil
}

// Result implements saw.Saw, returning and clearing every Frame row buffered
// since the last call.
func (a *SawAdapter[T, K, A, R]) Result(ctx context.Context) (interface{}, error) {
	out := WindowResult[K, R]{
		Frames:     a.pending,
		Marker:     a.lastMarker,
		HaveMarker: a.haveMarker,
	}
	a.pending = nil
	return out, nil
}
