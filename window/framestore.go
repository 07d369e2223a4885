package window

// KeyMap is a per-frame keyed accumulator map.
type KeyMap[K comparable, A any] map[K]A

// FrameStore is a per-frame keyed accumulator store: frameSeq -> (key ->
// accumulator). Frame maps are created lazily on first item for a given
// frameSeq and removed entirely on eviction. No I/O, no error returns —
// resource exhaustion is host-fatal, per spec.md §4.3.
type FrameStore[T any, K comparable, A any] struct {
	createEmpty func() A
	accumulate  func(A, T) A

	frames map[FrameSeq]KeyMap[K, A]
}

// NewFrameStore constructs an empty FrameStore using the given accumulator
// constructor and fold function (normally Ops.CreateEmpty/Ops.Accumulate).
func NewFrameStore[T any, K comparable, A any](createEmpty func() A, accumulate func(A, T) A) *FrameStore[T, K, A] {
	return &FrameStore[T, K, A]{
		createEmpty: createEmpty,
		accumulate:  accumulate,
		frames:      make(map[FrameSeq]KeyMap[K, A]),
	}
}

// Upsert locates or creates the key map for frameSeq, locates or creates the
// per-key accumulator, and replaces it with accumulate(acc, item).
func (fs *FrameStore[T, K, A]) Upsert(frameSeq FrameSeq, key K, item T) {
	keys, ok := fs.frames[frameSeq]
	if !ok {
		keys = make(KeyMap[K, A])
		fs.frames[frameSeq] = keys
	}
	acc, ok := keys[key]
	if !ok {
		acc = fs.createEmpty()
	}
	keys[key] = fs.accumulate(acc, item)
}

// Get returns the key map stored for frameSeq, or nil if absent. The
// returned map must not be mutated by the caller.
func (fs *FrameStore[T, K, A]) Get(frameSeq FrameSeq) KeyMap[K, A] {
	return fs.frames[frameSeq]
}

// Evict removes and returns the key map for frameSeq, or nil if absent.
func (fs *FrameStore[T, K, A]) Evict(frameSeq FrameSeq) KeyMap[K, A] {
	keys, ok := fs.frames[frameSeq]
	if !ok {
		return nil
	}
	delete(fs.frames, frameSeq)
	return keys
}

// MinFrameSeq returns the smallest stored frame sequence, and false if the
// store is empty. Intended to be called once, on the first progress marker.
func (fs *FrameStore[T, K, A]) MinFrameSeq() (FrameSeq, bool) {
	first := true
	var min FrameSeq
	for seq := range fs.frames {
		if first || seq < min {
			min = seq
			first = false
		}
	}
	return min, !first
}

// Empty reports whether the store holds no frames at all.
func (fs *FrameStore[T, K, A]) Empty() bool {
	return len(fs.frames) == 0
}

// Len reports how many frames are currently stored, for tests and metrics.
func (fs *FrameStore[T, K, A]) Len() int {
	return len(fs.frames)
}
