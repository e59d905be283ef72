// Package watcher keeps the previous and current sample of a value so edges can be detected.
package watcher

// Pair is the last two samples of a watched value
type Pair[T comparable] struct {
	Old     T
	Current T
}

// Changed reports whether the last sample differs from the one before it
func (p Pair[T]) Changed() bool {
	return p.Old != p.Current
}

// ChangedTo reports an edge into v
func (p Pair[T]) ChangedTo(v T) bool {
	return p.Old != v && p.Current == v
}

// ChangedFrom reports an edge out of v
func (p Pair[T]) ChangedFrom(v T) bool {
	return p.Old == v && p.Current != v
}

// Watcher holds no pair until the first successful sample.
// The zero value is ready to use.
type Watcher[T comparable] struct {
	pair  Pair[T]
	valid bool
}

// Update feeds one sample. A missing sample (ok == false) leaves the watcher unchanged.
func (w *Watcher[T]) Update(sample T, ok bool) {
	if !ok {
		return
	}
	if !w.valid {
		w.pair = Pair[T]{Old: sample, Current: sample}
		w.valid = true
		return
	}
	w.pair.Old = w.pair.Current
	w.pair.Current = sample
}

// Pair returns the last two samples, or false before the first sample
func (w *Watcher[T]) Pair() (Pair[T], bool) {
	return w.pair, w.valid
}

// Current returns the latest sample, or false before the first sample
func (w *Watcher[T]) Current() (T, bool) {
	return w.pair.Current, w.valid
}

// Reset forgets every sample
func (w *Watcher[T]) Reset() {
	*w = Watcher[T]{}
}
