package sequence

// Window is a fixed-capacity trailing window. Pushing past capacity evicts
// the oldest element first, so the window always holds the most recent
// values in insertion order.
type Window[T any] struct {
	capacity int
	items    []T
}

func NewWindow[T any](capacity int) *Window[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Window[T]{
		capacity: capacity,
		items:    make([]T, 0, capacity),
	}
}

// Push appends v, evicting the oldest element if the window is full.
func (w *Window[T]) Push(v T) {
	if len(w.items) == w.capacity {
		copy(w.items, w.items[1:])
		w.items[len(w.items)-1] = v
		return
	}
	w.items = append(w.items, v)
}

func (w *Window[T]) Len() int {
	return len(w.items)
}

func (w *Window[T]) Cap() int {
	return w.capacity
}

func (w *Window[T]) IsEmpty() bool {
	return len(w.items) == 0
}

// Values returns the window contents oldest first. The returned slice
// aliases the window's storage; callers must not retain it across pushes.
func (w *Window[T]) Values() []T {
	return w.items
}

// Map rewrites every element in place.
func (w *Window[T]) Map(fn func(T) T) {
	for i, v := range w.items {
		w.items[i] = fn(v)
	}
}

func (w *Window[T]) Clear() {
	w.items = w.items[:0]
}
