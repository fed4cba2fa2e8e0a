package reactive

// Slice wraps Signal[[]T] with copy-on-write helpers. Every mutation
// replaces the stored slice; elements already handed out to readers are
// never modified in place. That discipline is what lets widget render
// code hold entry snapshots while the loop keeps mutating the list.
type Slice[T any] struct {
	*Signal[[]T]
}

// NewSlice creates a slice signal. A nil initial becomes an empty slice.
func NewSlice[T any](initial []T) *Slice[T] {
	if initial == nil {
		initial = []T{}
	}
	return &Slice[T]{NewSignal(initial)}
}

// Append adds item to the end of the slice.
func (s *Slice[T]) Append(item T) {
	s.Update(func(items []T) []T {
		return append(items, item)
	})
}

// Len returns the current length, subscribing the tracking listener.
func (s *Slice[T]) Len() int {
	return len(s.Get())
}

// Items returns a copy of the current slice without subscribing.
// Callers may mutate the returned slice freely.
func (s *Slice[T]) Items() []T {
	items := s.Peek()
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// Find returns the first element satisfying pred, without subscribing.
func (s *Slice[T]) Find(pred func(T) bool) (T, bool) {
	for _, item := range s.Peek() {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// UpdateWhere replaces every element satisfying pred with fn(element).
// The backing slice is copied before any element is rewritten. Reports
// whether at least one element matched.
func (s *Slice[T]) UpdateWhere(pred func(T) bool, fn func(T) T) bool {
	matched := false
	s.Update(func(items []T) []T {
		var out []T
		for i, item := range items {
			if !pred(item) {
				continue
			}
			if out == nil {
				out = make([]T, len(items))
				copy(out, items)
			}
			out[i] = fn(item)
			matched = true
		}
		if out == nil {
			return items
		}
		return out
	})
	return matched
}

// RemoveWhere deletes every element satisfying pred, returning the number
// removed.
func (s *Slice[T]) RemoveWhere(pred func(T) bool) int {
	removed := 0
	s.Update(func(items []T) []T {
		out := make([]T, 0, len(items))
		for _, item := range items {
			if pred(item) {
				removed++
				continue
			}
			out = append(out, item)
		}
		if removed == 0 {
			return items
		}
		return out
	})
	return removed
}

// Clear removes all elements.
func (s *Slice[T]) Clear() {
	s.Set([]T{})
}
