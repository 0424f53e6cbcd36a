// Package history keeps a bounded undo log of immutable snapshots.
package history

// Log holds up to capacity snapshots. The newest entry is current; undo moves
// the pointer back without touching stored entries. A push after an undo
// discards the entries ahead of the pointer, so there is no redo.
type Log[T any] struct {
	entries  []T
	pos      int
	capacity int
}

// New returns a log holding initial as its only entry. Capacities below 1
// are raised to 1.
func New[T any](capacity int, initial T) *Log[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Log[T]{entries: []T{initial}, capacity: capacity}
}

// Push appends v as the current entry, evicting the oldest when full.
func (l *Log[T]) Push(v T) {
	l.entries = append(l.entries[:l.pos+1], v)
	if over := len(l.entries) - l.capacity; over > 0 {
		l.entries = append([]T(nil), l.entries[over:]...)
	}
	l.pos = len(l.entries) - 1
}

// Undo steps back one entry. It reports false, changing nothing, when
// already at the oldest entry.
func (l *Log[T]) Undo() (T, bool) {
	if l.pos == 0 {
		return l.entries[0], false
	}
	l.pos--
	return l.entries[l.pos], true
}

// Current returns the entry at the pointer.
func (l *Log[T]) Current() T { return l.entries[l.pos] }

// CanUndo reports whether Undo would move.
func (l *Log[T]) CanUndo() bool { return l.pos > 0 }

// Len returns the number of stored entries.
func (l *Log[T]) Len() int { return len(l.entries) }

// Steps returns how many undos are available.
func (l *Log[T]) Steps() int { return l.pos }

// Reset replaces the whole log with a single entry.
func (l *Log[T]) Reset(v T) {
	l.entries = []T{v}
	l.pos = 0
}
