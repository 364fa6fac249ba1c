// Package history implements a linear, snapshot based undo/redo stack with
// burst coalescing for continuous edits such as dragging a node.
package history

import "time"

// DefaultWindow is the inactivity period that closes a burst.
const DefaultWindow = 200 * time.Millisecond

// Snapshot is a value the history can copy and compare.
type Snapshot[T any] interface {
	Clone() T
	Equal(T) bool
}

// Mode tells Record how to treat a change.
type Mode int

const (
	// Immediate pushes one entry per change.
	Immediate Mode = iota
	// Coalesce pushes only the first change of a burst.
	Coalesce
)

// History holds past and future snapshots. It is not safe for concurrent
// use; callers serialise access.
type History[T Snapshot[T]] struct {
	past   []T
	future []T

	window   time.Duration
	now      func() time.Time
	deadline time.Time
}

// Option configures a History.
type Option func(*options)

type options struct {
	window time.Duration
	now    func() time.Time
}

// WithWindow sets the burst window. Non-positive values keep the default.
func WithWindow(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.window = d
		}
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// New returns an empty History.
func New[T Snapshot[T]](opts ...Option) *History[T] {
	o := options{window: DefaultWindow, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &History[T]{window: o.window, now: o.now}
}

// Record is called with the state before and after a mutation. Equal
// snapshots record nothing. Otherwise prev is pushed and the redo stack is
// dropped, except inside an open Coalesce burst where the burst window is
// only extended. It reports whether an entry was pushed.
func (h *History[T]) Record(prev, next T, mode Mode) bool {
	if prev.Equal(next) {
		return false
	}
	if mode == Coalesce {
		now := h.now()
		open := h.burstOpen(now)
		h.deadline = now.Add(h.window)
		if open {
			return false
		}
		h.push(prev)
		return true
	}
	h.closeBurst()
	h.push(prev)
	return true
}

func (h *History[T]) push(s T) {
	h.past = append(h.past, s.Clone())
	h.future = nil
}

func (h *History[T]) burstOpen(now time.Time) bool {
	return !h.deadline.IsZero() && now.Before(h.deadline)
}

func (h *History[T]) closeBurst() {
	h.deadline = time.Time{}
}

// Undo pops the latest entry and hands it back for restoring; current goes
// to the front of the redo stack. ok is false when there is nothing to undo.
func (h *History[T]) Undo(current T) (restored T, ok bool) {
	if len(h.past) == 0 {
		return restored, false
	}
	h.closeBurst()
	last := len(h.past) - 1
	entry := h.past[last]
	h.past = h.past[:last]
	h.future = append([]T{current.Clone()}, h.future...)
	return entry.Clone(), true
}

// Redo is the mirror of Undo.
func (h *History[T]) Redo(current T) (restored T, ok bool) {
	if len(h.future) == 0 {
		return restored, false
	}
	h.closeBurst()
	entry := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, current.Clone())
	return entry.Clone(), true
}

// Reset drops both stacks and any open burst.
func (h *History[T]) Reset() {
	h.past = nil
	h.future = nil
	h.closeBurst()
}

// CloseBurst ends an open Coalesce burst so the next change pushes.
func (h *History[T]) CloseBurst() {
	h.closeBurst()
}

func (h *History[T]) CanUndo() bool { return len(h.past) > 0 }
func (h *History[T]) CanRedo() bool { return len(h.future) > 0 }

// Depth returns the sizes of the undo and redo stacks.
func (h *History[T]) Depth() (past, future int) {
	return len(h.past), len(h.future)
}
