// File: core/deque/deque.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Chase-Lev work-stealing deque, split into an owner handle (Push/Pop,
// single-threaded by construction) and cloneable thief handles (Steal,
// safe from any thread). Owner works the bottom end LIFO, thieves take
// from the top end FIFO, which keeps recursive sub-tasks cache-local
// on the owning thread.
//
// Memory ordering: Go's sync/atomic operations are sequentially
// consistent, which satisfies every fence the original algorithm
// requires. The element slots are atomic pointers so that a stale
// thief read after a buffer wrap can never observe a torn value; the
// CAS on top decides the winner before any stale element escapes.

package deque

import "sync/atomic"

// Result classifies the outcome of a Steal attempt.
type Result int

const (
	// Empty means there was nothing to take.
	Empty Result = iota

	// Abort means the thief lost a race for an element; the caller
	// should move on to the next victim rather than retry this one.
	Abort

	// Data means an element was stolen.
	Data
)

const initialCapacity = 32

// circularArray is the backing store. It is immutable after creation;
// growth allocates a fresh array and publishes it atomically.
type circularArray[T any] struct {
	capacity int64
	slots    []atomic.Pointer[T]
}

func newCircularArray[T any](capacity int64) *circularArray[T] {
	return &circularArray[T]{
		capacity: capacity,
		slots:    make([]atomic.Pointer[T], capacity),
	}
}

func (a *circularArray[T]) slot(index int64) *atomic.Pointer[T] {
	return &a.slots[index%a.capacity]
}

// deque holds the shared state. top is the steal end (advanced by CAS
// from any thread), bottom is the owner end. Padding keeps the two
// contended words on separate cache lines.
type deque[T any] struct {
	top    atomic.Int64
	_      [64]byte
	bottom atomic.Int64
	_      [64]byte
	array  atomic.Pointer[circularArray[T]]
}

// Worker is the owner handle. Only the owning thread may call Push,
// Pop or Len.
type Worker[T any] struct {
	d *deque[T]
}

// Stealer is the thief handle. Any thread may call Steal; handles are
// cheap to clone.
type Stealer[T any] struct {
	d *deque[T]
}

// New creates an empty deque and returns its two handles.
func New[T any]() (*Worker[T], *Stealer[T]) {
	d := &deque[T]{}
	d.array.Store(newCircularArray[T](initialCapacity))
	return &Worker[T]{d: d}, &Stealer[T]{d: d}
}

// Clone returns an independent thief handle to the same deque.
func (s *Stealer[T]) Clone() *Stealer[T] {
	return &Stealer[T]{d: s.d}
}

// Push appends v at the bottom end. Owner only.
func (w *Worker[T]) Push(v *T) {
	d := w.d
	b := d.bottom.Load()
	t := d.top.Load()
	a := d.array.Load()

	if b-t >= a.capacity-1 {
		a = grow(a, b, t)
		d.array.Store(a)
	}

	a.slot(b).Store(v)
	// The slot store above is sequenced before this bottom store, so a
	// thief that observes the new bottom also observes the element.
	d.bottom.Store(b + 1)
}

// Pop removes and returns the most recently pushed element, or nil.
// Owner only. A nil return immediately after a matching Push is not an
// error: a thief may have won the race for that exact element.
func (w *Worker[T]) Pop() *T {
	d := w.d
	b := d.bottom.Load() - 1
	a := d.array.Load()
	d.bottom.Store(b)

	t := d.top.Load()
	if t > b {
		// Deque was empty; restore bottom.
		d.bottom.Store(b + 1)
		return nil
	}

	v := a.slot(b).Load()
	if t == b {
		// Last element: race the thieves for it via CAS on top.
		if !d.top.CompareAndSwap(t, t+1) {
			v = nil
		}
		d.bottom.Store(b + 1)
	}
	return v
}

// Len returns a snapshot of the number of queued elements. Owner only;
// the value is exact between the owner's own operations.
func (w *Worker[T]) Len() int {
	d := w.d
	n := d.bottom.Load() - d.top.Load()
	if n < 0 {
		n = 0
	}
	return int(n)
}

// Steal attempts to take the oldest element from the top end.
func (s *Stealer[T]) Steal() (*T, Result) {
	d := s.d
	t := d.top.Load()
	b := d.bottom.Load()
	if t >= b {
		return nil, Empty
	}

	a := d.array.Load()
	v := a.slot(t).Load()
	if !d.top.CompareAndSwap(t, t+1) {
		// Lost to another thief or to the owner's last-element Pop.
		return nil, Abort
	}
	return v, Data
}

func grow[T any](old *circularArray[T], bottom, top int64) *circularArray[T] {
	a := newCircularArray[T](old.capacity * 2)
	for i := top; i < bottom; i++ {
		a.slot(i).Store(old.slot(i).Load())
	}
	return a
}
