// Package deque tests the work-stealing deque.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package deque

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

func TestDeque_PushPopLIFO(t *testing.T) {
	w, _ := New[int]()

	vals := []int{1, 2, 3}
	for i := range vals {
		w.Push(&vals[i])
	}

	if w.Len() != 3 {
		t.Fatalf("expected length 3, got %d", w.Len())
	}

	for i := 2; i >= 0; i-- {
		v := w.Pop()
		if v == nil {
			t.Fatalf("expected value at %d, got nil", i)
		}
		if *v != vals[i] {
			t.Errorf("expected %d, got %d", vals[i], *v)
		}
	}

	if v := w.Pop(); v != nil {
		t.Errorf("expected nil from empty deque, got %d", *v)
	}
}

func TestDeque_StealFIFO(t *testing.T) {
	w, s := New[int]()

	vals := []int{10, 20, 30}
	for i := range vals {
		w.Push(&vals[i])
	}

	for i := 0; i < 3; i++ {
		v, res := s.Steal()
		if res != Data {
			t.Fatalf("expected Data at %d, got %v", i, res)
		}
		if *v != vals[i] {
			t.Errorf("expected %d, got %d", vals[i], *v)
		}
	}

	if _, res := s.Steal(); res != Empty {
		t.Errorf("expected Empty after draining, got %v", res)
	}
}

func TestDeque_Grow(t *testing.T) {
	w, s := New[int]()

	n := initialCapacity * 4
	vals := make([]int, n)
	for i := range vals {
		vals[i] = i
		w.Push(&vals[i])
	}

	if w.Len() != n {
		t.Fatalf("expected length %d after growth, got %d", n, w.Len())
	}

	// Thieves see the oldest elements regardless of buffer swaps.
	v, res := s.Steal()
	if res != Data || *v != 0 {
		t.Fatalf("expected to steal 0, got %v (%v)", v, res)
	}

	for i := n - 1; i >= 1; i-- {
		v := w.Pop()
		if v == nil || *v != i {
			t.Fatalf("expected %d from owner end, got %v", i, v)
		}
	}
}

func TestDeque_CloneStealerSharesState(t *testing.T) {
	w, s := New[int]()
	c := s.Clone()

	v := 7
	w.Push(&v)

	got, res := c.Steal()
	if res != Data || *got != 7 {
		t.Fatalf("cloned stealer should see pushed value, got %v (%v)", got, res)
	}
}

// TestDeque_StealStress verifies that every element is taken exactly
// once when the owner and several thieves drain the deque together.
func TestDeque_StealStress(t *testing.T) {
	const (
		thieves = 4
		items   = 100000
	)

	w, s := New[int]()
	vals := make([]int, items)
	taken := make([]atomic.Int32, items)

	var consumed atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < thieves; i++ {
		wg.Add(1)
		go func(st *Stealer[int]) {
			defer wg.Done()
			for consumed.Load() < items {
				v, res := st.Steal()
				if res != Data {
					runtime.Gosched()
					continue
				}
				if taken[*v].Add(1) != 1 {
					t.Errorf("element %d stolen twice", *v)
					return
				}
				consumed.Add(1)
			}
		}(s.Clone())
	}

	// Owner interleaves pushes with pops, like a worker rebalancing.
	for i := 0; i < items; i++ {
		vals[i] = i
		w.Push(&vals[i])
		if i%3 == 0 {
			if v := w.Pop(); v != nil {
				if taken[*v].Add(1) != 1 {
					t.Errorf("element %d taken twice", *v)
				}
				consumed.Add(1)
			}
		}
	}
	// Owner drains what the thieves have not claimed yet.
	for consumed.Load() < items {
		v := w.Pop()
		if v == nil {
			runtime.Gosched()
			continue
		}
		if taken[*v].Add(1) != 1 {
			t.Errorf("element %d taken twice", *v)
		}
		consumed.Add(1)
	}

	wg.Wait()

	for i := range taken {
		if taken[i].Load() != 1 {
			t.Fatalf("element %d resolved %d times", i, taken[i].Load())
		}
	}
}
