// File: sched/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ThreadPool: the top-level coordinator. Owns the fixed worker set, the
// mutex-guarded injection FIFO for non-worker callers, and the global
// terminate/liveness bookkeeping. One condition variable doubles as the
// worker wake-up signal and the pool-wide idleness barrier.

package sched

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-sched/affinity"
	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/core/deque"
	"github.com/momentics/hioload-sched/core/latch"
)

var _ api.Pool = (*ThreadPool)(nil)

// threadInfo is the pool-side record of one worker.
type threadInfo struct {
	// primed fires once the worker has entered its main loop.
	primed *latch.LockLatch

	// terminated fires when the worker's main loop has exited.
	terminated *latch.LockLatch

	stealer *deque.Stealer[Ref]
}

type poolStats struct {
	injected atomic.Uint64
	stolen   atomic.Uint64
	executed atomic.Uint64
	aborted  atomic.Uint64
}

// ThreadPool runs a fixed set of work-stealing workers, each locked to
// its own OS thread. Construct with New, release with Terminate.
type ThreadPool struct {
	infos []threadInfo
	opts  options
	stats poolStats

	mu            sync.Mutex
	workAvailable *sync.Cond
	terminated    bool
	slavesAtWork  int
	injected      *queue.Queue // FIFO of *Ref, guarded by mu
}

// New creates a thread pool with numWorkers workers; numWorkers <= 0
// selects runtime.NumCPU(). New blocks until every worker is primed, so
// by the time it returns all workers are ready to receive work.
func New(numWorkers int, opts ...Option) *ThreadPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	p := &ThreadPool{
		infos:    make([]threadInfo, numWorkers),
		injected: queue.New(),
	}
	p.workAvailable = sync.NewCond(&p.mu)
	for _, opt := range opts {
		opt(&p.opts)
	}

	workers := make([]*deque.Worker[Ref], numWorkers)
	for i := range p.infos {
		w, s := deque.New[Ref]()
		workers[i] = w
		p.infos[i] = threadInfo{
			primed:     latch.NewLock(),
			terminated: latch.NewLock(),
			stealer:    s,
		}
	}

	for i := range p.infos {
		go p.mainLoop(i, workers[i])
	}

	// Wait for the worker threads to get up and running.
	for i := range p.infos {
		p.infos[i].primed.Wait()
	}

	if cs := p.opts.config; cs != nil {
		applySpinConfig(cs)
		cs.OnReload(func() { applySpinConfig(cs) })
	}
	if d := p.opts.probes; d != nil {
		p.RegisterProbes(d)
	}
	return p
}

// Len returns the number of workers.
func (p *ThreadPool) Len() int {
	return len(p.infos)
}

// Stats returns basic scheduling counters.
func (p *ThreadPool) Stats() map[string]int64 {
	p.mu.Lock()
	busy := p.slavesAtWork
	pending := p.injected.Length()
	p.mu.Unlock()
	return map[string]int64{
		"workers":        int64(p.Len()),
		"busy":           int64(busy),
		"pending_inject": int64(pending),
		"injected":       int64(p.stats.injected.Load()),
		"stolen":         int64(p.stats.stolen.Load()),
		"executed":       int64(p.stats.executed.Load()),
		"aborted":        int64(p.stats.aborted.Load()),
	}
}

// RegisterProbes exposes the pool through a debug registry.
func (p *ThreadPool) RegisterProbes(d api.Debug) {
	d.RegisterProbe("sched.pool.workers", func() any { return p.Len() })
	d.RegisterProbe("sched.pool.stats", func() any { return p.Stats() })
}

// Terminate shuts the pool down: not-yet-started injected tasks are
// resolved in Abort mode (their bodies never run but their waiters are
// released), every worker is woken, and the call blocks until all
// worker threads have exited. Tasks already dispatched to a worker run
// to completion. Idempotent; must not be called from a worker.
func (p *ThreadPool) Terminate() {
	var drained []*Ref
	p.mu.Lock()
	if !p.terminated {
		p.terminated = true
		for p.injected.Length() > 0 {
			drained = append(drained, p.injected.Remove().(*Ref))
		}
	}
	p.mu.Unlock()
	p.workAvailable.Broadcast()

	for _, r := range drained {
		p.stats.aborted.Add(1)
		r.Execute(api.Abort)
	}
	for i := range p.infos {
		p.infos[i].terminated.Wait()
	}
}

// inject hands tasks to the pool from outside the worker set. After
// termination the tasks are resolved in Abort mode instead, so the
// caller's latches still fire and its blocked call returns.
func (p *ThreadPool) inject(tasks ...*Ref) {
	p.mu.Lock()
	if p.terminated {
		p.mu.Unlock()
		for _, t := range tasks {
			p.stats.aborted.Add(1)
			t.Execute(api.Abort)
		}
		return
	}
	for _, t := range tasks {
		p.injected.Add(t)
	}
	p.stats.injected.Add(uint64(len(tasks)))
	p.mu.Unlock()
	p.workAvailable.Broadcast()
}

// startWorking marks a previously idle worker busy and lets the other
// idle workers re-check for newly generated sub-work.
func (p *ThreadPool) startWorking() {
	p.mu.Lock()
	p.slavesAtWork++
	p.mu.Unlock()
	p.workAvailable.Broadcast()
}

// waitForWork is the worker's idleness barrier. It returns an injected
// task, or (nil, false) when the worker should go try stealing because
// some peer is busy and may generate sub-work, or (nil, true) on
// termination. Only when the whole pool is idle does the worker sleep.
func (p *ThreadPool) waitForWork(wasActive bool) (*Ref, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if wasActive {
		p.slavesAtWork--
	}

	for {
		if p.terminated {
			return nil, true
		}

		// Injected work takes preference over stealing.
		if p.injected.Length() > 0 {
			t := p.injected.Remove().(*Ref)
			p.slavesAtWork++
			p.workAvailable.Broadcast()
			return t, false
		}

		if p.slavesAtWork > 0 {
			return nil, false
		}

		p.workAvailable.Wait()
	}
}

// mainLoop is one worker's whole life.
func (p *ThreadPool) mainLoop(index int, worker *deque.Worker[Ref]) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if p.opts.pinWorkers {
		_ = affinity.SetAffinity(index % runtime.NumCPU())
	}

	stealers := make([]*deque.Stealer[Ref], 0, len(p.infos)-1)
	for i := range p.infos {
		if i != index {
			stealers = append(stealers, p.infos[i].stealer.Clone())
		}
	}

	slave := newThreadSlave(index, worker, stealers)
	setCurrentSlave(slave)
	defer clearCurrentSlave()

	// Let the master know we are ready for work.
	p.infos[index].primed.Set()
	defer p.infos[index].terminated.Set()

	wasActive := false
	for {
		injected, terminate := p.waitForWork(wasActive)
		if terminate {
			break
		}
		if injected != nil {
			p.stats.executed.Add(1)
			injected.Execute(api.Execute)
			wasActive = true
			continue
		}

		if stolen := slave.stealTask(); stolen != nil {
			p.startWorking()
			if slave.spawnCount != 0 {
				panic(api.NewError(api.ErrCodeInternal, "worker deque not balanced at top level").
					WithContext("worker", index).
					WithContext("spawn_count", slave.spawnCount))
			}
			p.stats.stolen.Add(1)
			p.stats.executed.Add(1)
			stolen.Execute(api.Execute)
			slave.popSpawned(0)
			wasActive = true
		} else {
			wasActive = false
		}
	}
}
