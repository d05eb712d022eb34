// Package sim provides the discrete-event simulation engine for assembly
// line modeling: a cooperative scheduling kernel, a DAG task scheduler,
// contended worker and equipment pools, and result aggregation.
package sim

import (
	"container/heap"
)

// Kernel is a single-logical-thread cooperative scheduler for simulated time.
//
// Every simulated activity (engine processes, task executors, the pipeline
// controller, worker rest periods) runs as a Proc. Exactly one Proc executes
// at any moment; all others are parked waiting for a timer or a Signal. This
// makes shared-state mutation safe between suspension points without locks
// and keeps runs fully deterministic.
//
// Determinism guarantees:
//   - Pending wakes are ordered by (time, enqueue sequence): wakes scheduled
//     for the same instant fire in FIFO order of their enqueue.
//   - Signal waiters are released in FIFO order of their arrival.
//
// Procs are backed by goroutines, but a strict handshake ensures the kernel
// and at most one Proc are ever runnable: the kernel resumes a Proc and
// blocks until that Proc parks again or finishes.
type Kernel struct {
	now      float64
	seq      int64
	pending  wakeHeap
	ctl      chan struct{}
	live     []*Proc
	stopping bool
}

// NewKernel creates a Kernel with the clock at zero.
func NewKernel() *Kernel {
	k := &Kernel{
		pending: make(wakeHeap, 0),
		ctl:     make(chan struct{}),
	}
	heap.Init(&k.pending)
	return k
}

// Now returns the current simulated time in minutes.
func (k *Kernel) Now() float64 { return k.now }

// wake is a scheduled resume of a parked Proc.
type wake struct {
	at  float64
	seq int64
	p   *Proc
}

// wakeHeap orders wakes by time, breaking ties by enqueue sequence so that
// simultaneous wakes fire in FIFO order.
type wakeHeap []wake

func (h wakeHeap) Len() int { return len(h) }

func (h wakeHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}

func (h wakeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *wakeHeap) Push(x interface{}) {
	*h = append(*h, x.(wake))
}

func (h *wakeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// Proc is a cooperative process managed by a Kernel. All suspension
// primitives (Sleep, Wait) must be called from within the Proc's own
// function; calling them from outside the kernel's control is a programming
// error and will deadlock.
type Proc struct {
	k      *Kernel
	resume chan struct{}
	done   bool
}

// stopSignal is panicked through a Proc when the kernel shuts down while the
// Proc is parked. The Spawn wrapper recovers it so truncated activities
// unwind without running any further logic (and without emitting events).
type stopSignal struct{}

// Spawn registers fn as a new Proc. The Proc becomes runnable immediately at
// the current simulated time and will first execute when the caller yields
// control (or, outside a run, when RunUntil starts).
func (k *Kernel) Spawn(fn func(p *Proc)) *Proc {
	p := &Proc{k: k, resume: make(chan struct{})}
	k.live = append(k.live, p)
	k.schedule(p, k.now)

	go func() {
		<-p.resume
		defer func() {
			p.done = true
			if r := recover(); r != nil {
				if _, ok := r.(stopSignal); !ok {
					panic(r)
				}
			}
			k.ctl <- struct{}{}
		}()
		if k.stopping {
			panic(stopSignal{})
		}
		fn(p)
	}()
	return p
}

// schedule enqueues a wake for p at time at, tagged with the next sequence
// number for FIFO tie-breaking.
func (k *Kernel) schedule(p *Proc, at float64) {
	k.seq++
	heap.Push(&k.pending, wake{at: at, seq: k.seq, p: p})
}

// yield parks the calling Proc and hands control back to the kernel. The
// Proc resumes when the kernel processes one of its scheduled wakes. If the
// kernel is shutting down, the Proc unwinds via stopSignal instead of
// returning.
func (p *Proc) yield() {
	p.k.ctl <- struct{}{}
	<-p.resume
	if p.k.stopping {
		panic(stopSignal{})
	}
}

// Now returns the current simulated time in minutes.
func (p *Proc) Now() float64 { return p.k.now }

// Sleep suspends the calling Proc for dt simulated minutes. Negative
// durations are treated as zero.
func (p *Proc) Sleep(dt float64) {
	if dt < 0 {
		dt = 0
	}
	p.k.schedule(p, p.k.now+dt)
	p.yield()
}

// Wait suspends the calling Proc until sig fires.
func (p *Proc) Wait(sig *Signal) {
	sig.waiters = append(sig.waiters, p)
	p.yield()
}

// Spawn registers a new Proc from within a running Proc.
func (p *Proc) Spawn(fn func(p *Proc)) *Proc {
	return p.k.Spawn(fn)
}

// Signal is a broadcast wake-up point. Procs park on it with Wait; a Fire
// releases every currently parked waiter at the current simulated time, in
// FIFO order of their arrival. Firing with no waiters is a no-op (Signals
// carry no memory, so checking shared state before waiting is the caller's
// responsibility).
type Signal struct {
	k       *Kernel
	waiters []*Proc
}

// NewSignal creates a Signal bound to the kernel's clock.
func (k *Kernel) NewSignal() *Signal {
	return &Signal{k: k}
}

// Fire wakes every Proc currently waiting on the signal. Must be called from
// within a running Proc or before the run starts.
func (s *Signal) Fire() {
	for _, w := range s.waiters {
		s.k.schedule(w, s.k.now)
	}
	s.waiters = s.waiters[:0]
}

// RunUntil advances simulated time by repeatedly resuming the earliest
// pending wake. It returns when the clock would pass deadline or when no
// scheduled wakes remain, whichever comes first. Wakes scheduled exactly at
// the deadline still run.
//
// After the loop ends, every still-parked Proc is unwound: in-flight
// activities are truncated and produce no further effects. The final clock
// value is available via Now and never exceeds deadline.
func (k *Kernel) RunUntil(deadline float64) {
	for k.pending.Len() > 0 {
		w := heap.Pop(&k.pending).(wake)
		if w.p.done {
			continue
		}
		if w.at > deadline {
			k.now = deadline
			break
		}
		if w.at > k.now {
			k.now = w.at
		}
		k.resumeProc(w.p)
	}
	k.shutdown()
}

// resumeProc hands control to p and blocks until p parks again or finishes.
func (k *Kernel) resumeProc(p *Proc) {
	p.resume <- struct{}{}
	<-k.ctl
}

// shutdown unwinds every Proc that is still parked so no goroutines outlive
// the run. Procs see stopSignal at their suspension point and exit without
// executing any further simulation logic.
func (k *Kernel) shutdown() {
	k.stopping = true
	for _, p := range k.live {
		if !p.done {
			k.resumeProc(p)
		}
	}
	k.live = nil
	k.pending = k.pending[:0]
}
