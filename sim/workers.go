package sim

// Fatigue model constants: accumulation per unit of load and minute worked,
// and decay per minute rested.
const (
	fatiguePerLoadMinute = 0.1
	fatigueDecayPerRest  = 2.0
	fatigueMax           = 100.0
)

// workerState tracks what a worker is doing right now.
type workerState int

const (
	workerFree workerState = iota
	workerAssigned
	workerResting
)

// FatiguePoint is one sample of a worker's fatigue trajectory.
type FatiguePoint struct {
	Time  float64 `json:"time"`
	Level float64 `json:"level"`
}

// Worker is one member of the interchangeable worker pool. Its state is
// mutated only by the WorkerPool, and only between kernel suspension points.
type Worker struct {
	ID                    int
	FatigueLevel          float64
	ContinuousWorkMinutes float64
	HighIntensityCount    int
	TotalWorkTime         float64
	TotalRestTime         float64
	TasksCompleted        int
	FatigueHistory        []FatiguePoint

	state workerState
}

// recordFatigue appends the current fatigue level to the history.
func (w *Worker) recordFatigue(now float64) {
	w.FatigueHistory = append(w.FatigueHistory, FatiguePoint{Time: now, Level: w.FatigueLevel})
}

// RestPolicy decides whether a worker must rest after releasing a task, and
// for how long. The comparison engine swaps in NoRest to run the identical
// simulation with rest disabled.
type RestPolicy interface {
	// RestDuration returns the rest length in minutes for a worker that just
	// finished a task of the given workload, or zero for no rest.
	RestDuration(w *Worker, workLoad int) float64
}

// StandardRest implements the two-rule rest policy:
//
//   - Rule A (time-triggered): a worker whose continuous work minutes have
//     reached TimeThreshold rests for DurationTime minutes.
//   - Rule B (load-triggered): a worker whose just-completed task had a
//     workload score of at least LoadThreshold rests for DurationLoad
//     minutes.
//
// When both rules fire the worker rests once, for the longer of the two
// durations. A zero threshold disables the corresponding rule.
type StandardRest struct {
	TimeThreshold float64
	DurationTime  float64
	LoadThreshold int
	DurationLoad  float64
}

// RestDuration implements RestPolicy.
func (r StandardRest) RestDuration(w *Worker, workLoad int) float64 {
	var rest float64
	if r.TimeThreshold > 0 && w.ContinuousWorkMinutes >= r.TimeThreshold {
		rest = r.DurationTime
	}
	if r.LoadThreshold > 0 && workLoad >= r.LoadThreshold {
		if r.DurationLoad > rest {
			rest = r.DurationLoad
		}
	}
	return rest
}

// restPolicyFromConfig builds the standard policy from the run configuration.
func restPolicyFromConfig(cfg *Config) StandardRest {
	return StandardRest{
		TimeThreshold: cfg.RestTimeThreshold,
		DurationTime:  cfg.RestDurationTime,
		LoadThreshold: cfg.RestLoadThreshold,
		DurationLoad:  cfg.RestDurationLoad,
	}
}

// NoRest is the rest policy of the comparison engine: workers never rest.
type NoRest struct{}

// RestDuration implements RestPolicy.
func (NoRest) RestDuration(*Worker, int) float64 { return 0 }

// workerWaiter is one parked Acquire call. Requests are granted strictly in
// arrival order; a large request at the head of the queue blocks smaller
// ones behind it until it can be satisfied.
type workerWaiter struct {
	n       int
	granted []int
	sig     *Signal
}

// WorkerPool grants exclusive multi-worker reservations and enforces the
// rest policy. All mutation happens inside the cooperative kernel.
type WorkerPool struct {
	k         *Kernel
	workers   []*Worker
	waiters   []*workerWaiter
	policy    RestPolicy
	collector *Collector
	hooks     runHooks
}

// NewWorkerPool creates a pool of n identical workers.
func NewWorkerPool(k *Kernel, n int, policy RestPolicy, collector *Collector) *WorkerPool {
	workers := make([]*Worker, n)
	for i := range workers {
		workers[i] = &Worker{ID: i + 1}
	}
	return &WorkerPool{k: k, workers: workers, policy: policy, collector: collector}
}

// Available returns the number of workers neither holding an assignment nor
// resting.
func (wp *WorkerPool) Available() int {
	n := 0
	for _, w := range wp.workers {
		if w.state == workerFree {
			n++
		}
	}
	return n
}

// Workers returns the pool's workers. Callers must treat them as read-only.
func (wp *WorkerPool) Workers() []*Worker { return wp.workers }

// Acquire reserves n currently-available workers and returns their ids in
// ascending order. When fewer than n are free the calling Proc is enqueued
// FIFO and suspended until the request can be satisfied in full; partial
// grants never happen.
func (wp *WorkerPool) Acquire(p *Proc, n int) []int {
	if len(wp.waiters) == 0 && wp.Available() >= n {
		return wp.take(n)
	}
	waiter := &workerWaiter{n: n, sig: wp.k.NewSignal()}
	wp.waiters = append(wp.waiters, waiter)
	p.Wait(waiter.sig)
	return waiter.granted
}

// take marks the n lowest-id free workers as assigned and returns their ids.
func (wp *WorkerPool) take(n int) []int {
	ids := make([]int, 0, n)
	for _, w := range wp.workers {
		if w.state == workerFree {
			w.state = workerAssigned
			ids = append(ids, w.ID)
			if len(ids) == n {
				break
			}
		}
	}
	return ids
}

// Release frees the given workers after a task segment of the given duration
// and workload, updating per-worker counters and fatigue, then applying the
// rest policy to each. Workers that must rest become unavailable for the
// rest's length; engineID tags the resulting rest events on the timeline.
//
// Rest is evaluated only here, between tasks; a running task is never
// interrupted.
func (wp *WorkerPool) Release(p *Proc, engineID int, ids []int, duration float64, workLoad int) {
	now := p.Now()
	for _, id := range ids {
		w := wp.worker(id)
		w.TotalWorkTime += duration
		w.ContinuousWorkMinutes += duration
		w.TasksCompleted++
		if wp.restLoadThreshold() > 0 && workLoad >= wp.restLoadThreshold() {
			w.HighIntensityCount++
		}
		w.FatigueLevel += fatiguePerLoadMinute * float64(workLoad) * duration
		if w.FatigueLevel > fatigueMax {
			w.FatigueLevel = fatigueMax
		}
		w.recordFatigue(now)

		rest := wp.policy.RestDuration(w, workLoad)
		if rest > 0 {
			w.state = workerResting
			wp.startRest(p, engineID, w, rest)
		} else {
			w.state = workerFree
		}
	}
	wp.grant()
}

// restLoadThreshold exposes the standard policy's load threshold for the
// high-intensity counter; other policies count nothing.
func (wp *WorkerPool) restLoadThreshold() int {
	if std, ok := wp.policy.(StandardRest); ok {
		return std.LoadThreshold
	}
	return 0
}

// startRest spawns the rest period for w as its own Proc. The rest event
// closes when the period ends; a rest cut off by the deadline is truncated
// and never appears on the timeline.
func (wp *WorkerPool) startRest(p *Proc, engineID int, w *Worker, rest float64) {
	start := p.Now()
	wp.hooks.restStarted(engineID, w.ID, rest)
	p.Spawn(func(rp *Proc) {
		rp.Sleep(rest)
		w.TotalRestTime += rest
		w.ContinuousWorkMinutes = 0
		w.FatigueLevel -= fatigueDecayPerRest * rest
		if w.FatigueLevel < 0 {
			w.FatigueLevel = 0
		}
		w.recordFatigue(rp.Now())
		w.state = workerFree
		wp.collector.Append(Event{
			EngineID:  engineID,
			Type:      EventRest,
			StartTime: start,
			EndTime:   rp.Now(),
			WorkerIDs: []int{w.ID},
		})
		wp.grant()
	})
}

// grant satisfies queued requests strictly in FIFO order, stopping at the
// first request that cannot be fully granted.
func (wp *WorkerPool) grant() {
	for len(wp.waiters) > 0 {
		head := wp.waiters[0]
		if wp.Available() < head.n {
			return
		}
		head.granted = wp.take(head.n)
		wp.waiters = wp.waiters[1:]
		head.sig.Fire()
	}
}

// worker looks up a worker by id.
func (wp *WorkerPool) worker(id int) *Worker {
	return wp.workers[id-1]
}
