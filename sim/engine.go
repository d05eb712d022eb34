package sim

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/linesim-go/sim/emit"
)

// pipelineRetryMinutes is how long the pipeline controller backs off when
// the first step's worker demand cannot currently be met.
const pipelineRetryMinutes = 10

// Simulation is one configured run of the assembly line: a validated process
// graph, a worker pool, an equipment manager, and the cooperative kernel
// that drives them. Create it with New, run it once with Run.
type Simulation struct {
	id        string
	cfg       Config
	graph     *ProcessGraph
	kernel    *Kernel
	workers   *WorkerPool
	equipment *EquipmentManager
	collector *Collector
	rng       *rand.Rand
	seed      int64
	hooks     runHooks

	engineStarts     map[int]float64
	engineEnds       map[int]float64
	enginesCompleted int
}

// New builds a Simulation from a process definition and a run configuration.
// The definition is validated (acyclicity, predecessor resolution, node
// parameter ranges) and the configuration checked; either failing returns
// the error directly so callers can surface it, or via Run's FAILED-result
// wrapper.
func New(def *Definition, cfg Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	graph, err := NewProcessGraph(def)
	if err != nil {
		return nil, err
	}

	settings := defaultSettings()
	for _, opt := range opts {
		if err := opt(&settings); err != nil {
			return nil, err
		}
	}

	id := settings.simID
	if id == "" {
		id = uuid.NewString()
	}

	kernel := NewKernel()
	collector := NewCollector(graph)

	var policy RestPolicy = restPolicyFromConfig(&cfg)
	if settings.restPolicy != nil {
		policy = settings.restPolicy
	}

	s := &Simulation{
		id:           id,
		cfg:          cfg,
		graph:        graph,
		kernel:       kernel,
		workers:      NewWorkerPool(kernel, cfg.NumWorkers, policy, collector),
		equipment:    NewEquipmentManager(kernel, cfg.CriticalEquipment),
		collector:    collector,
		engineStarts: make(map[int]float64),
		engineEnds:   make(map[int]float64),
	}

	if settings.randSource != nil {
		s.rng = rand.New(settings.randSource) // #nosec G404 -- injected deterministic source
		if cfg.RandomSeed != nil {
			s.seed = *cfg.RandomSeed
		}
	} else {
		s.rng, s.seed = newRNG(cfg.RandomSeed, id)
	}

	s.hooks = runHooks{runID: id, kernel: kernel, emitter: settings.emitter, metrics: settings.metrics}
	s.workers.hooks = s.hooks
	return s, nil
}

// Run executes the simulation to its deadline and assembles the result.
// Simulated runs complete quickly regardless of the simulated span; the
// context is honored at the kernel boundary, and a run cancelled before the
// kernel stops returns the context's error instead of a result.
//
// Run may be called once per Simulation.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	startedAt := time.Now()
	deadline := s.cfg.DeadlineMinutes()

	s.hooks.simStarted(s.cfg)
	s.kernel.Spawn(func(p *Proc) {
		s.controller(p, deadline)
	})
	s.kernel.RunUntil(deadline)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := s.buildResult(startedAt)
	s.hooks.simFinished(res)
	if s.hooks.emitter != nil {
		_ = s.hooks.emitter.Flush(ctx)
	}
	return res, nil
}

// controller is the pipeline controller Proc. In pipeline mode it admits
// successive engines, gated on the first step's worker demand, up to the
// admission cap; otherwise it launches exactly one engine.
func (s *Simulation) controller(p *Proc, deadline float64) {
	if !s.cfg.PipelineMode {
		s.startEngine(p, 1)
		return
	}

	starts := s.graph.StartNodes()
	if len(starts) == 0 {
		return
	}
	first := starts[0]

	for engineID := 1; engineID <= s.cfg.maxEngines(); {
		if p.Now() >= deadline {
			return
		}
		if s.workers.Available() >= first.RequiredWorkers {
			s.startEngine(p, engineID)
			engineID++
			p.Sleep(0.5 * first.StdDuration)
		} else {
			p.Sleep(pipelineRetryMinutes)
		}
	}
}

// startEngine launches the engine Proc for one product unit.
func (s *Simulation) startEngine(p *Proc, engineID int) {
	s.engineStarts[engineID] = p.Now()
	s.hooks.engineStarted(engineID)
	p.Spawn(func(ep *Proc) {
		s.runEngine(ep, engineID)
	})
}

// runEngine drives one unit through the DAG: repeatedly launch every ready
// step, then park until some executor completes. Completion of the last step
// records the unit's end time. A unit still in flight when the kernel stops
// simply never records one.
func (s *Simulation) runEngine(p *Proc, engineID int) {
	completed := make(map[string]bool, s.graph.Count())
	running := make(map[string]bool)
	taskDone := s.kernel.NewSignal()

	for len(completed) < s.graph.Count() {
		for _, node := range s.graph.Ready(completed) {
			if running[node.StepID] {
				continue
			}
			running[node.StepID] = true
			t := &taskRun{
				sim:      s,
				engineID: engineID,
				node:     node,
			}
			stepID := node.StepID
			t.onDone = func() {
				delete(running, stepID)
				completed[stepID] = true
				taskDone.Fire()
			}
			p.Spawn(t.run)
		}
		// Executors only run once this Proc parks, so no completion can slip
		// in between the readiness check and the wait.
		p.Wait(taskDone)
	}

	s.engineEnds[engineID] = p.Now()
	s.enginesCompleted++
	s.hooks.engineFinished(engineID, p.Now()-s.engineStarts[engineID])
}

// buildResult assembles the Result from the collector, the pools, and the
// per-engine bookkeeping.
func (s *Simulation) buildResult(startedAt time.Time) *Result {
	simDuration := s.kernel.Now()

	var cycleSum float64
	for id, end := range s.engineEnds {
		cycleSum += end - s.engineStarts[id]
	}
	avgCycle := 0.0
	if s.enginesCompleted > 0 {
		avgCycle = cycleSum / float64(s.enginesCompleted)
	}

	wstats, human := workerStats(s.workers.Workers(), simDuration)

	return &Result{
		SimID:                 s.id,
		Status:                StatusCompleted,
		Config:                s.cfg,
		RandomSeed:            s.seed,
		SimDuration:           simDuration,
		EnginesCompleted:      s.enginesCompleted,
		TargetAchievementRate: float64(s.enginesCompleted) / float64(s.cfg.TargetOutput),
		AvgCycleTime:          avgCycle,
		WorkerStats:           wstats,
		EquipmentStats:        s.equipment.Stats(simDuration),
		QualityStats:          s.collector.Quality(),
		HumanFactors:          human,
		Events:                s.collector.Events(),
		TimeMapping:           s.cfg.timeMapping(),
		StartedAt:             startedAt,
		FinishedAt:            time.Now(),
	}
}

// Run builds and executes a simulation in one call. Configuration and graph
// errors do not abort with a bare error: they come back as a FAILED Result
// carrying the error text, alongside the error itself, so callers can treat
// the result stream uniformly.
func Run(ctx context.Context, def *Definition, cfg Config, opts ...Option) (*Result, error) {
	s, err := New(def, cfg, opts...)
	if err != nil {
		return &Result{
			SimID:      uuid.NewString(),
			Status:     StatusFailed,
			Error:      err.Error(),
			Config:     cfg,
			StartedAt:  time.Now(),
			FinishedAt: time.Now(),
		}, err
	}
	return s.Run(ctx)
}

// ComparisonResult pairs the outcomes of one definition run twice: with the
// configured rest policy and with rest disabled. The seed, configuration,
// and graph are identical, so differences isolate the cost of
// rest.
type ComparisonResult struct {
	WithRest    *Result `json:"with_rest"`
	WithoutRest *Result `json:"without_rest"`
}

// RunComparison executes the A/B pair. Both runs share the configuration's
// seed; when no seed is configured, the first run's derived seed is reused
// for the second so the pair stays comparable.
func RunComparison(ctx context.Context, def *Definition, cfg Config, opts ...Option) (*ComparisonResult, error) {
	withRest, err := Run(ctx, def, cfg, opts...)
	if err != nil {
		return nil, err
	}

	noRestCfg := cfg
	if noRestCfg.RandomSeed == nil {
		seed := withRest.RandomSeed
		noRestCfg.RandomSeed = &seed
	}
	noRestOpts := append(append([]Option(nil), opts...), WithRestPolicy(NoRest{}))
	withoutRest, err := Run(ctx, def, noRestCfg, noRestOpts...)
	if err != nil {
		return nil, err
	}
	return &ComparisonResult{WithRest: withRest, WithoutRest: withoutRest}, nil
}

// runHooks fans simulation lifecycle notifications out to the configured
// emitter and metrics collector. The zero value is inert, so engine code
// calls hooks unconditionally.
type runHooks struct {
	runID   string
	kernel  *Kernel
	emitter emit.Emitter
	metrics *PrometheusMetrics
}

func (h runHooks) emit(engineID int, stepID, msg string, meta map[string]interface{}) {
	if h.emitter == nil {
		return
	}
	h.emitter.Emit(emit.Event{
		RunID:    h.runID,
		EngineID: engineID,
		StepID:   stepID,
		Time:     h.kernel.Now(),
		Msg:      msg,
		Meta:     meta,
	})
}

func (h runHooks) simStarted(cfg Config) {
	h.emit(0, "", "sim_start", map[string]interface{}{
		"num_workers":   cfg.NumWorkers,
		"target_output": cfg.TargetOutput,
		"pipeline_mode": cfg.PipelineMode,
	})
}

func (h runHooks) simFinished(res *Result) {
	h.emit(0, "", "sim_complete", map[string]interface{}{
		"engines_completed": res.EnginesCompleted,
		"sim_duration":      res.SimDuration,
	})
	if h.metrics != nil {
		h.metrics.SetSimDuration(res.SimDuration)
	}
}

func (h runHooks) engineStarted(engineID int) {
	h.emit(engineID, "", "engine_start", nil)
	if h.metrics != nil {
		h.metrics.EngineStarted()
	}
}

func (h runHooks) engineFinished(engineID int, cycleTime float64) {
	h.emit(engineID, "", "engine_complete", map[string]interface{}{"cycle_time": cycleTime})
	if h.metrics != nil {
		h.metrics.EngineCompleted(cycleTime)
	}
}

func (h runHooks) taskStarted(engineID int, stepID string, reworkCount int) {
	h.emit(engineID, stepID, "task_start", map[string]interface{}{"rework_count": reworkCount})
}

func (h runHooks) taskFinished(engineID int, stepID string, eventType EventType, duration float64) {
	h.emit(engineID, stepID, "task_complete", map[string]interface{}{
		"event_type": string(eventType),
		"duration":   duration,
	})
	if h.metrics != nil {
		h.metrics.RecordTask(eventType, duration)
	}
}

func (h runHooks) waited(engineID int, stepID string, waitMinutes float64) {
	h.emit(engineID, stepID, "task_wait", map[string]interface{}{"wait_minutes": waitMinutes})
	if h.metrics != nil {
		h.metrics.RecordWait(waitMinutes)
	}
}

func (h runHooks) restStarted(engineID, workerID int, restMinutes float64) {
	h.emit(engineID, "", "worker_rest", map[string]interface{}{
		"worker_id":    workerID,
		"rest_minutes": restMinutes,
	})
	if h.metrics != nil {
		h.metrics.RecordRest(restMinutes)
	}
}
