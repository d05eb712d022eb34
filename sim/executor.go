package sim

// taskRun is the per-task cooperative process: acquire resources, do the
// work, release, and loop while inspections fail. One taskRun handles one
// (engine, step) pair.
type taskRun struct {
	sim      *Simulation
	engineID int
	node     *Node
	onDone   func()
}

// run executes the task to completion. It is the body of the executor Proc;
// if the deadline cuts it off mid-flight, it unwinds at a suspension point
// and no closing event is emitted for the open segment.
func (t *taskRun) run(p *Proc) {
	t.segment(p, 0)

	reworks := 0
	if t.node.OpType == OpMeasure && t.node.ReworkProb > 0 {
		for t.sim.rng.Float64() < t.node.ReworkProb {
			reworks++
			t.segment(p, reworks)
		}
	}

	t.onDone()
}

// segment performs one execution of the step: the first pass when reworkCount
// is zero, a rework otherwise. Resources are always acquired in the same
// order, workers first and then equipment in canonical name order, and
// released together at the segment's end, where the rest rules may
// immediately take the released workers away.
func (t *taskRun) segment(p *Proc, reworkCount int) {
	sim := t.sim
	node := t.node

	requested := p.Now()
	workerIDs := sim.workers.Acquire(p, node.RequiredWorkers)
	sim.equipment.Acquire(p, node.RequiredTools)
	started := p.Now()

	if started > requested {
		sim.collector.Append(Event{
			EngineID:  t.engineID,
			StepID:    node.StepID,
			TaskName:  node.TaskName,
			Type:      EventWaiting,
			StartTime: requested,
			EndTime:   started,
			WorkerIDs: workerIDs,
			Equipment: node.RequiredTools,
		})
		sim.hooks.waited(t.engineID, node.StepID, started-requested)
	}

	duration := sampleDuration(sim.rng, node.StdDuration, node.TimeVariance)
	sim.hooks.taskStarted(t.engineID, node.StepID, reworkCount)
	p.Sleep(duration)

	eventType := EventNormal
	if reworkCount > 0 {
		eventType = EventRework
	}
	sim.collector.Append(Event{
		EngineID:    t.engineID,
		StepID:      node.StepID,
		TaskName:    node.TaskName,
		Type:        eventType,
		StartTime:   started,
		EndTime:     p.Now(),
		WorkerIDs:   workerIDs,
		Equipment:   node.RequiredTools,
		ReworkCount: reworkCount,
	})
	sim.hooks.taskFinished(t.engineID, node.StepID, eventType, duration)

	sim.equipment.Release(node.RequiredTools, duration)
	sim.workers.Release(p, t.engineID, workerIDs, duration, node.WorkLoadScore)
}
