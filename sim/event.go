package sim

import "sort"

// EventType classifies a timeline event.
type EventType string

// Timeline event types.
const (
	// EventNormal is a first-pass execution of a step.
	EventNormal EventType = "NORMAL"

	// EventRework is a repeated execution of a measure step after a failed
	// inspection.
	EventRework EventType = "REWORK"

	// EventWaiting is the span a task spent blocked on workers or equipment
	// before it could run.
	EventWaiting EventType = "WAITING"

	// EventRest is a worker rest period between tasks.
	EventRest EventType = "REST"
)

// Event is one closed interval on the production timeline, in the shape the
// Gantt front end consumes. Events are appended once, when they close; an
// activity cut off by the simulation deadline produces no event.
type Event struct {
	EngineID    int       `json:"engine_id"`
	StepID      string    `json:"step_id"`
	TaskName    string    `json:"task_name"`
	Type        EventType `json:"event_type"`
	StartTime   float64   `json:"start_time"`
	EndTime     float64   `json:"end_time"`
	WorkerIDs   []int     `json:"worker_ids"`
	Equipment   []string  `json:"equipment_used"`
	ReworkCount int       `json:"rework_count"`
}

// Duration returns the event's length in minutes.
func (e *Event) Duration() float64 { return e.EndTime - e.StartTime }

// Collector accumulates closed timeline events during a run and derives the
// aggregate quality statistics afterwards. It is append-only while the
// kernel runs; nothing reads it until the run ends, so no synchronization is
// needed beyond the kernel's cooperative scheduling.
type Collector struct {
	graph  *ProcessGraph
	events []Event
}

// NewCollector creates a Collector for the given graph.
func NewCollector(g *ProcessGraph) *Collector {
	return &Collector{graph: g}
}

// Append records a closed event.
func (c *Collector) Append(ev Event) {
	c.events = append(c.events, ev)
}

// Events returns the recorded events sorted by start time, breaking ties by
// engine id. The returned slice is the collector's own; callers must not
// mutate it while the run is in progress.
func (c *Collector) Events() []Event {
	sort.SliceStable(c.events, func(i, j int) bool {
		if c.events[i].StartTime != c.events[j].StartTime {
			return c.events[i].StartTime < c.events[j].StartTime
		}
		return c.events[i].EngineID < c.events[j].EngineID
	})
	return c.events
}

// QualityStats aggregates inspection and rework outcomes across the run.
type QualityStats struct {
	// TotalInspections counts executions of measure steps: first passes and
	// reworks alike.
	TotalInspections int `json:"total_inspections"`

	// TotalReworks counts rework executions.
	TotalReworks int `json:"total_reworks"`

	// FirstPassRate is the fraction of measure steps that needed no rework,
	// averaged across engines that executed at least one measure step. It is
	// 1 when no measure steps ran.
	FirstPassRate float64 `json:"first_pass_rate"`

	// ReworkTimeTotal is the summed duration of all rework events, in
	// minutes.
	ReworkTimeTotal float64 `json:"rework_time_total"`
}

// Quality derives the quality statistics from the recorded events.
func (c *Collector) Quality() QualityStats {
	var q QualityStats

	// Per engine: measure steps executed and measure steps that saw rework.
	type engineQuality struct {
		measured map[string]bool
		reworked map[string]bool
	}
	perEngine := make(map[int]*engineQuality)
	engineFor := func(id int) *engineQuality {
		eq := perEngine[id]
		if eq == nil {
			eq = &engineQuality{measured: make(map[string]bool), reworked: make(map[string]bool)}
			perEngine[id] = eq
		}
		return eq
	}

	for i := range c.events {
		ev := &c.events[i]
		switch ev.Type {
		case EventNormal:
			n := c.graph.Node(ev.StepID)
			if n != nil && n.OpType == OpMeasure {
				q.TotalInspections++
				engineFor(ev.EngineID).measured[ev.StepID] = true
			}
		case EventRework:
			q.TotalInspections++
			q.TotalReworks++
			q.ReworkTimeTotal += ev.Duration()
			engineFor(ev.EngineID).reworked[ev.StepID] = true
		}
	}

	var rateSum float64
	var rated int
	for _, eq := range perEngine {
		if len(eq.measured) == 0 {
			continue
		}
		firstPass := 0
		for step := range eq.measured {
			if !eq.reworked[step] {
				firstPass++
			}
		}
		rateSum += float64(firstPass) / float64(len(eq.measured))
		rated++
	}
	if rated > 0 {
		q.FirstPassRate = rateSum / float64(rated)
	} else {
		q.FirstPassRate = 1
	}
	return q
}
