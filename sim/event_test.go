package sim

import (
	"testing"
)

func TestCollectorQuality(t *testing.T) {
	mNode := func(id, pred string) NodeDef {
		n := simpleNode(id, pred)
		n.OpType = OpMeasure
		n.ReworkProb = 0.5
		return n
	}
	g, err := NewProcessGraph(&Definition{Nodes: []NodeDef{
		simpleNode("S1", ""),
		mNode("M1", "S1"),
		mNode("M2", "S1"),
	}})
	if err != nil {
		t.Fatalf("graph: %v", err)
	}

	t.Run("first pass rate averages across engines", func(t *testing.T) {
		c := NewCollector(g)
		// Engine 1: M1 reworked once, M2 clean -> rate 0.5.
		c.Append(Event{EngineID: 1, StepID: "S1", Type: EventNormal, StartTime: 0, EndTime: 10})
		c.Append(Event{EngineID: 1, StepID: "M1", Type: EventNormal, StartTime: 10, EndTime: 20})
		c.Append(Event{EngineID: 1, StepID: "M1", Type: EventRework, StartTime: 20, EndTime: 30, ReworkCount: 1})
		c.Append(Event{EngineID: 1, StepID: "M2", Type: EventNormal, StartTime: 10, EndTime: 20})
		// Engine 2: both clean -> rate 1.
		c.Append(Event{EngineID: 2, StepID: "M1", Type: EventNormal, StartTime: 30, EndTime: 40})
		c.Append(Event{EngineID: 2, StepID: "M2", Type: EventNormal, StartTime: 30, EndTime: 40})

		q := c.Quality()
		if q.TotalInspections != 5 { // 4 M-step NORMALs + 1 REWORK
			t.Errorf("expected 5 inspections, got %d", q.TotalInspections)
		}
		if q.TotalReworks != 1 {
			t.Errorf("expected 1 rework, got %d", q.TotalReworks)
		}
		if q.FirstPassRate != 0.75 {
			t.Errorf("expected first pass rate 0.75, got %v", q.FirstPassRate)
		}
		if q.ReworkTimeTotal != 10 {
			t.Errorf("expected 10 minutes of rework, got %v", q.ReworkTimeTotal)
		}
	})

	t.Run("no measure steps yields rate 1", func(t *testing.T) {
		c := NewCollector(g)
		c.Append(Event{EngineID: 1, StepID: "S1", Type: EventNormal, StartTime: 0, EndTime: 10})
		if q := c.Quality(); q.FirstPassRate != 1 {
			t.Errorf("expected rate 1 with no inspections, got %v", q.FirstPassRate)
		}
	})

	t.Run("events sorted by start then engine", func(t *testing.T) {
		c := NewCollector(g)
		c.Append(Event{EngineID: 2, StepID: "S1", Type: EventNormal, StartTime: 5, EndTime: 10})
		c.Append(Event{EngineID: 1, StepID: "S1", Type: EventNormal, StartTime: 5, EndTime: 10})
		c.Append(Event{EngineID: 1, StepID: "M1", Type: EventNormal, StartTime: 0, EndTime: 5})

		events := c.Events()
		if events[0].StartTime != 0 {
			t.Errorf("expected earliest event first, got %+v", events[0])
		}
		if events[1].EngineID != 1 || events[2].EngineID != 2 {
			t.Errorf("expected engine order to break ties, got %v then %v", events[1].EngineID, events[2].EngineID)
		}
	})
}
