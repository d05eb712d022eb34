package sim

import (
	"testing"
)

func TestEquipmentManagerAcquire(t *testing.T) {
	t.Run("capacity limits concurrent holders", func(t *testing.T) {
		k := NewKernel()
		m := NewEquipmentManager(k, map[string]int{"X": 1})
		var secondStart float64 = -1

		k.Spawn(func(p *Proc) {
			m.Acquire(p, []string{"X"})
			p.Sleep(20)
			m.Release([]string{"X"}, 20)
		})
		k.Spawn(func(p *Proc) {
			m.Acquire(p, []string{"X"})
			secondStart = p.Now()
			p.Sleep(20)
			m.Release([]string{"X"}, 20)
		})
		k.RunUntil(1000)

		if secondStart != 20 {
			t.Errorf("expected second holder granted at 20, got %v", secondStart)
		}
	})

	t.Run("unknown equipment is unlimited but tracked", func(t *testing.T) {
		k := NewKernel()
		m := NewEquipmentManager(k, nil)
		var starts []float64

		for i := 0; i < 3; i++ {
			k.Spawn(func(p *Proc) {
				m.Acquire(p, []string{"bench"})
				starts = append(starts, p.Now())
				p.Sleep(10)
				m.Release([]string{"bench"}, 10)
			})
		}
		k.RunUntil(1000)

		for _, at := range starts {
			if at != 0 {
				t.Errorf("expected all grants immediate, got %v", starts)
			}
		}
		stats := m.Stats(100)
		if len(stats) != 1 || stats[0].Name != "bench" {
			t.Fatalf("expected stats for bench, got %v", stats)
		}
		if stats[0].WorkTime != 30 || stats[0].TasksServed != 3 {
			t.Errorf("expected work time 30 over 3 tasks, got %+v", stats[0])
		}
		if stats[0].Utilization != 0.3 {
			t.Errorf("expected utilization 0.3, got %v", stats[0].Utilization)
		}
	})

	t.Run("duplicate names claim independent units", func(t *testing.T) {
		k := NewKernel()
		m := NewEquipmentManager(k, map[string]int{"jig": 2})
		var blockedStart float64 = -1

		k.Spawn(func(p *Proc) {
			m.Acquire(p, []string{"jig", "jig"})
			p.Sleep(15)
			m.Release([]string{"jig", "jig"}, 15)
		})
		k.Spawn(func(p *Proc) {
			m.Acquire(p, []string{"jig"})
			blockedStart = p.Now()
		})
		k.RunUntil(1000)

		if blockedStart != 15 {
			t.Errorf("expected third unit granted only at 15, got %v", blockedStart)
		}
	})

	t.Run("acquisition order is canonical regardless of request order", func(t *testing.T) {
		k := NewKernel()
		m := NewEquipmentManager(k, map[string]int{"a": 1, "b": 1})

		// Two tasks requesting {a,b} in opposite orders would deadlock under
		// request-order acquisition; canonical ordering serializes them.
		var done int
		for i := 0; i < 2; i++ {
			names := []string{"a", "b"}
			if i == 1 {
				names = []string{"b", "a"}
			}
			k.Spawn(func(p *Proc) {
				m.Acquire(p, names)
				p.Sleep(10)
				m.Release(names, 10)
				done++
			})
		}
		k.RunUntil(1000)

		if done != 2 {
			t.Errorf("expected both tasks to finish, got %d", done)
		}
		if k.Now() != 20 {
			t.Errorf("expected serialized completion at 20, got %v", k.Now())
		}
	})

	t.Run("release hands units to waiters FIFO", func(t *testing.T) {
		k := NewKernel()
		m := NewEquipmentManager(k, map[string]int{"press": 1})
		var order []int

		k.Spawn(func(p *Proc) {
			m.Acquire(p, []string{"press"})
			p.Sleep(5)
			m.Release([]string{"press"}, 5)
		})
		for i := 0; i < 3; i++ {
			i := i
			k.Spawn(func(p *Proc) {
				m.Acquire(p, []string{"press"})
				order = append(order, i)
				p.Sleep(5)
				m.Release([]string{"press"}, 5)
			})
		}
		k.RunUntil(1000)

		for i, got := range order {
			if got != i {
				t.Fatalf("expected FIFO grant order, got %v", order)
			}
		}
	})
}
