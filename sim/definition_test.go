package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefinition(t *testing.T) {
	t.Run("tools as list", func(t *testing.T) {
		data := []byte(`{
			"name": "line",
			"nodes": [{
				"step_id": "S001",
				"task_name": "fit housing",
				"op_type": "A",
				"predecessors": "",
				"std_duration": 12.5,
				"time_variance": 1.5,
				"work_load_score": 4,
				"rework_prob": 0,
				"required_workers": 2,
				"required_tools": ["torque wrench", "jig"],
				"station": "ST-3"
			}]
		}`)
		def, err := ParseDefinition(data)
		require.NoError(t, err)
		require.Len(t, def.Nodes, 1)

		n := def.Nodes[0]
		assert.Equal(t, "S001", n.StepID)
		assert.Equal(t, OpAssembly, n.OpType)
		assert.Equal(t, ToolList{"torque wrench", "jig"}, n.RequiredTools)
		assert.Equal(t, "ST-3", n.Station)
		assert.InDelta(t, 12.5, n.StdDuration, 1e-9)
	})

	t.Run("tools as semicolon string", func(t *testing.T) {
		data := []byte(`{"name":"line","nodes":[{
			"step_id":"S002","task_name":"torque","op_type":"H",
			"predecessors":"S001","std_duration":5,"work_load_score":3,
			"required_workers":1,"required_tools":"wrench; wrench ;gauge"
		}]}`)
		def, err := ParseDefinition(data)
		require.NoError(t, err)
		assert.Equal(t, ToolList{"wrench", "wrench", "gauge"}, def.Nodes[0].RequiredTools)
	})

	t.Run("predecessors split on semicolons", func(t *testing.T) {
		nd := NodeDef{Predecessors: " S001 ;S002; "}
		assert.Equal(t, []string{"S001", "S002"}, nd.predecessorIDs())

		nd = NodeDef{Predecessors: ""}
		assert.Nil(t, nd.predecessorIDs())
	})

	t.Run("invalid tools payload rejected", func(t *testing.T) {
		_, err := ParseDefinition([]byte(`{"nodes":[{"step_id":"S1","required_tools":42}]}`))
		assert.Error(t, err)
	})

	t.Run("malformed document rejected", func(t *testing.T) {
		_, err := ParseDefinition([]byte(`{"nodes":`))
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.NumWorkers = 3
		cfg.TargetOutput = 2
		return cfg
	}

	t.Run("default config is valid", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.Validate())
	})

	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"hours too low", func(c *Config) { c.WorkHoursPerDay = 0 }, "work_hours_per_day"},
		{"hours too high", func(c *Config) { c.WorkHoursPerDay = 25 }, "work_hours_per_day"},
		{"days too high", func(c *Config) { c.WorkDaysPerMonth = 32 }, "work_days_per_month"},
		{"no workers", func(c *Config) { c.NumWorkers = 0 }, "num_workers"},
		{"no target", func(c *Config) { c.TargetOutput = 0 }, "target_output"},
		{"zero equipment capacity", func(c *Config) { c.CriticalEquipment = map[string]int{"X": 0} }, "critical_equipment"},
		{"negative rest threshold", func(c *Config) { c.RestTimeThreshold = -1 }, "rest_time_threshold"},
		{"load threshold too high", func(c *Config) { c.RestLoadThreshold = 11 }, "rest_load_threshold"},
		{"negative admission margin", func(c *Config) { c.AdmissionMargin = -1 }, "admission_margin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.field, ce.Field)
		})
	}

	t.Run("deadline minutes", func(t *testing.T) {
		cfg := valid()
		cfg.WorkHoursPerDay = 8
		cfg.WorkDaysPerMonth = 20
		assert.InDelta(t, 9600, cfg.DeadlineMinutes(), 1e-9)

		tm := cfg.timeMapping()
		assert.InDelta(t, 480, tm.MinutesPerDay, 1e-9)
		assert.Equal(t, 20, tm.TotalDays)
	})
}
