package sim

// Config holds the per-run simulation parameters. A Config is immutable for
// the duration of a run and is echoed back in the Result.
//
// The zero value is not runnable; start from DefaultConfig and override.
type Config struct {
	// WorkHoursPerDay is the shift length in hours (1..24).
	WorkHoursPerDay int `json:"work_hours_per_day"`

	// WorkDaysPerMonth is the number of working days simulated (1..31).
	WorkDaysPerMonth int `json:"work_days_per_month"`

	// NumWorkers is the size of the interchangeable worker pool (>= 1).
	NumWorkers int `json:"num_workers"`

	// TargetOutput is the number of product units the run aims to complete
	// (>= 1). The achievement rate in the result is engines completed divided
	// by this value.
	TargetOutput int `json:"target_output"`

	// CriticalEquipment maps equipment names to their integer capacities.
	// Equipment not listed here is unlimited (always granted, still tracked
	// for utilization).
	CriticalEquipment map[string]int `json:"critical_equipment,omitempty"`

	// RestTimeThreshold is the continuous-work minutes after which a worker
	// must rest (rule A). Zero disables the rule.
	RestTimeThreshold float64 `json:"rest_time_threshold,omitempty"`

	// RestDurationTime is the rest length in minutes for a time-triggered
	// rest.
	RestDurationTime float64 `json:"rest_duration_time,omitempty"`

	// RestLoadThreshold is the workload score (1..10) at or above which a
	// completed task triggers a rest (rule B). Zero disables the rule.
	RestLoadThreshold int `json:"rest_load_threshold,omitempty"`

	// RestDurationLoad is the rest length in minutes for a load-triggered
	// rest.
	RestDurationLoad float64 `json:"rest_duration_load,omitempty"`

	// PipelineMode admits successive product units into the line while
	// earlier units are still in progress. When false a single unit is run.
	PipelineMode bool `json:"pipeline_mode"`

	// AdmissionMargin is how many engines beyond TargetOutput the pipeline
	// controller may admit, as a safety margin for rework losses.
	AdmissionMargin int `json:"admission_margin,omitempty"`

	// RandomSeed fixes the random sequence for reproducible runs. When nil a
	// seed is derived from the run id and echoed in the result so the run
	// can be replayed.
	RandomSeed *int64 `json:"random_seed,omitempty"`
}

// Default configuration values.
const (
	defaultWorkHoursPerDay  = 8
	defaultWorkDaysPerMonth = 22
	defaultAdmissionMargin  = 2
)

// DefaultConfig returns a Config with an 8-hour, 22-day shift, pipeline mode
// enabled, rest rules disabled, and the default admission margin.
func DefaultConfig() Config {
	return Config{
		WorkHoursPerDay:  defaultWorkHoursPerDay,
		WorkDaysPerMonth: defaultWorkDaysPerMonth,
		NumWorkers:       1,
		TargetOutput:     1,
		PipelineMode:     true,
		AdmissionMargin:  defaultAdmissionMargin,
	}
}

// Validate checks every field against its documented range. It returns a
// *ConfigError naming the first offending field, or nil.
func (c *Config) Validate() error {
	if c.WorkHoursPerDay < 1 || c.WorkHoursPerDay > 24 {
		return &ConfigError{Field: "work_hours_per_day", Message: "must be between 1 and 24"}
	}
	if c.WorkDaysPerMonth < 1 || c.WorkDaysPerMonth > 31 {
		return &ConfigError{Field: "work_days_per_month", Message: "must be between 1 and 31"}
	}
	if c.NumWorkers < 1 {
		return &ConfigError{Field: "num_workers", Message: "must be at least 1"}
	}
	if c.TargetOutput < 1 {
		return &ConfigError{Field: "target_output", Message: "must be at least 1"}
	}
	for name, capacity := range c.CriticalEquipment {
		if capacity < 1 {
			return &ConfigError{Field: "critical_equipment", Message: "capacity for " + name + " must be at least 1"}
		}
	}
	if c.RestTimeThreshold < 0 {
		return &ConfigError{Field: "rest_time_threshold", Message: "must not be negative"}
	}
	if c.RestDurationTime < 0 {
		return &ConfigError{Field: "rest_duration_time", Message: "must not be negative"}
	}
	if c.RestLoadThreshold < 0 || c.RestLoadThreshold > 10 {
		return &ConfigError{Field: "rest_load_threshold", Message: "must be between 0 and 10"}
	}
	if c.RestDurationLoad < 0 {
		return &ConfigError{Field: "rest_duration_load", Message: "must not be negative"}
	}
	if c.AdmissionMargin < 0 {
		return &ConfigError{Field: "admission_margin", Message: "must not be negative"}
	}
	return nil
}

// DeadlineMinutes returns the global simulated-time budget: the shift length
// times the number of working days, in minutes.
func (c *Config) DeadlineMinutes() float64 {
	return float64(c.WorkHoursPerDay) * float64(c.WorkDaysPerMonth) * 60
}

// maxEngines returns the pipeline admission cap.
func (c *Config) maxEngines() int {
	return c.TargetOutput + c.AdmissionMargin
}

// TimeMapping relates simulated minutes back to the configured calendar. It
// is included in the Result for downstream charting.
type TimeMapping struct {
	MinutesPerDay   float64 `json:"minutes_per_day"`
	TotalDays       int     `json:"total_days"`
	TotalMinutes    float64 `json:"total_minutes"`
	WorkHoursPerDay int     `json:"work_hours_per_day"`
}

// timeMapping derives the TimeMapping for this configuration.
func (c *Config) timeMapping() TimeMapping {
	return TimeMapping{
		MinutesPerDay:   float64(c.WorkHoursPerDay) * 60,
		TotalDays:       c.WorkDaysPerMonth,
		TotalMinutes:    c.DeadlineMinutes(),
		WorkHoursPerDay: c.WorkHoursPerDay,
	}
}
