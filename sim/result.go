package sim

import "time"

// Status is the terminal state of a simulation run.
type Status string

// Run statuses. A run only fails before the kernel starts (bad
// configuration or graph); anything the kernel absorbs (starvation, the
// deadline, zero completions) still completes.
const (
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// WorkerStat is the per-worker summary reported in the result.
type WorkerStat struct {
	WorkerID           int            `json:"worker_id"`
	TotalWorkTime      float64        `json:"total_work_time"`
	TotalRestTime      float64        `json:"total_rest_time"`
	TasksCompleted     int            `json:"tasks_completed"`
	HighIntensityCount int            `json:"high_intensity_count"`
	FatigueLevel       float64        `json:"fatigue_level"`
	Utilization        float64        `json:"utilization"`
	FatigueHistory     []FatiguePoint `json:"fatigue_history,omitempty"`
}

// HumanFactorsStats aggregates ergonomic outcomes across the worker pool.
type HumanFactorsStats struct {
	AvgFatigueLevel    float64 `json:"avg_fatigue_level"`
	MaxFatigueLevel    float64 `json:"max_fatigue_level"`
	TotalWorkTime      float64 `json:"total_work_time"`
	TotalRestTime      float64 `json:"total_rest_time"`
	HighIntensityTotal int     `json:"high_intensity_total"`
	AvgUtilization     float64 `json:"avg_utilization"`
}

// Result is the full outcome of one simulation run.
type Result struct {
	SimID                 string            `json:"sim_id"`
	Status                Status            `json:"status"`
	Error                 string            `json:"error,omitempty"`
	Config                Config            `json:"config"`
	RandomSeed            int64             `json:"random_seed"`
	SimDuration           float64           `json:"sim_duration"`
	EnginesCompleted      int               `json:"engines_completed"`
	TargetAchievementRate float64           `json:"target_achievement_rate"`
	AvgCycleTime          float64           `json:"avg_cycle_time"`
	WorkerStats           []WorkerStat      `json:"worker_stats"`
	EquipmentStats        []EquipmentStat   `json:"equipment_stats"`
	QualityStats          QualityStats      `json:"quality_stats"`
	HumanFactors          HumanFactorsStats `json:"human_factors_stats"`
	Events                []Event           `json:"events"`
	TimeMapping           TimeMapping       `json:"time_mapping"`
	StartedAt             time.Time         `json:"started_at"`
	FinishedAt            time.Time         `json:"finished_at"`
}

// workerStats summarizes the pool into per-worker records plus the pooled
// human-factors aggregate.
func workerStats(workers []*Worker, simDuration float64) ([]WorkerStat, HumanFactorsStats) {
	stats := make([]WorkerStat, 0, len(workers))
	var hf HumanFactorsStats
	for _, w := range workers {
		s := WorkerStat{
			WorkerID:           w.ID,
			TotalWorkTime:      w.TotalWorkTime,
			TotalRestTime:      w.TotalRestTime,
			TasksCompleted:     w.TasksCompleted,
			HighIntensityCount: w.HighIntensityCount,
			FatigueLevel:       w.FatigueLevel,
			FatigueHistory:     w.FatigueHistory,
		}
		if simDuration > 0 {
			s.Utilization = w.TotalWorkTime / simDuration
		}
		stats = append(stats, s)

		hf.TotalWorkTime += w.TotalWorkTime
		hf.TotalRestTime += w.TotalRestTime
		hf.HighIntensityTotal += w.HighIntensityCount
		hf.AvgFatigueLevel += w.FatigueLevel
		hf.AvgUtilization += s.Utilization
		if w.FatigueLevel > hf.MaxFatigueLevel {
			hf.MaxFatigueLevel = w.FatigueLevel
		}
	}
	if len(workers) > 0 {
		hf.AvgFatigueLevel /= float64(len(workers))
		hf.AvgUtilization /= float64(len(workers))
	}
	return stats, hf
}
