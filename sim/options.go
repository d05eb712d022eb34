package sim

import (
	"errors"
	"math/rand"

	"github.com/dshills/linesim-go/sim/emit"
)

// Option is a functional option for configuring a Simulation beyond the run
// configuration: observability sinks, an alternate rest policy, or a
// deterministic random source for tests.
//
// Example:
//
//	s, err := sim.New(def, cfg,
//	    sim.WithEmitter(emit.NewLogEmitter(os.Stderr, false)),
//	    sim.WithMetrics(metrics),
//	)
type Option func(*settings) error

// settings collects option values before they are applied to a Simulation.
type settings struct {
	simID      string
	emitter    emit.Emitter
	metrics    *PrometheusMetrics
	restPolicy RestPolicy
	randSource rand.Source
}

func defaultSettings() settings {
	return settings{}
}

// WithSimID fixes the run identifier instead of generating one. Note that
// when no random seed is configured, the seed is derived from this id.
func WithSimID(id string) Option {
	return func(s *settings) error {
		if id == "" {
			return errors.New("sim id must not be empty")
		}
		s.simID = id
		return nil
	}
}

// WithEmitter routes simulation lifecycle events (engine start/complete,
// task start/complete, waits, rests) to the given emitter. The default
// discards them.
func WithEmitter(e emit.Emitter) Option {
	return func(s *settings) error {
		s.emitter = e
		return nil
	}
}

// WithMetrics enables Prometheus metrics collection for the run.
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	metrics := sim.NewPrometheusMetrics(registry)
//	s, err := sim.New(def, cfg, sim.WithMetrics(metrics))
func WithMetrics(m *PrometheusMetrics) Option {
	return func(s *settings) error {
		s.metrics = m
		return nil
	}
}

// WithRestPolicy overrides the rest policy built from the configuration.
// Pass NoRest{} for the comparison engine's rest-disabled variant.
func WithRestPolicy(p RestPolicy) Option {
	return func(s *settings) error {
		if p == nil {
			return errors.New("rest policy must not be nil")
		}
		s.restPolicy = p
		return nil
	}
}

// WithRandSource substitutes the run's random source. Intended for tests
// that need scripted draws; production runs should set Config.RandomSeed
// instead, which keeps the seed visible in the result.
func WithRandSource(src rand.Source) Option {
	return func(s *settings) error {
		if src == nil {
			return errors.New("random source must not be nil")
		}
		s.randSource = src
		return nil
	}
}
