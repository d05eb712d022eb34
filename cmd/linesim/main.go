// Command linesim runs an assembly line simulation from a process definition
// and a run configuration, writing the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/dshills/linesim-go/sim"
	"github.com/dshills/linesim-go/sim/emit"
)

var rootCmd = &cobra.Command{
	Use:   "linesim",
	Short: "Discrete-event simulation of a multi-engine assembly line.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Pick up LINESIM_* environment overrides from a local .env when
		// present; absence is not an error.
		_ = godotenv.Load()
		return nil
	},
	RunE: runSimulation,
}

func init() {
	flags := rootCmd.Flags()
	flags.String("process", "", "path to the process definition JSON (required)")
	flags.String("config", "", "path to a run configuration JSON")
	flags.String("out", "", "write the result JSON here instead of stdout")
	flags.Bool("compare", false, "run the rest-enabled/rest-disabled comparison pair")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flags.Bool("trace", false, "install an OpenTelemetry tracer provider and emit spans")
	flags.String("events-log", "", "append lifecycle events as JSONL to this file")
	flags.Int64("seed", 0, "random seed override (0 means unset)")

	_ = viper.BindPFlags(flags)
	viper.SetEnvPrefix("linesim")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSimulation(_ *cobra.Command, _ []string) error {
	processPath := viper.GetString("process")
	if processPath == "" {
		return errors.New("--process is required")
	}

	def, err := loadDefinition(processPath)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(viper.GetString("config"))
	if err != nil {
		return err
	}
	if seed := viper.GetInt64("seed"); seed != 0 {
		cfg.RandomSeed = &seed
	}

	var opts []sim.Option
	if path := viper.GetString("events-log"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("open events log: %w", err)
		}
		defer func() { _ = f.Close() }()
		opts = append(opts, sim.WithEmitter(emit.NewLogEmitter(f, true)))
	} else if viper.GetBool("trace") {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(ctx)
		}()
		opts = append(opts, sim.WithEmitter(emit.NewOTelEmitter(otel.Tracer("linesim"))))
	}

	if addr := viper.GetString("metrics-addr"); addr != "" {
		registry := prometheus.NewRegistry()
		opts = append(opts, sim.WithMetrics(sim.NewPrometheusMetrics(registry)))
		go func() {
			http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(addr, nil); err != nil { // #nosec G114 -- local metrics endpoint
				slog.Error("metrics server stopped", "error", err)
			}
		}()
	}

	ctx := context.Background()
	var out any
	if viper.GetBool("compare") {
		comparison, err := sim.RunComparison(ctx, def, cfg, opts...)
		if err != nil {
			return err
		}
		out = comparison
	} else {
		result, err := sim.Run(ctx, def, cfg, opts...)
		if err != nil {
			// Validation failures still produce a FAILED result document.
			slog.Error("simulation failed", "error", err)
		}
		out = result
	}

	return writeResult(out, viper.GetString("out"))
}

// loadDefinition reads and decodes the process definition document.
func loadDefinition(path string) (*sim.Definition, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("read process definition: %w", err)
	}
	return sim.ParseDefinition(data)
}

// loadConfig reads the run configuration, starting from defaults so a
// partial document is enough.
func loadConfig(path string) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied path
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// writeResult marshals v to the output path, or stdout when none is given.
func writeResult(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
