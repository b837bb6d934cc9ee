package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/exascience/parclust"
	"github.com/exascience/parclust/internal/logging"
	"github.com/exascience/parclust/pool"
)

// environment holds the configuration, worker pool, and metrics registry for
// a single command invocation.
type environment struct {
	cfg      *parclust.Config
	pool     *pool.Pool
	registry *prometheus.Registry
	logger   *zap.Logger
	metrics  bool
}

func newEnvironment(command *cobra.Command) (*environment, error) {
	v, err := newViper(command.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(v.GetString(logFormatFlag), v.GetString(logLevelFlag))
	if err != nil {
		return nil, err
	}

	cfg := parclust.DefaultConfig()
	cfg.Logger = logger
	cfg.SetParallelismEnabled(v.GetBool(parallelFlag))
	if n := v.GetInt(maxSerialLengthFlag); n >= 0 {
		cfg.SetMaxSerialLength(n)
	} else {
		return nil, fmt.Errorf("invalid %s: %v", maxSerialLengthFlag, n)
	}
	if n := v.GetInt(maxChunkSizeFlag); n > 0 {
		cfg.SetMaxParallelChunkSize(n)
	} else if n < 0 {
		return nil, fmt.Errorf("invalid %s: %v", maxChunkSizeFlag, n)
	}

	registry := prometheus.NewRegistry()
	p := pool.New(cfg.CoreCount, pool.WithLogger(logger), pool.WithRegisterer(registry))
	cfg.Executor = p

	logger.Debug("configuration",
		zap.Int("cores", cfg.CoreCount),
		zap.Bool("parallel", cfg.ParallelismEnabled),
		zap.Int("maxSerialLength", cfg.MaxSerialLength),
		zap.Int("maxParallelChunkSize", cfg.MaxParallelChunkSize),
	)

	return &environment{
		cfg:      cfg,
		pool:     p,
		registry: registry,
		logger:   logger,
		metrics:  v.GetBool(metricsFlag),
	}, nil
}

// close shuts down the pool and, if requested, writes the pool metrics to out.
func (e *environment) close(out io.Writer) error {
	e.pool.Close()
	_ = e.logger.Sync()
	if !e.metrics {
		return nil
	}
	mfs, err := e.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			sort.Strings(labels)
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			fmt.Fprintf(out, "%s %v\n", name, m.GetCounter().GetValue())
		}
	}
	return nil
}
