package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/NetPo4ki/go-buffer/internal/config"
	"github.com/NetPo4ki/go-buffer/internal/stress"
	"github.com/NetPo4ki/go-buffer/observe"
	"github.com/NetPo4ki/go-buffer/observe/logging"
	"github.com/NetPo4ki/go-buffer/observe/prom"
)

// flagKeys maps run flags onto config keys.
var flagKeys = map[string]string{
	"capacity":      "buffer.capacity",
	"producers":     "load.producers",
	"consumers":     "load.consumers",
	"messages":      "load.messages",
	"payload-size":  "load.payload_size",
	"special-every": "load.special_every",
	"timeout":       "load.timeout_seconds",
	"log-level":     "logging.level",
	"log-json":      "logging.json",
	"metrics-addr":  "metrics.addr",
}

func newRunCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a producer/consumer workload through the buffer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runStress(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	d := config.Default()
	f := cmd.Flags()
	f.Int("capacity", d.Buffer.Capacity, "buffer capacity in bytes")
	f.Int("producers", d.Load.Producers, "number of producer goroutines")
	f.Int("consumers", d.Load.Consumers, "number of consumer goroutines")
	f.Int("messages", d.Load.Messages, "messages sent by each producer")
	f.Int("payload-size", d.Load.PayloadSize, "payload length of generated messages")
	f.Int("special-every", d.Load.SpecialEvery, "send the sentinel payload every N messages (0 disables)")
	f.Int("timeout", d.Load.TimeoutSeconds, "abort the run after N seconds (0 disables)")
	f.String("log-level", d.Logging.Level, "log level: trace, debug, info, warn, error")
	f.Bool("log-json", d.Logging.JSON, "emit logs as JSON")
	f.String("metrics-addr", d.Metrics.Addr, "serve Prometheus metrics on this address, e.g. :9090")
	f.VisitAll(func(fl *pflag.Flag) {
		if key, ok := flagKeys[fl.Name]; ok {
			_ = v.BindPFlag(key, fl)
		}
	})
	return cmd
}

func newLogger(cfg config.LoggingConfig, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	if cfg.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return l
}

func runStress(ctx context.Context, cfg *config.Config, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(cfg.Logging, errOut)

	reg := prometheus.NewRegistry()
	metrics, err := prom.New(reg, cfg.Metrics.Namespace)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	if cfg.Metrics.Addr != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           metricsMux(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.WithField("addr", cfg.Metrics.Addr).Info("serving metrics")
	}

	logger.WithFields(logrus.Fields{
		"capacity":  cfg.Buffer.Capacity,
		"producers": cfg.Load.Producers,
		"consumers": cfg.Load.Consumers,
		"messages":  cfg.Load.Messages,
	}).Info("starting run")

	rep, err := stress.Run(ctx, cfg, observe.NewMulti(metrics, logging.New(logger)))
	if err != nil {
		logger.WithError(err).WithField("report", rep.String()).Error("run failed")
		return err
	}

	snap := metrics.GetSnapshot()
	_, err = fmt.Fprintf(out, "%s blocked=%d rejected=%d\n", rep, snap.Blocked, snap.Rejected)
	return err
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}
