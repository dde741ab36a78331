// Command handoff runs one producer/consumer handoff and prints its summary.
//
// Settings come from defaults, then an optional YAML file (-config), then
// HANDOFF_* environment variables, then explicitly set flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ygrebnov/handoff"
	"github.com/ygrebnov/handoff/internal/config"
	"github.com/ygrebnov/handoff/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "handoff:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("handoff", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath    = fs.String("config", "", "YAML configuration file")
		producers     = fs.Int("producers", handoff.DefaultProducers, "number of producers")
		consumers     = fs.Int("consumers", handoff.DefaultConsumers, "number of consumers")
		capacity      = fs.Int("capacity", handoff.DefaultCapacity, "queue capacity")
		items         = fs.Int("items", handoff.DefaultItemsPerProducer, "items per producer")
		producerDelay = fs.Duration("producer-delay", handoff.DefaultProducerDelay, "sleep before each produced item")
		consumerDelay = fs.Duration("consumer-delay", handoff.DefaultConsumerDelay, "sleep after each consumed item")
		logLevel      = fs.String("log-level", "info", "debug, info, warn or error")
		metricsAddr   = fs.String("metrics-addr", "", "serve Prometheus /metrics on this address")
		linger        = fs.Duration("linger", 0, "keep serving /metrics this long after the run")
		report        = fs.Bool("report", false, "print every instrument value after the run")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	// explicitly set flags win over file and environment
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "producers":
			f.Producers = *producers
		case "consumers":
			f.Consumers = *consumers
		case "capacity":
			f.Capacity = *capacity
		case "items":
			f.ItemsPerProducer = *items
		case "producer-delay":
			f.ProducerDelay = config.Duration(*producerDelay)
		case "consumer-delay":
			f.ConsumerDelay = config.Duration(*consumerDelay)
		case "log-level":
			f.LogLevel = *logLevel
		case "metrics-addr":
			f.MetricsAddr = *metricsAddr
		}
	})
	if *report && f.MetricsAddr != "" {
		return errors.New("-report and -metrics-addr are mutually exclusive")
	}

	level, err := f.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts := append(f.Options(), handoff.WithLogger(logger))

	var basic *metrics.BasicProvider
	switch {
	case *report:
		basic = metrics.NewBasicProvider()
		opts = append(opts, handoff.WithMetrics(basic))
	case f.MetricsAddr != "":
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, handoff.WithMetrics(metrics.NewPrometheusProvider(reg)))

		srv, err := serveMetrics(f.MetricsAddr, reg, logger)
		if err != nil {
			return err
		}
		defer shutdown(srv, logger)
	}

	s, err := handoff.Run(ctx, opts...)
	if errors.Is(err, handoff.ErrInvalidConfig) {
		return err
	}
	fmt.Fprintln(stdout, s.String())
	if err != nil {
		return err
	}

	if basic != nil {
		printReport(stdout, basic)
	}
	if f.MetricsAddr != "" && *linger > 0 {
		logger.Info("serving metrics after run", "addr", f.MetricsAddr, "linger", *linger)
		select {
		case <-ctx.Done():
		case <-time.After(*linger):
		}
	}
	return nil
}

// serveMetrics binds addr before returning so a bad address fails the command
// instead of surfacing only in the log.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: ln.Addr().String(), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", srv.Addr, "error", err)
		}
	}()
	return srv, nil
}

func shutdown(srv *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown", "error", err)
	}
}

func printReport(w io.Writer, p *metrics.BasicProvider) {
	for _, name := range p.Names() {
		if v, ok := p.Value(name); ok {
			fmt.Fprintf(w, "%s %d\n", name, v)
			continue
		}
		if h, ok := p.HistogramSnapshot(name); ok {
			fmt.Fprintf(w, "%s count=%d sum=%.6f\n", name, h.Count, h.Sum)
		}
	}
}
