package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"usrpdmr/internal/config"
	"usrpdmr/internal/logging"
	"usrpdmr/internal/pipeline"
	"usrpdmr/internal/stats"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  = flag.String("config", "config.json", "path to the JSON configuration file")
		verbose     = flag.Bool("verbose", false, "enable debug-level logging")
		genConfig   = flag.String("gen-config", "", "write a sample configuration file to this path and exit")
		metricsAddr = flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9100)")
	)
	flag.Parse()

	if *genConfig != "" {
		if err := config.GenerateSample(*genConfig); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write sample config: %v\n", err)
			return 1
		}
		fmt.Printf("wrote sample configuration to %s\n", *genConfig)
		return 0
	}

	log := logging.New(logging.Options{Verbose: *verbose, Color: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("startup failed: config error", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridge, err := pipeline.New(ctx, cfg, log, nil)
	if err != nil {
		log.Error("startup failed: bridge init error", "error", err)
		return 1
	}

	if *metricsAddr != "" {
		serveMetrics(*metricsAddr, bridge.Counters(), log)
	}

	bridge.Start()
	log.Info("usrpdmr-bridge running", "usrp_listen", fmt.Sprintf("%s:%d", cfg.USRP.ListenAddress, cfg.USRP.ListenPort))

	<-ctx.Done()
	bridge.Stop()
	return 0
}

func serveMetrics(addr string, counters *stats.Counters, log interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(stats.NewPrometheusExporter(counters))
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("metrics server stopped", "error", err)
		}
	}()
	log.Info("metrics server listening", "addr", addr)
}
