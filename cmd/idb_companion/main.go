// Package main implements the idb_companion daemon executable: it loads
// the startup configuration record (§1.3), assembles one executor.Executor
// for the configured target and a boundary.Dispatcher (§4.I) over it,
// serves prometheus metrics, and waits for SIGINT/SIGTERM. It does not open
// a listener on the configured listen address; a transport that calls the
// Dispatcher is linked in separately.
//
// The CLI flag/UX layer itself is out of scope (§5 Non-goals): this
// executable takes exactly one positional argument, a path to the YAML
// configuration file, and nothing else.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/facebook/idb-sub000/boundary"
	"github.com/facebook/idb-sub000/config"
	"github.com/facebook/idb-sub000/executor"
	"github.com/facebook/idb-sub000/logging"
	"github.com/facebook/idb-sub000/metrics"
	"github.com/facebook/idb-sub000/storage"
	"github.com/facebook/idb-sub000/target"
	"github.com/facebook/idb-sub000/workspace"
)

const signalChannelSize = 3

func doMain() int {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <config.yaml>\n", os.Args[0])
		return 2
	}

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	z, err := newZapLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "building logger:", err)
		return 1
	}
	defer z.Sync()
	log := logging.New(z.Sugar())

	store, err := storage.Open(cfg.StorageRoot)
	if err != nil {
		log.Error("opening storage root failed", "err", err)
		return 1
	}

	reg := prometheus.NewRegistry()
	metrics.New(reg)
	go serveMetrics(reg)

	// Archive extraction, codesigning, bundle parsing, the platform
	// adapter and the device file service are external collaborators
	// (§5 Non-goals): a real deployment links a build of this binary
	// with concrete implementations of the collab interfaces wired in
	// here. This entrypoint demonstrates the wiring shape, not a
	// working platform backend.
	ws, err := workspace.New(cfg.TempRoot, nil)
	if err != nil {
		log.Error("opening temp workspace failed", "err", err)
		return 1
	}

	handle := target.New(cfg.Target, nil)
	exec := executor.New(store, ws, handle, nil, nil, nil, nil, nil, nil)
	dispatcher := boundary.New(exec)
	_ = dispatcher // consumed by the external gRPC transport, out of scope (§5).

	log.Info("idb_companion ready", "target", cfg.Target, "listen", cfg.Listen)
	return waitForSignal(log)
}

func newZapLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("logger.level %q: %w", cfg.Level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	switch cfg.Destination {
	case "", "stderr":
		zc.OutputPaths = []string{"stderr"}
	case "stdout":
		zc.OutputPaths = []string{"stdout"}
	default:
		zc.OutputPaths = []string{cfg.Destination}
	}
	return zc.Build()
}

func serveMetrics(reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	http.ListenAndServe("localhost:9090", mux)
}

func waitForSignal(log *logging.Logger) int {
	sc := make(chan os.Signal, signalChannelSize)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sc
	log.Info("caught signal, exiting", "signal", sig.String())
	return 0
}

func main() {
	os.Exit(doMain())
}
