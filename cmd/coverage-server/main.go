package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/veteranop/vetrender/core"
	"github.com/veteranop/vetrender/internal/config"
	"github.com/veteranop/vetrender/internal/httpapi"
	"github.com/veteranop/vetrender/internal/logging"
	"github.com/veteranop/vetrender/internal/observability"
	"github.com/veteranop/vetrender/pkg/antenna"
	"github.com/veteranop/vetrender/pkg/elevation"
	"github.com/veteranop/vetrender/pkg/rf"
)

func main() {
	configDir := flag.String("config-dir", ".", "Directory containing coverage-server.cfg.json")
	listenAddr := flag.String("listen-addr", "", "HTTP address the coverage API listens on (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics (overrides config)")
	patternPath := flag.String("antenna-pattern", "", "Path to an antenna pattern XML file; omit for an isotropic antenna")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configDir)
	if err != nil {
		logging.NewFromEnv().Error(ctx, "failed to load config", logging.String("error", err.Error()))
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, AddSource: true})

	collector, err := observability.NewCoverageCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}

	pattern, err := loadPattern(*patternPath)
	if err != nil {
		log.Error(ctx, "failed to load antenna pattern",
			logging.String("path", *patternPath), logging.String("error", err.Error()))
		os.Exit(1)
	}

	elev := elevation.NewClient(
		elevation.WithBaseURL(cfg.Elevation.BaseURL),
		elevation.WithTimeout(time.Duration(cfg.Elevation.TimeoutSeconds)*time.Second),
	)

	engine := core.NewEngine(pattern, elev, rf.KnifeEdgeModel{}, rf.ERPToEIRP,
		core.WithLogger(log),
		core.WithMetricsRecorder(collector),
		core.WithElevationWorkers(cfg.Workers),
	)

	metricsSrv := serveMetrics(cfg.MetricsAddr, collector, log)

	api := httpapi.NewServer(engine, collector, log)
	apiSrv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.Handler(),
	}

	log.Info(ctx, "starting coverage API server",
		logging.String("addr", cfg.ListenAddr),
		logging.String("antenna", pattern.Name()))
	go func() {
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "API server exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down coverage server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)
}

func loadPattern(path string) (*antenna.Pattern, error) {
	if path == "" {
		return antenna.NewOmni(), nil
	}
	return antenna.LoadXML(path)
}

func serveMetrics(addr string, collector *observability.CoverageCollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
