// Command gatewayd is the scheduler daemon: it loads configuration, opens
// the database, wires the scheduler facade and its metrics collaborators,
// and serves the HTTP surface until terminated.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fairgate/scheduler/pkg/config"
	"github.com/fairgate/scheduler/pkg/db"
	"github.com/fairgate/scheduler/pkg/httpapi"
	"github.com/fairgate/scheduler/pkg/logging"
	"github.com/fairgate/scheduler/pkg/metrics"
	"github.com/fairgate/scheduler/pkg/scheduler"
	"github.com/fairgate/scheduler/pkg/tailbuffer"
)

// shutdownGrace bounds how long in-flight requests get to finish once a
// termination signal arrives before the listeners are forced closed.
const shutdownGrace = 10 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfgPath := os.Getenv("SCHEDULER_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	tail := tailbuffer.NewTailBuffer(256 * 1024)
	log := logging.New("gatewayd", level, cfg.LogPath, tail)

	if err := db.Init(ctx, cfg.DatabaseURL, logging.WithComponent(log, "db")); err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	database := db.Get()
	defer database.Close()

	if err := database.Bootstrap(ctx); err != nil {
		log.WithError(err).Fatal("failed to bootstrap schema")
	}

	events := metrics.NewBroadcaster[any]()
	sched := scheduler.New(database, logging.WithComponent(log, "scheduler"), events, scheduler.Options{
		QueueTimeout:            cfg.QueueTimeout,
		ReservationTickInterval: cfg.ReservationTickInterval,
	})
	if err := sched.Start(ctx); err != nil {
		log.WithError(err).Fatal("failed to start scheduler")
	}

	dashboard := metrics.NewDashboard(logging.WithComponent(log, "dashboard"), sched.GateEvents, events, metrics.NewBroadcaster[any]())
	hostEvents := metrics.NewBroadcaster[metrics.HostStats]()
	hostCollector := metrics.NewCollector(logging.WithComponent(log, "hostinfo"), hostEvents)
	exporter := metrics.NewExporter(prometheus.DefaultRegisterer)

	apiServer := httpapi.NewServer(
		logging.WithComponent(log, "httpapi"),
		sched,
		database,
		exporter,
		dashboard,
		tail,
		nil,
		cfg.SchedulerToken,
	)

	httpServer := &http.Server{Addr: cfg.Listen, Handler: apiServer}
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: cfg.MetricsListen, Handler: metricsMux}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error { return sched.Run(groupCtx) })
	group.Go(func() error { return hostCollector.Run(groupCtx) })
	group.Go(func() error {
		log.WithField("addr", cfg.Listen).Info("listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		log.WithField("addr", cfg.MetricsListen).Info("metrics listening")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
		metricsServer.Shutdown(shutdownCtx)
		return nil
	})

	if err := group.Wait(); err != nil {
		log.WithError(err).Error("gatewayd exited with error")
		os.Exit(1)
	}
}
