package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/worddee/internal/api"
	"github.com/vytor/worddee/internal/config"
	"github.com/vytor/worddee/internal/dashboard"
	"github.com/vytor/worddee/internal/i18n"
	"github.com/vytor/worddee/internal/jobs"
	"github.com/vytor/worddee/internal/logger"
	"github.com/vytor/worddee/internal/metrics"
	"github.com/vytor/worddee/internal/practice"
	"github.com/vytor/worddee/internal/wordapi"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Worddee Web Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Error("invalid timezone: %v", err)
		os.Exit(1)
	}

	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("api_base_url=%s", cfg.APIBaseURL)
	log.Debug("api_timeout=%v", cfg.APITimeout)
	log.Debug("api_rate_limit=%.1f/s burst=%d", cfg.APIRateLimit, cfg.APIRateBurst)
	log.Debug("locale=%s timezone=%s", cfg.Locale, loc)
	log.Debug("timer_tick=%v", cfg.TimerTick)
	log.Debug("session_ttl=%v session_sweep=%v", cfg.SessionTTL, cfg.SessionSweep)
	log.Debug("submit_rate_per_min=%d", cfg.SubmitRatePerMin)

	m := metrics.New()
	tr := i18n.New(cfg.Locale)

	client, err := wordapi.New(cfg.APIBaseURL,
		wordapi.WithTimeout(cfg.APITimeout),
		wordapi.WithRateLimit(cfg.APIRateLimit, cfg.APIRateBurst),
		wordapi.WithMetrics(m),
	)
	if err != nil {
		log.Error("failed to create backend client: %v", err)
		os.Exit(1)
	}

	log.Debug("loading templates")
	tmpl, err := api.LoadTemplates()
	if err != nil {
		log.Error("failed to load templates: %v", err)
		os.Exit(1)
	}

	practiceSvc := practice.NewService(client, practice.NewRegistry(
		practice.WithLocation(loc),
		practice.WithRegistryMetrics(m),
		practice.WithSubmitLimit(cfg.SubmitRatePerMin),
	), tr, m)

	probe := &jobs.BackendProbe{Backend: client, Timeout: 5 * time.Second, Metrics: m}
	scheduler := jobs.NewScheduler(m)
	if err := scheduler.Every(cfg.SessionSweep, &jobs.SweepSessionsJob{Sessions: practiceSvc.Registry(), TTL: cfg.SessionTTL}); err != nil {
		log.Error("failed to schedule session sweep: %v", err)
		os.Exit(1)
	}
	if err := scheduler.Every(30*time.Second, probe); err != nil {
		log.Error("failed to schedule backend probe: %v", err)
		os.Exit(1)
	}
	if err := scheduler.RunNow(context.Background(), probe.Name()); err != nil {
		log.Warn("backend API not reachable at %s yet: %v", cfg.APIBaseURL, err)
	}
	scheduler.Start()

	srv := &api.Server{
		Practice:  practiceSvc,
		Dashboard: dashboard.NewAggregator(client, loc, tr),
		Backend:   client,
		Probe:     probe,
		Templates: tmpl,
		Metrics:   m,
		Clock:     practice.SystemClock{},
		TimerTick: cfg.TimerTick,
	}

	// Timer streams clear their own write deadline.
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Ends open timer streams once listeners are closed.
	httpServer.RegisterOnShutdown(func() {
		log.Debug("closed %d practice sessions", practiceSvc.Registry().CloseAll())
	})

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping scheduler")
	scheduler.Stop()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Info("===========================================")
	log.Info("Worddee Web Stopped")
	log.Info("===========================================")
}
