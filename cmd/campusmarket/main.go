package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"

	"campusmarket/internal/cache"
	"campusmarket/internal/config"
	"campusmarket/internal/events"
	"campusmarket/internal/http/handlers"
	applog "campusmarket/internal/log"
	"campusmarket/internal/metrics"
	"campusmarket/internal/repos"
	"campusmarket/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	var logOut io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			applog.With("startup.logfile", map[string]any{"path": cfg.LogFile}).WithError(err).Warn("could not open log file")
		} else {
			defer f.Close()
			logOut = io.MultiWriter(os.Stdout, f)
		}
	}
	applog.Setup(logOut, cfg.LogLevel)

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		applog.With("startup.db", nil).WithError(err).Fatal("open database")
	}

	pub, err := events.New(cfg.EventsBackend, cfg.AMQPURL, cfg.NATSURL)
	if err != nil {
		// Events are best-effort; fall back to noop.
		applog.With("startup.events", map[string]any{"backend": cfg.EventsBackend}).WithError(err).Warn("event bus unavailable, using noop")
		pub = events.Noop{}
	}
	c := cache.Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
	m := metrics.New()

	env := &services.Env{
		Store:   repos.NewStore(db),
		Events:  pub,
		Metrics: m,
		Cache:   c,
	}
	app := handlers.NewApp(handlers.NewDeps(env, cfg), handlers.Limits{
		CookieSecure: cfg.CookieSecure,
		AccessLog:    true,
	}, m)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		applog.With("shutdown", nil).Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			applog.With("shutdown.http", nil).WithError(err).Error("http shutdown")
		}
	}()

	applog.With("startup.listen", map[string]any{"port": cfg.Port, "cache": c != nil, "events": cfg.EventsBackend}).Info("listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.With("server.listen", nil).WithError(err).Error("listen")
	}

	var errs *multierror.Error
	if err := pub.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := c.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := db.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := errs.ErrorOrNil(); err != nil {
		applog.With("shutdown.close", nil).WithError(err).Error("closing resources")
		os.Exit(1)
	}
}
