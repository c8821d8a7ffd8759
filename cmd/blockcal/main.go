package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"blockcal/internal/config"
	appLog "blockcal/internal/log"
	"blockcal/internal/pipeline"
	"blockcal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	out        string
	listen     string
	serve      bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI flags override config file and environment.
	if flags.out != "" {
		conf.Output = flags.out
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("blockcal starting",
		"output", conf.Output,
		"serve", flags.serve,
		"airbnb_configured", conf.AirbnbURL != "",
		"booking_configured", conf.BookingURL != "",
	)

	if !flags.serve {
		runOnce(conf)
		return
	}

	if err := runServe(conf); err != nil {
		appLog.Error("serve mode failed", err)
		os.Exit(1)
	}
}

// runOnce executes a single merge cycle and exits. This is the default mode:
// fetch both feeds, write the merged calendar, report the count.
func runOnce(conf *config.Config) {
	res, err := pipeline.Run(context.Background(), conf)
	if err != nil {
		appLog.Error("merge failed", err)
		os.Exit(1)
	}
	fmt.Printf("blocked ranges written: %d\n", res.Count)
}

// runServe starts the HTTP server and a cron-driven refresh loop. Each
// refresh is the same one-shot pipeline; a failed refresh keeps the previous
// document in place.
func runServe(conf *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	srv := web.NewServer(conf)

	// Initial merge so /calendar.ics is available immediately. A failure
	// here is not fatal: the scheduler retries on the next tick.
	if res, err := srv.Refresh(ctx); err != nil {
		appLog.Error("initial merge failed", err)
	} else {
		appLog.Info("initial merge completed", "blocked_ranges", res.Count)
	}

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, func() {
		if res, err := srv.Refresh(ctx); err != nil {
			appLog.Error("scheduled merge failed", err)
		} else {
			appLog.Info("scheduled merge completed", "blocked_ranges", res.Count)
		}
	}); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", conf.RefreshCron, err)
	}
	c.Start()
	defer c.Stop()

	httpSrv := &http.Server{
		Addr:    conf.Listen,
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen, "refresh", conf.RefreshCron)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case sig := <-sigCh:
		appLog.Info("signal received, shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP server shutdown failed", err)
	}

	appLog.Info("blockcal exiting")
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "", "Path to config file (optional; env vars alone are enough)")
	flag.StringVar(&cfg.out, "out", "", "Output path for the merged calendar (overrides config if set)")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address for -serve (overrides config if set)")
	flag.BoolVar(&cfg.serve, "serve", false, "Serve the merged calendar over HTTP and refresh on a schedule")

	flag.Parse()

	return cfg
}
