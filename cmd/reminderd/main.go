package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reminder/internal/config"
	appLog "reminder/internal/log"
	"reminder/internal/notify"
	"reminder/internal/runner"
	"reminder/internal/schedule"
	"reminder/internal/web"
)

var version = "dev"

type flagConfig struct {
	configPath string
	listen     string
	notifier   string
	once       bool
}

func main() {
	os.Exit(run())
}

func run() int {
	flags := parseFlags()
	defer appLog.Sync()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		return 1
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.notifier != "" {
		conf.Notifier = flags.notifier
	}
	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		return 1
	}
	if err := appLog.Configure(conf.Log.Level, conf.Log.Format); err != nil {
		appLog.Error("failed to configure logging", err)
		return 1
	}
	appLog.Info("reminderd starting", "version", version)

	loc, err := conf.Location()
	if err != nil {
		appLog.Error("invalid timezone", err)
		return 1
	}

	// The daemon refuses to start on a broken schedule; later reload
	// failures keep the previous one.
	dir := conf.ScheduleDir()
	holder, err := schedule.NewHolder(dir)
	if err != nil {
		appLog.Error("failed to load schedule", err, "dir", dir)
		return 1
	}
	logOverlaps(holder.Get())

	backend, err := notify.NewBackend(conf.Notifier)
	if err != nil {
		appLog.Error("failed to select notifier", err)
		return 1
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"schedule_dir", dir,
		"tick", conf.Tick,
		"notifier", backend.Name(),
		"once", flags.once,
	)

	r := runner.New(holder, backend, runner.Options{Location: loc, TickSpec: conf.Tick})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if flags.once {
		alerts := r.RunOnce(ctx, time.Now())
		appLog.Info("single tick finished", "alerts", len(alerts))
		return 0
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					_ = r.Reload()
					continue
				}
				appLog.Info("signal received, shutting down", "signal", sig.String())
				cancel()
				return
			}
		}
	}()

	srv := web.NewServer(conf, r, cancel)
	srvDone := make(chan error, 1)
	go func() {
		srvDone <- srv.Serve(ctx)
	}()

	if err := r.Start(ctx); err != nil {
		appLog.Error("failed to start runner", err)
		cancel()
		<-srvDone
		return 1
	}

	code := 0
	select {
	case <-ctx.Done():
		if err := <-srvDone; err != nil {
			appLog.Error("HTTP server shutdown failed", err)
		}
	case err := <-srvDone:
		if err != nil {
			appLog.Error("HTTP server failed", err, "listen", conf.Listen)
			code = 1
		}
		cancel()
	}

	r.Wait()
	appLog.Info("reminderd exiting")
	return code
}

func logOverlaps(b *schedule.Bundle) {
	for _, p := range []schedule.Parity{schedule.Odd, schedule.Even} {
		for _, ds := range b.WeekSchedule(p) {
			for _, ow := range schedule.FindOverlaps(ds) {
				appLog.Warn("overlapping blocks", "week", p.String(), "overlap", ow.String())
			}
		}
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", config.DefaultPath(), "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.notifier, "notifier", "", "Alert backend: auto, macos, linux or log (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run a single tick for the current minute and exit")

	flag.Parse()

	return cfg
}
