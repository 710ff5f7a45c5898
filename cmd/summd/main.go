// Command summd is the background supervisor daemon: it owns the
// session registry, the tmux-backed multiplexer, and the request
// socket that the summ client talks to.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/JhihJian/SUMM-Daemon/internal/config"
	"github.com/JhihJian/SUMM-Daemon/internal/daemon"
	"github.com/JhihJian/SUMM-Daemon/internal/fsys"
	"github.com/JhihJian/SUMM-Daemon/internal/hooks"
	"github.com/JhihJian/SUMM-Daemon/internal/logging"
	"github.com/JhihJian/SUMM-Daemon/internal/multiplexer"
	"github.com/JhihJian/SUMM-Daemon/internal/registry"
	"github.com/JhihJian/SUMM-Daemon/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	base, err := config.BaseDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "summd: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "summd: creating %s: %v\n", base, err) //nolint:errcheck // best-effort stderr
		return 1
	}

	cfg, err := config.Load(base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "summd: loading config: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	lock, err := daemon.AcquireLock(base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "summd: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	defer daemon.ReleaseLock(lock) //nolint:errcheck // best-effort cleanup

	var console io.Writer
	if logging.IsTerminal(os.Stdout) {
		console = os.Stdout
	}
	log, logCloser, err := logging.New(cfg.LogFile, cfg.LogLevel, console)
	if err != nil {
		fmt.Fprintf(os.Stderr, "summd: setting up logging: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	defer logCloser.Close() //nolint:errcheck // best-effort cleanup

	var rec *telemetry.Recorder
	if cfg.MetricsEndpoint != "" {
		ctx := context.Background()
		shutdown, err := telemetry.Init(ctx, cfg.MetricsEndpoint)
		if err != nil {
			log.Warn("telemetry: initialization failed, continuing without metrics", "error", err)
		} else {
			defer shutdown(ctx) //nolint:errcheck // best-effort cleanup
		}
	}
	rec = telemetry.NewRecorder()

	mux := multiplexer.NewTmux()
	mux.Timeout = cfg.MuxTimeoutDuration()
	if err := mux.CheckAvailable(); err != nil {
		fmt.Fprintf(os.Stderr, "summd: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	fs := fsys.OSFS{}
	if _, err := hooks.InstallScript(fs, base); err != nil {
		log.Warn("installing hook script", "error", err)
	}

	reg := registry.New()
	if err := daemon.Recover(fs, mux, cfg, reg, log); err != nil {
		log.Warn("recovery pass failed", "error", err)
	}

	stopWatch := daemon.WatchConfig(base, log)
	defer stopWatch()

	handler := &daemon.Handler{
		FS:        fs,
		Mux:       mux,
		Registry:  reg,
		Config:    cfg,
		Log:       log,
		Telemetry: rec,
		Base:      base,
	}

	server := &daemon.Server{SocketPath: cfg.SocketPath, Handler: handler, Log: log, RequestTimeout: cfg.RequestTimeoutDuration()}
	if err := server.Listen(); err != nil {
		fmt.Fprintf(os.Stderr, "summd: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	monitor := &daemon.Monitor{
		FS:        fs,
		Mux:       mux,
		Registry:  reg,
		Config:    cfg,
		Interval:  cfg.MonitorIntervalDuration(),
		Log:       log,
		Telemetry: rec,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go monitor.Run(ctx)

	log.Info("summd started", "pid", os.Getpid(), "socket", cfg.SocketPath, "sessions_dir", cfg.SessionsDir)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(ctx) }()

	select {
	case <-ctx.Done():
		log.Info("summd shutting down")
		_ = server.Close()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error("server exited unexpectedly", "error", err)
			return 1
		}
	}

	return 0
}
