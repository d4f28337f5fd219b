package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/keyrx/keyrx/pkg/artifact"
	"github.com/keyrx/keyrx/pkg/config"
	"github.com/keyrx/keyrx/pkg/keyevent"
	"github.com/keyrx/keyrx/pkg/orchestrator"
	"github.com/keyrx/keyrx/pkg/platform"
	"github.com/keyrx/keyrx/pkg/platform/sim"
)

const (
	exitSuccess   = 0
	exitUsage     = 1
	exitConfig    = 2
	exitPrivilege = 3
	exitRuntime   = 4
)

// RunDaemon implements `keyrxd run`.
func RunDaemon(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "daemon config file (required)")
	debug := fs.Bool("debug", false, "verbose console logging")
	testMode := fs.Bool("test-mode", false, "run against the in-process sim adapter instead of a real device")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *configPath == "" {
		fmt.Fprintln(stderr, "Error: --config is required")
		return exitConfig
	}

	daemon, err := config.LoadDaemon(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConfig
	}
	env, err := config.LoadEnvFromOS()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConfig
	}
	if *debug {
		env.Debug = true
	}
	if *testMode {
		env.TestMode = true
	}

	root, err := artifact.Load(daemon.ArtifactPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: loading artifact %s: %v\n", daemon.ArtifactPath, err)
		return exitConfig
	}

	logger, closeLogger, err := buildLogger(daemon, env)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConfig
	}
	defer closeLogger()

	adapter, closeAdapter, err := selectAdapter(env)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitPrivilege
	}
	if closeAdapter != nil {
		defer closeAdapter.Close()
	}

	orch := orchestrator.New(adapter, logger, root)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := orch.Run(ctx)
	if runErr == nil || errors.Is(runErr, context.Canceled) {
		return exitSuccess
	}
	fmt.Fprintf(stderr, "Error: %v\n", runErr)
	var startupErr *orchestrator.StartupError
	if errors.As(runErr, &startupErr) {
		return exitPrivilege
	}
	return exitRuntime
}

func buildLogger(daemon config.Daemon, env config.Env) (keyevent.Logger, func(), error) {
	var loggers []keyevent.Logger

	if env.Debug {
		level := slog.LevelInfo
		if env.LogLevel == "debug" {
			level = slog.LevelDebug
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		loggers = append(loggers, keyevent.NewSlogAdapter(slog.New(handler)))
	}

	closeFn := func() {}
	if daemon.EventLogPath != "" {
		fl, err := keyevent.NewFileLogger(daemon.EventLogPath)
		if err != nil {
			return nil, closeFn, fmt.Errorf("opening event log %s: %w", daemon.EventLogPath, err)
		}
		loggers = append(loggers, fl)
		closeFn = func() { fl.Close() }
	}

	if len(loggers) == 0 {
		return keyevent.NoopLogger{}, closeFn, nil
	}
	return keyevent.NewMultiLogger(loggers...), closeFn, nil
}

// selectAdapter picks the sim adapter under --test-mode, otherwise the
// native platform.Adapter for this OS (pkg/platform/linuxevdev on
// Linux; unsupported elsewhere until a second native adapter exists).
func selectAdapter(env config.Env) (platform.Adapter, io.Closer, error) {
	if env.TestMode {
		return sim.New(nil), nil, nil
	}
	return newNativeAdapter()
}
