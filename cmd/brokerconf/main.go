package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/brokerconf/conf"
	"github.com/c360/brokerconf/lifecycle"
	"github.com/c360/brokerconf/natsengine"
)

const (
	// Version is set at build time
	Version = "0.1.0"
	// BuildTime is set at build time
	BuildTime = "dev"

	appName = "brokerconf"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n", r)
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("%s %s (built %s)\n", appName, Version, BuildTime)
		return nil
	}

	if err := validateFlags(cfg); err != nil {
		return err
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)

	doc, err := conf.ParseFile(cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}

	if cfg.Validate {
		violations := conf.Validate(doc)
		if len(violations) > 0 {
			for _, v := range violations {
				fmt.Fprintf(os.Stderr, "%s: %s\n", v.Path, v.Message)
			}
			return fmt.Errorf("configuration invalid: %d violation(s)", len(violations))
		}
		fmt.Println("configuration valid")
		return nil
	}

	opts := lifecycle.DefaultOptions()
	if cfg.OptionsPath != "" {
		opts, err = lifecycle.LoadOptions(cfg.OptionsPath)
		if err != nil {
			return fmt.Errorf("loading options: %w", err)
		}
	}

	engine, err := natsengine.Connect(cfg.NATSURL, natsengine.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("connecting to control plane: %w", err)
	}

	manager, err := lifecycle.NewManager(engine, opts, logger, prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("creating manager: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Watch {
		watcher := lifecycle.NewWatcher(manager, cfg.ConfigPath, opts, logger)
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
		defer watcher.Stop()
	} else {
		result, err := manager.Apply(ctx, doc)
		if err != nil {
			return fmt.Errorf("applying configuration: %w", err)
		}
		if !result.OK {
			return fmt.Errorf("configuration rejected: %s", result.Reason)
		}
		logger.Info("configuration applied",
			"version", result.Record.Version,
			"op_id", result.OpID)
	}

	logger.Info("running", "config", cfg.ConfigPath, "watch", cfg.Watch)
	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout.Std())
	defer cancel()
	manager.Shutdown(shutdownCtx)

	return nil
}
