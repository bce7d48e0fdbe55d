package lifecycle

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/agilira/argus"

	"github.com/c360/brokerconf/conf"
	"github.com/c360/brokerconf/errors"
)

// Watcher hot-reloads a Manager from a configuration file. On every change
// it re-parses the file (the parser is tolerant, so a half-written file
// still produces a document) and hands the result to Manager.Apply; the
// validator and the engine keep their usual veto. Apply failures are
// logged, never fatal: the running configuration stays in place until a
// good file shows up.
type Watcher struct {
	manager *Manager
	path    string
	watcher *argus.Watcher
	logger  *slog.Logger
	running atomic.Bool
	stopped atomic.Bool
}

// NewWatcher creates a watcher for the configuration file at path.
func NewWatcher(manager *Manager, path string, opts Options, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}

	argusWatcher := argus.New(argus.Config{
		PollInterval:         opts.WatchInterval.Std(),
		MaxWatchedFiles:      1,
		OptimizationStrategy: argus.OptimizationSingleEvent,
		ErrorHandler: func(err error, filePath string) {
			logger.Error("Configuration file watching error", "error", err, "file", filePath)
		},
	})

	return &Watcher{
		manager: manager,
		path:    path,
		watcher: argusWatcher,
		logger:  logger,
	}
}

// Start applies the file once, then begins watching it for changes. A
// stopped watcher cannot be restarted.
func (w *Watcher) Start(ctx context.Context) error {
	if w.stopped.Load() {
		return errors.WrapInvalid(errors.ErrWatcherStopped, "Watcher", "Start", "check state")
	}
	if !w.running.CompareAndSwap(false, true) {
		return errors.WrapInvalid(errors.ErrWatcherRunning, "Watcher", "Start", "check state")
	}

	doc, err := conf.ParseFile(w.path)
	if err != nil {
		w.running.Store(false)
		return errors.Wrap(err, "Watcher", "Start", "parse initial configuration")
	}
	if err := w.apply(ctx, doc); err != nil {
		w.running.Store(false)
		return err
	}

	if err := w.watcher.Watch(w.path, func(event argus.ChangeEvent) {
		w.handleChange(ctx, event)
	}); err != nil {
		w.running.Store(false)
		return errors.WrapTransient(err, "Watcher", "Start", "register file watch")
	}
	if err := w.watcher.Start(); err != nil {
		w.running.Store(false)
		return errors.WrapTransient(err, "Watcher", "Start", "start file watcher")
	}

	w.logger.Info("Watching configuration file", "path", w.path)
	return nil
}

// Stop permanently stops the watcher. The manager and its current
// configuration are untouched.
func (w *Watcher) Stop() error {
	if !w.stopped.CompareAndSwap(false, true) {
		return nil // Already stopped
	}
	w.running.Store(false)
	if err := w.watcher.Stop(); err != nil {
		return errors.WrapTransient(err, "Watcher", "Stop", "stop file watcher")
	}
	return nil
}

func (w *Watcher) handleChange(ctx context.Context, event argus.ChangeEvent) {
	if w.stopped.Load() {
		return
	}

	// A deleted file is not a request to unconfigure the broker.
	if event.IsDelete {
		w.logger.Warn("Configuration file deleted, keeping current configuration", "path", event.Path)
		return
	}

	w.logger.Info("Configuration file changed", "path", event.Path, "mod_time", event.ModTime)

	doc, err := conf.ParseFile(event.Path)
	if err != nil {
		w.logger.Error("Failed to read changed configuration", "error", err, "path", event.Path)
		return
	}

	if err := w.apply(ctx, doc); err != nil {
		w.logger.Error("Failed to apply changed configuration", "error", err, "path", event.Path)
	}
}

func (w *Watcher) apply(ctx context.Context, doc *conf.Document) error {
	result, err := w.manager.Apply(ctx, doc)
	if err != nil {
		return err
	}
	if !result.OK {
		w.logger.Warn("Configuration from file not applied", "reason", result.Reason, "path", w.path)
		return nil
	}
	w.logger.Info("Configuration from file applied",
		"path", w.path,
		"version", result.Record.Version,
		"changes", len(result.Diff))
	return nil
}
