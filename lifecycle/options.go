package lifecycle

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/brokerconf/errors"
)

// Duration is a time.Duration that unmarshals from YAML strings like "5s"
// or "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.WrapInvalid(err, "lifecycle", "UnmarshalYAML", "parse duration")
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Options tunes an orchestrator instance. The zero value is not usable;
// start from DefaultOptions or LoadOptions.
type Options struct {
	// ShutdownTimeout bounds how long Shutdown waits for the gate before
	// proceeding forced.
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`

	// HistoryLimit is the default number of records History returns when
	// the caller does not say.
	HistoryLimit int `yaml:"history_limit"`

	// WatchInterval is the poll interval for the conf-file watcher.
	WatchInterval Duration `yaml:"watch_interval"`
}

// DefaultOptions returns the tuning used when no options file is given.
func DefaultOptions() Options {
	return Options{
		ShutdownTimeout: Duration(5 * time.Second),
		HistoryLimit:    10,
		WatchInterval:   Duration(2 * time.Second),
	}
}

// LoadOptions reads an Options YAML file, filling unset fields from
// DefaultOptions.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, errors.WrapInvalid(err, "lifecycle", "LoadOptions", "read options file")
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return DefaultOptions(), errors.WrapInvalid(err, "lifecycle", "LoadOptions", "parse options file")
	}

	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultOptions().ShutdownTimeout
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultOptions().HistoryLimit
	}
	if opts.WatchInterval <= 0 {
		opts.WatchInterval = DefaultOptions().WatchInterval
	}

	return opts, nil
}
