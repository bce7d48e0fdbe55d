package main

import (
	"flag"
	"fmt"
	"os"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	OptionsPath string
	NATSURL     string
	Watch       bool
	Validate    bool
	LogLevel    string
	LogFormat   string
	ShowVersion bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("BROKERCONF_CONFIG", "broker.conf"),
		"Path to broker configuration file (env: BROKERCONF_CONFIG)")

	flag.StringVar(&cfg.OptionsPath, "options",
		getEnv("BROKERCONF_OPTIONS", ""),
		"Path to orchestrator options YAML, empty for defaults (env: BROKERCONF_OPTIONS)")

	flag.StringVar(&cfg.NATSURL, "nats",
		getEnv("BROKERCONF_NATS_URL", "nats://localhost:4222"),
		"Control-plane NATS URL (env: BROKERCONF_NATS_URL)")

	flag.BoolVar(&cfg.Watch, "watch", false,
		"Watch the configuration file and hot-reload on change")

	flag.BoolVar(&cfg.Validate, "validate", false,
		"Parse and validate the configuration, then exit")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("BROKERCONF_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: BROKERCONF_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("BROKERCONF_LOG_FORMAT", "json"),
		"Log format: json, text (env: BROKERCONF_LOG_FORMAT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")

	flag.Parse()
	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion {
		return nil
	}
	if _, err := os.Stat(cfg.ConfigPath); err != nil {
		return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
