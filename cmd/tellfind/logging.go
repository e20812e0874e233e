package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"tellfind/internal/config"
)

// configureLoggerForCLI installs the default logger. The flag wins over
// the configured level (which already folds in the env override); an
// invalid flag is an error while an invalid configured level degrades
// to the default with a warning.
func configureLoggerForCLI(flagLevel, configLevel string) (string, error) {
	rawLevel, fromFlag := selectedLogLevel(flagLevel, configLevel)
	if err := configureDefaultLogger(rawLevel); err != nil {
		if fromFlag {
			return "", fmt.Errorf("invalid --log-level %q", flagLevel)
		}
		_ = configureDefaultLogger(config.DefaultLogLevel)
		return fmt.Sprintf("warning: invalid log level %q; defaulting to %s", configLevel, config.DefaultLogLevel), nil
	}
	return "", nil
}

func selectedLogLevel(flagLevel, configLevel string) (string, bool) {
	if strings.TrimSpace(flagLevel) != "" {
		return flagLevel, true
	}
	return configLevel, false
}

func configureDefaultLogger(rawLevel string) error {
	level, err := parseLogLevel(rawLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(level))
	return nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return slog.LevelInfo, nil
	}
	if strings.EqualFold(value, "warning") {
		value = "warn"
	}

	if numeric, err := strconv.Atoi(value); err == nil {
		return slog.Level(numeric), nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
