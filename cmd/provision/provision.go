package main

import (
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/cruciblehq/provision/internal"
	"github.com/cruciblehq/provision/internal/cli"
)

// The entry point for provision.
//
// Initializes logging, displays startup information, and executes the root
// command. If any error occurs during execution, it exits with a non-zero code.
func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("provision is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// Creates a logger seeded from build-time linker flags.
//
// The logger is reconfigured after flag parsing via cli.Execute.
func logger() *slog.Logger {
	handler := log.NewWithOptions(os.Stderr, log.Options{
		Level:  logLevel(),
		Prefix: internal.Name,
	})
	return slog.New(handler)
}

// Returns the log level derived from build-time linker flags.
func logLevel() log.Level {
	if internal.IsDebug() {
		return log.DebugLevel
	}
	if internal.IsQuiet() {
		return log.WarnLevel
	}
	return log.InfoLevel
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
