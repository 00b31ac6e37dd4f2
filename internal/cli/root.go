package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/cruciblehq/provision/internal"
	"github.com/cruciblehq/provision/internal/settings"
)

// Represents the root command.
var RootCmd struct {
	Quiet   bool       `short:"q" help:"Suppress informational output."`
	Verbose bool       `short:"v" help:"Enable verbose output."`
	Debug   bool       `short:"d" help:"Enable debug output."`
	Config  string     `help:"Configuration file." placeholder:"FILE" type:"path"`
	Build   BuildCmd   `cmd:"" help:"Provision an image from a build context."`
	Plan    PlanCmd    `cmd:"" help:"Validate a build and print the commands every stage would run."`
	Serve   ServeCmd   `cmd:"" help:"Start the build daemon."`
	Status  StatusCmd  `cmd:"" help:"Show the status of the build daemon."`
	Stop    StopCmd    `cmd:"" help:"Stop the build daemon."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, loads settings, configures logging, and runs the selected
// subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Provisions a Python application image in five stages: base environment, source, package, purge and runtime configuration."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	s, err := settings.Load(RootCmd.Config)
	if err != nil {
		return err
	}

	configureLogger(s)

	return kongCtx.Run(s)
}

// Configures the global logger from CLI flags and settings.
func configureLogger(s *settings.Settings) {
	logger, ok := slog.Default().Handler().(*log.Logger)
	if !ok {
		return // Not a charmbracelet logger, nothing to configure
	}

	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()
	verbose := RootCmd.Verbose || internal.IsVerbose()

	// Configure formatter
	switch {
	case s.Log.Format == settings.FormatJSON:
		logger.SetFormatter(log.JSONFormatter)
	case !isatty(os.Stderr):
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}
	logger.SetReportTimestamp(verbose || !isatty(os.Stderr))
	logger.SetReportCaller(debug && verbose)

	// Configure level
	switch {
	case debug:
		logger.SetLevel(log.DebugLevel)
	case quiet:
		logger.SetLevel(log.WarnLevel)
	default:
		logger.SetLevel(parseLevel(s.Log.Level))
	}

	logger.SetOutput(os.Stderr)
}

// Maps a settings log level onto a logger level, defaulting to info.
func parseLevel(level string) log.Level {
	if level == "warning" {
		level = "warn"
	}
	l, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// Whether the given file is an interactive terminal.
func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
