// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Root command, flags and process wiring.

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/riskapi-console/internal/config"
	"github.com/jeranaias/riskapi-console/internal/logger"
	"github.com/jeranaias/riskapi-console/internal/riskapi"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App holds the process-level collaborators. Tests replace them.
type App struct {
	Stdout io.Writer
	Stderr io.Writer

	// Getenv and StdoutTTY feed the color decision.
	Getenv    func(string) string
	StdoutTTY bool

	Passwords  PasswordReader
	NewLibrary func(cfg *config.Config, log *logger.Logger) Library
	NewShell   func(opts ShellOptions) Shell
	NewLogger  func(opts logger.Options) (*logger.Logger, error)
}

// DefaultApp wires the real terminal, library and shell.
func DefaultApp() *App {
	return &App{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Getenv:    os.Getenv,
		StdoutTTY: IsStdoutTTY(),
		Passwords: NewTermPasswordReader(),
		NewLibrary: func(cfg *config.Config, log *logger.Logger) Library {
			return NewLibrary(riskapi.NewLibrary(cfg, log))
		},
		NewShell: func(opts ShellOptions) Shell {
			return NewConsole(opts)
		},
		NewLogger: logger.New,
	}
}

// runFlags are the root flags that do not affect the connection.
type runFlags struct {
	configPath string
	verbose    bool
	noColor    bool
}

// Main runs the console with args and returns the process exit code.
// Errors are reported on app.Stderr as "ERROR: <message>".
func Main(ctx context.Context, app *App, args []string) int {
	cmd := NewRootCommand(app)
	cmd.SetArgs(args)
	cmd.SetOut(app.Stdout)
	cmd.SetErr(app.Stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		ReportError(app.Stderr, err)
		return ExitCode(err)
	}
	return ExitSuccess
}

// NewRootCommand builds the riskapi command.
func NewRootCommand(app *App) *cobra.Command {
	var (
		opts  Options
		flags runFlags
	)

	cmd := &cobra.Command{
		Use:   "riskapi",
		Short: "Interactive RiskAPI console",
		Long: `riskapi connects to a RiskAPI server and opens an interactive console
with the client library and the connection (as "conn") in scope.

Connection parameters missing from the flags are read from
~/.riskapi/config.toml, then RISKAPI_* environment variables, then the
built-in defaults. When no password is found you are prompted for one.

  riskapi --host api.example.com --customer acme --username jane
  riskapi --local`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Usage is for flag mistakes, not connection failures.
			cmd.SilenceUsage = true
			return app.run(cmd.Context(), opts, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Host, "host", "", "RiskAPI host[:port] (default "+config.DefaultHost+")")
	f.StringVar(&opts.Customer, "customer", "", "customer identifier (default "+config.DefaultCustomer+")")
	f.StringVar(&opts.Username, "username", "", "user name for basic authentication")
	f.StringVar(&opts.Password, "password", "", "password; prompted for when empty")
	f.BoolVar(&opts.Insecure, "insecure", false, "use http instead of https")
	f.BoolVar(&opts.Local, "local", false, "connect to the local development server ("+config.DefaultLocalHost+")")
	f.StringVar(&flags.configPath, "config", "", "config file path (default ~/.riskapi/config.toml)")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	f.BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "riskapi version %s\n", Version)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(out, "  Build date: %s\n", BuildDate)
		},
	}
}

// run loads the configuration, sets up logging and hands over to the
// launcher.
func (app *App) run(ctx context.Context, opts Options, flags runFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFromPath(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fatal(fmt.Errorf("load config: %w", err))
	}

	level := cfg.Console.LogLevel
	if flags.verbose {
		level = "debug"
	}
	log, err := app.NewLogger(logger.Options{Path: cfg.Console.LogFile, Level: level, Role: "console"})
	if err != nil {
		// RELIABILITY: a broken log file must not keep the console from starting.
		fmt.Fprintf(app.Stderr, "warning: logging disabled: %v\n", err)
		log = logger.Nop()
	}
	defer log.Close()
	ctx = log.WithContext(ctx)

	log.Info().
		Str("version", Version).
		Bool("local", opts.Local).
		Msg("console starting")
	log.Debug().Str("config", cfg.String()).Msg("effective configuration")

	colors := ResolveColors(cfg.Console.Color, flags.noColor, app.Getenv, app.StdoutTTY)
	launcher := &Launcher{
		Lib:       app.NewLibrary(cfg, log),
		Passwords: app.Passwords,
		Shell: app.NewShell(ShellOptions{
			HistoryFile: cfg.Console.HistoryFile,
			Out:         app.Stdout,
			Err:         app.Stderr,
			Colors:      colors,
			Logger:      log,
		}),
	}
	return launcher.Run(ctx, opts)
}
