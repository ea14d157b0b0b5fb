// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// fwconsole is the operator console for the firewall simulator: four
// shell terminals (firewall admin, LAN1 internal PC, LAN2 external PC,
// DMZ web server) multiplexed over one websocket connection, with a
// live firewall log panel and rule-set export and import.
//
// The console keeps no state between runs. When the simulator's
// session lifetime runs out the console says so and starts over with a
// fresh session.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/fwconsole/console"
	"github.com/bureau-foundation/fwconsole/lib/clock"
	"github.com/bureau-foundation/fwconsole/lib/config"
	"github.com/bureau-foundation/fwconsole/lib/consoleui"
	"github.com/bureau-foundation/fwconsole/lib/process"
	"github.com/bureau-foundation/fwconsole/lib/version"
	"github.com/bureau-foundation/fwconsole/protocol"
	"github.com/bureau-foundation/fwconsole/session"
	"github.com/bureau-foundation/fwconsole/transport"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

// options are the command-line flags. Empty strings mean "not given".
type options struct {
	configPath string
	serverURL  string
	exportDir  string
	codec      string
	logFile    string
	importPath string
}

func run() error {
	var opts options
	var showVersion bool

	flagSet := pflag.NewFlagSet("fwconsole", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "path to fwconsole.yaml (default: $"+config.ConfigEnvironmentVariable+", then built-in defaults)")
	flagSet.StringVar(&opts.serverURL, "server", "", "simulator websocket URL (ws:// or wss://)")
	flagSet.StringVar(&opts.exportDir, "export-dir", "", "directory rule and log exports are written to")
	flagSet.StringVar(&opts.codec, "codec", "", "preferred wire codec: json or cbor")
	flagSet.StringVar(&opts.logFile, "log-file", "", "write JSON log records to this file (in addition to the status bar)")
	flagSet.StringVar(&opts.importPath, "import", "", "rule set to load once connected")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if showVersion {
		version.Print(os.Stdout, "fwconsole")
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	startupLogger := newStartupLogger()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	timing, err := cfg.Server.Timing()
	if err != nil {
		return err
	}
	preferred, err := protocol.CodecByName(cfg.Server.Codec)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("fwconsole needs an interactive terminal on stdout")
	}

	startupLogger.Info("starting console",
		"server", cfg.Server.URL,
		"codec", preferred.Name(),
		"exports", cfg.Paths.Exports,
		"version", version.Short(),
	)

	// While the TUI owns the screen, warnings go to the status bar
	// rather than stderr.
	tuiHandler := consoleui.NewTUILogHandler(slog.LevelWarn)
	var handler slog.Handler = tuiHandler
	if opts.logFile != "" {
		fileHandler, closeFile, err := openFileLogHandler(opts.logFile)
		if err != nil {
			return fmt.Errorf("cannot open log file %s: %w", opts.logFile, err)
		}
		defer closeFile()
		handler = fanoutHandler{tuiHandler, fileHandler}
	}
	logger := slog.New(handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	realClock := clock.Real()
	client, err := transport.New(transport.Config{
		URL:               cfg.Server.URL,
		Codec:             preferred,
		DialTimeout:       timing.DialTimeout,
		KeepaliveInterval: timing.KeepaliveInterval,
		ReconnectMin:      timing.ReconnectMin,
		ReconnectMax:      timing.ReconnectMax,
		Clock:             realClock,
		Logger:            logger.With("component", "transport"),
	})
	if err != nil {
		return err
	}

	sessions := session.NewManager(realClock)
	defer sessions.Stop()

	controller := console.NewController(console.Config{
		Sender:          client,
		Resetter:        client,
		Session:         sessions,
		Clock:           realClock,
		Logger:          logger.With("component", "console"),
		ScrollbackLines: cfg.Terminal.ScrollbackLines,
		ExportDirectory: cfg.Paths.Exports,
		RulesExtension:  cfg.Rules.Extension,
	})

	model := consoleui.NewModel(consoleui.Config{
		Controller:      controller,
		Session:         sessions,
		Events:          client.Events(),
		Expired:         sessions.Expired(),
		Context:         ctx,
		ImportPath:      opts.importPath,
		ExportDirectory: cfg.Paths.Exports,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	tuiHandler.SetProgram(program)

	transportDone := make(chan error, 1)
	go func() {
		transportDone <- client.Run(ctx)
	}()

	_, err = program.Run()
	cancel()
	if transportErr := <-transportDone; transportErr != nil {
		startupLogger.Error("transport stopped", "error", transportErr)
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// loadConfig resolves the configuration file and applies flag
// overrides. Without --config or FWCONSOLE_CONFIG the built-in
// defaults are used.
func loadConfig(opts options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case opts.configPath != "":
		cfg, err = config.LoadFile(opts.configPath)
	case os.Getenv(config.ConfigEnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	if opts.serverURL != "" {
		cfg.Server.URL = opts.serverURL
	}
	if opts.exportDir != "" {
		cfg.Paths.Exports = opts.exportDir
	}
	if opts.codec != "" {
		cfg.Server.Codec = opts.codec
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newStartupLogger logs to stderr before the TUI starts and after it
// exits: text on a terminal, JSON otherwise.
func newStartupLogger() *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return slog.New(slog.NewTextHandler(os.Stderr, options))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, options))
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `fwconsole: operator console for the firewall simulator.

Connects to the simulator over a websocket and shows four terminals:
the firewall admin shell and three hosts on the LAN, the external
network and the DMZ. Commands typed into a terminal run on that host.

Usage:
  fwconsole [flags]

Keys:
  Tab / Shift-Tab   next / previous terminal
  F1-F4             select a terminal
  F5                firewall log panel (a/b/l/w filter, r refresh,
                    d download, x clear, Esc back)
  Ctrl-E            export the current rule set
  Ctrl-O            import a rule set
  Ctrl-Q            quit

Examples:
  # Connect to a local simulator with defaults
  fwconsole

  # Connect to a remote simulator using CBOR framing
  fwconsole --server wss://sim.example.net/ws --codec cbor

  # Load a saved rule set once connected
  fwconsole --import ~/fwconsole/20260301090000.rules

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

func openFileLogHandler(path string) (slog.Handler, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return handler, func() { file.Close() }, nil
}

// fanoutHandler is a slog.Handler that sends each record to multiple
// underlying handlers. A record is enabled if any sub-handler is
// enabled for that level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			errs = append(errs, handler.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
