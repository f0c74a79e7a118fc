// cuelane is a terminal editor for timed intervals over a media timeline.
//
// It loads a project file, lays its intervals out on a zoomable timeline
// and lets you drag their start and end markers, add and delete intervals,
// and follow a playhead. The project file is watched and reloaded on change.
//
// Usage:
//
//	cuelane                          # Auto-discover .cuelane/cuelane.{toml,yaml}
//	cuelane --config <path>          # Use a specific project file
//	cuelane --json                   # Dump the current state as JSON and exit
//	cuelane --yaml                   # Dump the current state as YAML and exit
//	cuelane --log-file cuelane.log   # Write logs to a file
//	cuelane --version                # Print version and exit
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/daviddao/cuelane/internal/config"
	"github.com/daviddao/cuelane/internal/datasource"
)

// Version is set via ldflags at build time (e.g. -X main.Version=v0.1.0).
var Version = "dev"

// defaultWidth sizes the timeline when there is no terminal to measure.
const defaultWidth = 80

type options struct {
	configPath string
	jsonMode   bool
	yamlMode   bool
	logLevel   string
	logFile    string
	noWatch    bool
	width      int
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "cuelane",
		Short:         "Edit timed intervals on a zoomable terminal timeline",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, stdout)
		},
	}
	cmd.SetVersionTemplate("cuelane {{.Version}}\n")

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to the project file (default: auto-discover)")
	f.BoolVar(&opts.jsonMode, "json", false, "dump current state as JSON and exit (no TUI)")
	f.BoolVar(&opts.yamlMode, "yaml", false, "dump current state as YAML and exit (no TUI)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides the project file)")
	f.StringVar(&opts.logFile, "log-file", "", "write logs to this file (default: discard)")
	f.BoolVar(&opts.noWatch, "no-watch", false, "do not reload the project file on change")
	f.IntVar(&opts.width, "width", defaultWidth, "timeline width in cells for --json and --yaml")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
	return cmd
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cuelane: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, stdout io.Writer) error {
	cfg, path, err := datasource.Open(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.LogFile = opts.logFile
	}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	// Without a terminal there is nothing to draw on; dump JSON instead.
	if !opts.jsonMode && !opts.yamlMode && !isTerminal(stdout) {
		logger.Info("stdout is not a terminal, writing JSON")
		opts.jsonMode = true
	}

	if opts.jsonMode || opts.yamlMode {
		return dump(cfg, path, opts, logger, stdout)
	}

	a, err := newApp(cfg, path, defaultWidth, logger)
	if err != nil {
		return err
	}

	var w *datasource.Watcher
	if path != "" && !opts.noWatch {
		w, err = datasource.NewWatcher(path, logger)
		if err != nil {
			a.close()
			return fmt.Errorf("watch: %w", err)
		}
	}

	p := tea.NewProgram(newModel(a, w, logger), tea.WithAltScreen(), tea.WithReportFocus())

	// Feed project file changes into the TUI.
	if w != nil {
		go func() {
			for range w.Changes() {
				p.Send(configChangedMsg{})
			}
		}()
	}

	_, err = p.Run()
	return err
}

// dump prints one snapshot and exits.
func dump(cfg *config.Config, path string, opts options, logger *slog.Logger, stdout io.Writer) error {
	a, err := newApp(cfg, path, max(1, opts.width), logger)
	if err != nil {
		return err
	}
	defer a.close()

	snap, err := a.snapshot()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	var out []byte
	if opts.yamlMode {
		out, err = snap.YAML()
	} else {
		out, err = snap.JSON()
	}
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	_, err = stdout.Write(out)
	return err
}

// newLogger builds the text logger. The TUI owns the terminal, so logs go to
// cfg.LogFile or nowhere.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}
	var w io.Writer = io.Discard
	closeFn := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
