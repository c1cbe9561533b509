// Package main is the entry point for the indent guide viewer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/indentguide/internal/config"
	"github.com/dshills/indentguide/internal/event"
	"github.com/dshills/indentguide/internal/extension"
	"github.com/dshills/indentguide/internal/logging"
	"github.com/dshills/indentguide/internal/terminal"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	ConfigPath  string
	TabSize     int
	LogLevel    string
	LogFile     string
	PrintConfig bool
	Files       []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	loader := config.NewLoader(opts.ConfigPath)
	if opts.LogLevel != "" {
		loader.Override(config.KeyLogLevel, opts.LogLevel)
	}

	if opts.PrintConfig {
		return printConfig(loader)
	}

	if len(opts.Files) == 0 {
		flag.Usage()
		return 2
	}

	logOut := io.Discard
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: opening log file: %v\n", err)
			return 1
		}
		defer f.Close()
		logOut = f
	}
	log := logging.New(logging.Config{Level: logging.LevelInfo, Output: logOut, Prefix: "indentguide"})

	docs := make([]*terminal.Document, 0, len(opts.Files))
	editors := make([]*terminal.Editor, 0, len(opts.Files))
	for _, path := range opts.Files {
		doc, err := terminal.OpenDocument(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		docs = append(docs, doc)
		editors = append(editors, terminal.NewEditor(doc, opts.TabSize))
	}
	window := terminal.NewWindow(editors...)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}
	defer screen.Fini()

	bus := event.NewBus(
		event.WithErrorHandler(func(herr *event.HandlerError) {
			log.Warn("%v", herr)
		}),
		event.WithPanicHandler(func(ev any, sub *event.Subscription, recovered any, stack []byte) {
			log.WithField("topic", string(sub.Topic())).Error("handler panic for %T: %v\n%s", ev, recovered, stack)
		}),
	)
	app := terminal.NewApp(screen, window, bus, log)

	ext, err := extension.Activate(extension.Options{
		Window:    window,
		Scheduler: app,
		Bus:       bus,
		Loader:    loader,
		Watch:     opts.ConfigPath != "",
		Logger:    log,
	})
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer ext.Deactivate()

	files, err := terminal.WatchDocuments(docs, app, app.DocumentChanged, func(err error) {
		log.Warn("document reload failed: %v", err)
	})
	if err != nil {
		log.Warn("open files not watched: %v", err)
	} else {
		defer files.Dispose()
	}

	app.SetStatus(func() string {
		s := ext.Settings()
		return fmt.Sprintf("%s  %s", ext.Controller().Policy().Name(), s.Style)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Error("event loop: %v", err)
		return 1
	}
	return 0
}

func printConfig(loader *config.Loader) int {
	s, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	data, err := config.MarshalSettingsJSON(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return 1
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to a TOML or JSON settings file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to a TOML or JSON settings file (shorthand)")
	flag.IntVar(&opts.TabSize, "tab-size", 4, "Tab size of every opened file")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error); overrides settings")
	flag.StringVar(&opts.LogFile, "log-file", "", "Append logs to this file")
	flag.BoolVar(&opts.PrintConfig, "print-config", false, "Print the effective settings as JSON and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "indentguide - view files with indent guides\n\n")
		fmt.Fprintf(os.Stderr, "Usage: indentguide [options] files...\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  arrows, hjkl        move the cursor\n")
		fmt.Fprintf(os.Stderr, "  shift+arrows        extend the selection\n")
		fmt.Fprintf(os.Stderr, "  tab, shift+tab      switch file\n")
		fmt.Fprintf(os.Stderr, "  pgup, pgdn          page\n")
		fmt.Fprintf(os.Stderr, "  q, esc, ctrl+c      quit\n")
	}

	flag.Parse()

	if showVersion {
		if version == "dev" {
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
				version = info.Main.Version
			}
		}
		fmt.Printf("indentguide %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.TabSize < 1 {
		fmt.Fprintf(os.Stderr, "Error: -tab-size must be at least 1\n")
		os.Exit(2)
	}
	if opts.LogLevel != "" && !logging.ValidLevel(opts.LogLevel) {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(2)
	}

	opts.Files = flag.Args()
	return opts
}
