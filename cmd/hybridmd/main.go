// Package main is the entry point for the hybridmd markdown editor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/hybridmd/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "hybridmd - hybrid markdown editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: hybridmd [options] <command> <file>\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  edit     Open the file in the terminal editor (default)\n")
		fmt.Fprintf(os.Stderr, "  dump     Print the token tree and render modes\n")
		fmt.Fprintf(os.Stderr, "  watch    Reparse the file whenever it changes on disk\n")
		fmt.Fprintf(os.Stderr, "  html     Print the file rendered as HTML\n")
		fmt.Fprintf(os.Stderr, "  version  Show version information\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  hybridmd notes.md                      Edit a file\n")
		fmt.Fprintf(os.Stderr, "  hybridmd -cursor 12 dump notes.md      Show which tokens are raw at offset 12\n")
		fmt.Fprintf(os.Stderr, "  hybridmd -format json dump notes.md    Dump the tree as JSON\n")
	}
}

func run(args []string) int {
	fs := flag.NewFlagSet("hybridmd", flag.ContinueOnError)
	var (
		opts   app.Options
		dump   app.DumpOptions
		format string
	)
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (TOML or YAML)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.Int64Var(&dump.Cursor, "cursor", -1, "dump: place the caret at this byte offset")
	fs.StringVar(&dump.Selection, "select", "", "dump: select the byte range A:B")
	fs.StringVar(&format, "format", app.FormatText, "dump: output format (text, json, go)")
	fs.Usage = usage(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	dump.Format = format

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		return 2
	}

	cmd, path := "edit", ""
	switch rest := fs.Args(); len(rest) {
	case 1:
		if rest[0] == "version" {
			cmd = "version"
		} else {
			path = rest[0]
		}
	case 2:
		cmd, path = rest[0], rest[1]
	default:
		fs.Usage()
		return 2
	}

	if cmd == "version" {
		fmt.Printf("hybridmd %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return 0
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "edit":
		// Piped output gets the dump instead of a screen it cannot show.
		if !app.IsTerminal(os.Stdout) {
			err = application.Dump(ctx, path, dump)
			break
		}
		err = application.Edit(ctx, path)
	case "dump":
		err = application.Dump(ctx, path, dump)
	case "watch":
		err = application.Watch(ctx, path)
	case "html":
		err = application.Export(ctx, path)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, app.ErrInvalidArgument) {
			return 2
		}
		return 1
	}
	return 0
}
