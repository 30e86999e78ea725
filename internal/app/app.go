package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/dshills/hybridmd/internal/config"
	"github.com/dshills/hybridmd/internal/config/loader"
	"github.com/dshills/hybridmd/internal/engine"
	"github.com/dshills/hybridmd/internal/event"
	"github.com/dshills/hybridmd/internal/renderer/backend"
)

// Options configures New.
type Options struct {
	// ConfigPath is an optional TOML or YAML file.
	ConfigPath string
	// LogLevel overrides the configured level when set.
	LogLevel string
	// Stdout receives command output, Stderr logs and diagnostics.
	Stdout io.Writer
	Stderr io.Writer
	// FS reads the config file. Nil means the OS file system.
	FS loader.FileSystem
	// Env overlays configuration. Nil reads HYBRIDMD_* variables.
	Env loader.Loader
}

// Application ties configuration, logging and diagnostics to the
// dump, watch and edit commands.
type Application struct {
	cfg    config.Config
	log    *Logger
	bus    *event.Bus
	stdout io.Writer
	stderr *switchWriter

	closeOnce sync.Once
	closers   []io.Closer
}

// New loads the configuration and sets up logging and the diagnostic
// event stream.
func New(opts Options) (*Application, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.FS == nil {
		opts.FS = loader.OSFS{}
	}
	if opts.Env == nil {
		opts.Env = loader.NewEnvLoader(config.EnvPrefix)
	}

	cfg, err := config.Load(opts.FS, opts.ConfigPath, opts.Env)
	if err != nil {
		return nil, NewOperationError("config", opts.ConfigPath, err)
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}

	a := &Application{
		cfg:    cfg,
		stdout: opts.Stdout,
		stderr: &switchWriter{w: opts.Stderr},
	}
	a.log = NewLogger(LoggerConfig{
		Level:  ParseLogLevel(cfg.Logging.Level),
		Output: a.stderr,
		Prefix: DefaultLoggerConfig().Prefix,
	})
	a.bus = event.NewBus(func(e event.Event, recovered any, _ []byte) {
		a.log.Error("event handler for %s panicked: %v", e.Topic, recovered)
	})
	if err := a.setupDiagnostics(); err != nil {
		a.Shutdown()
		return nil, err
	}
	return a, nil
}

// setupDiagnostics subscribes the configured sink to every engine event.
func (a *Application) setupDiagnostics() error {
	d := a.cfg.Diagnostics
	if !d.Enabled {
		return nil
	}

	var sink event.Sink
	switch d.Format {
	case "jsonl":
		var w io.Writer = a.stderr
		if d.Path != "" {
			f, err := os.OpenFile(d.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return NewOperationError("diagnostics", d.Path, err)
			}
			a.closers = append(a.closers, f)
			w = f
		}
		sink = event.NewJSONLSink(w)
	default:
		sink = NewLogSink(a.log.WithComponent("events"))
	}

	_, err := a.bus.Subscribe("**", event.PriorityNormal, sink.Emit)
	return err
}

func (a *Application) Config() config.Config { return a.cfg }

func (a *Application) Logger() *Logger { return a.log }

// Bus carries every engine event of documents opened by the application.
func (a *Application) Bus() *event.Bus { return a.bus }

// OpenDocument opens path with the configured engine settings. Background
// tokenization stops when ctx is done.
func (a *Application) OpenDocument(ctx context.Context, path string) (*Document, error) {
	doc, err := OpenDocument(path, a.cfg.Engine, engine.WithSink(a.bus), engine.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	for _, w := range doc.Warnings {
		a.log.Warn("%s: %s", path, w)
	}
	return doc, nil
}

// DumpOptions selects what Dump prints.
type DumpOptions struct {
	Format string
	// Cursor places a caret; negative leaves it at the start.
	Cursor int64
	// Selection is "A:B"; it wins over Cursor when set.
	Selection string
}

// Dump prints the token tree and render modes of path.
func (a *Application) Dump(ctx context.Context, path string, opts DumpOptions) error {
	doc, err := a.OpenDocument(ctx, path)
	if err != nil {
		return err
	}
	defer doc.Close()
	// Print the whole tree, not the prefix tokenized up front.
	doc.Engine.WaitBackground()

	var cmd engine.Command
	switch {
	case opts.Selection != "":
		anchor, head, err := ParseSelection(opts.Selection)
		if err != nil {
			return err
		}
		cmd = engine.SetSelection(anchor, head)
	case opts.Cursor >= 0:
		cmd = engine.SetCursor(opts.Cursor)
	default:
		return Dump(a.stdout, doc.Engine, opts.Format)
	}
	if _, err := doc.Engine.Execute(cmd); err != nil {
		return NewOperationError("dump", path, err)
	}
	return Dump(a.stdout, doc.Engine, opts.Format)
}

// Watch prints one line per reload of path until ctx is done.
func (a *Application) Watch(ctx context.Context, path string) error {
	doc, err := a.OpenDocument(ctx, path)
	if err != nil {
		return err
	}
	defer doc.Close()

	fmt.Fprintf(a.stdout, "%s: %d bytes, %d tokens\n", doc.Name, doc.Engine.Len(), doc.Engine.Tokens().NumTokens())
	return NewWatcher(doc, a.stdout, a.log).Run(ctx)
}

// Edit opens path in the terminal editor. It fails with ErrNotTerminal
// when standard output is not a terminal.
func (a *Application) Edit(ctx context.Context, path string) error {
	if !IsTerminal(a.stdout) {
		return NewOperationError("edit", path, ErrNotTerminal)
	}
	theme, err := a.cfg.UI.Theme.Parse()
	if err != nil {
		return err
	}
	doc, err := a.OpenDocument(ctx, path)
	if err != nil {
		return err
	}
	defer doc.Close()

	t, err := backend.NewTerminal()
	if err != nil {
		return NewOperationError("edit", path, err)
	}
	if err := t.Init(); err != nil {
		return NewOperationError("edit", path, err)
	}
	defer t.Shutdown()

	// Log lines written to the terminal would corrupt the screen.
	if IsTerminal(a.stderr.Target()) {
		a.stderr.Set(io.Discard)
		defer a.stderr.Set(a.stderr.Target())
	}

	ed := NewEditor(doc, t, backend.NewTheme(theme), a.cfg.UI.TabWidth, a.log)
	sub, err := ed.Subscribe(a.bus)
	if err != nil {
		return err
	}
	defer a.bus.Unsubscribe(sub)

	return ed.Run(ctx)
}

// Shutdown releases diagnostic outputs. It is safe to call more than once.
func (a *Application) Shutdown() {
	a.closeOnce.Do(func() {
		var errs []error
		for i := len(a.closers) - 1; i >= 0; i-- {
			errs = append(errs, a.closers[i].Close())
		}
		if err := errors.Join(errs...); err != nil {
			a.log.Warn("shutdown: %v", err)
		}
	})
}

// IsTerminal reports whether w is a terminal device.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// switchWriter forwards to a writer that can be silenced while the
// terminal is in use.
type switchWriter struct {
	mu     sync.Mutex
	w      io.Writer
	active io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return s.active.Write(p)
	}
	return s.w.Write(p)
}

// Set redirects writes to w; setting the original target restores it.
func (s *switchWriter) Set(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w == s.w {
		s.active = nil
		return
	}
	s.active = w
}

// Target returns the writer given at construction.
func (s *switchWriter) Target() io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w
}
