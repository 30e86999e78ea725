package app

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/dshills/hybridmd/internal/config"
	"github.com/dshills/hybridmd/internal/engine"
	"github.com/dshills/hybridmd/internal/engine/buffer"
)

// Document is a markdown file open in an engine.
type Document struct {
	// Path is the file path as given.
	Path string

	// Name is the display name.
	Name string

	// Engine holds the text, tokens and selection.
	Engine *engine.Engine

	// Warnings describe lossy conversions made while loading.
	Warnings []string

	// saved is the engine revision last loaded or written.
	saved atomic.Uint64

	bufOpts []buffer.Option
}

// BufferOptions returns the text normalization the configuration asks for.
func BufferOptions(cfg config.EngineConfig) []buffer.Option {
	var opts []buffer.Option
	if cfg.LineEnding == "lf" {
		opts = append(opts, buffer.WithNewlineNormalization())
	}
	if cfg.NormalizeNFC {
		opts = append(opts, buffer.WithNFC())
	}
	return opts
}

// EngineOptions turns engine configuration into engine options.
func EngineOptions(cfg config.EngineConfig) []engine.Option {
	return []engine.Option{
		engine.WithBackground(cfg.BackgroundThreshold, cfg.VisibleBytes),
		engine.WithLayoutCacheLines(cfg.LayoutCacheLines),
		engine.WithBufferOptions(BufferOptions(cfg)...),
	}
}

// OpenDocument reads path into a new engine. A missing file opens as an
// empty document that Save will create. Bytes that are not UTF-8 are
// replaced with U+FFFD and reported in Warnings.
func OpenDocument(path string, cfg config.EngineConfig, opts ...engine.Option) (*Document, error) {
	d := &Document{Path: path, Name: filepath.Base(path), bufOpts: BufferOptions(cfg)}

	text, err := readText(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		d.Warnings = append(d.Warnings, "new file")
	case errors.Is(err, errInvalidUTF8):
		d.Warnings = append(d.Warnings, "invalid UTF-8 replaced")
	case err != nil:
		return nil, NewOperationError("load", path, err)
	}

	all := append(EngineOptions(cfg), opts...)
	d.Engine = engine.New(append(all, engine.WithContent(text))...)
	d.saved.Store(d.Engine.Revision())
	return d, nil
}

var errInvalidUTF8 = errors.New("invalid UTF-8")

// readText reads path as UTF-8. Invalid bytes are replaced with U+FFFD
// and reported as errInvalidUTF8 alongside the repaired text.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := string(data)
	if !utf8.ValidString(text) {
		return strings.ToValidUTF8(text, string(utf8.RuneError)), errInvalidUTF8
	}
	return text, nil
}

// Modified reports whether the text changed since it was loaded or saved.
func (d *Document) Modified() bool {
	return d.Engine.Revision() != d.saved.Load()
}

// MarkSaved records the current revision as the one on disk.
func (d *Document) MarkSaved() {
	d.saved.Store(d.Engine.Revision())
}

// Save writes the plain text back to Path and returns the number of
// bytes written. The file is replaced atomically.
func (d *Document) Save() (int, error) {
	rev := d.Engine.Revision()
	text := d.Engine.Text()
	if step, err := writeFileAtomic(d.Path, []byte(text)); err != nil {
		return 0, NewOperationError("save", d.Path, err).WithContext(step)
	}
	d.saved.Store(rev)
	return len(text), nil
}

// Close stops the engine.
func (d *Document) Close() {
	d.Engine.Close()
}

// writeFileAtomic writes data to a temporary file next to path and
// renames it over path, keeping the existing file's permissions. On
// failure it names the step that failed.
func writeFileAtomic(path string, data []byte) (step string, err error) {
	perm := fs.FileMode(0o644)
	if fi, statErr := os.Stat(path); statErr == nil {
		perm = fi.Mode().Perm()
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "create temp", err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return "write", err
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return "sync", err
	}
	if err = f.Close(); err != nil {
		return "close", err
	}
	if err = os.Chmod(tmp, perm); err != nil {
		return "chmod", err
	}
	if err = os.Rename(tmp, path); err != nil {
		return "rename", err
	}
	return "", nil
}
