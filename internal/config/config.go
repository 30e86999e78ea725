// Package config holds hybridmd's settings and loads them from defaults,
// an optional TOML or YAML file and HYBRIDMD_* environment variables, in
// that order of increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/hybridmd/internal/config/loader"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "HYBRIDMD_"

// ErrInvalid is wrapped by validation failures.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete configuration.
type Config struct {
	Engine      EngineConfig      `toml:"engine" yaml:"engine"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics" yaml:"diagnostics"`
	Logging     LoggingConfig     `toml:"logging" yaml:"logging"`
	UI          UIConfig          `toml:"ui" yaml:"ui"`
}

// EngineConfig controls document loading and tokenization.
type EngineConfig struct {
	// BackgroundThreshold is the document size in bytes above which only
	// a prefix is tokenized up front and the rest on a background
	// goroutine. 0 disables background tokenization.
	BackgroundThreshold int64 `toml:"background_threshold" yaml:"background_threshold"`
	// VisibleBytes is how much of a large document is tokenized up front.
	VisibleBytes int64 `toml:"visible_bytes" yaml:"visible_bytes"`
	// NormalizeNFC applies Unicode NFC normalization to loaded text.
	NormalizeNFC bool `toml:"normalize_nfc" yaml:"normalize_nfc"`
	// LineEnding is "lf" to convert CRLF and CR to LF on load, or "keep".
	LineEnding string `toml:"line_ending" yaml:"line_ending"`
	// LayoutCacheLines bounds the number of lines whose layout metrics
	// are kept. 0 means unlimited.
	LayoutCacheLines int `toml:"layout_cache_lines" yaml:"layout_cache_lines"`
}

// DiagnosticsConfig controls the structured event stream.
type DiagnosticsConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
	// Format is "log" to write events through the logger or "jsonl".
	Format string `toml:"format" yaml:"format"`
	// Path is where jsonl events go. Empty means standard error.
	Path string `toml:"path" yaml:"path"`
}

// LoggingConfig controls the application logger.
type LoggingConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// UIConfig controls the terminal front-end.
type UIConfig struct {
	TabWidth int         `toml:"tab_width" yaml:"tab_width"`
	Theme    ThemeConfig `toml:"theme" yaml:"theme"`
}

// ThemeConfig holds colors as hex strings ("#rrggbb").
type ThemeConfig struct {
	Text      string `toml:"text" yaml:"text"`
	Marker    string `toml:"marker" yaml:"marker"`
	Heading   string `toml:"heading" yaml:"heading"`
	Code      string `toml:"code" yaml:"code"`
	Link      string `toml:"link" yaml:"link"`
	Quote     string `toml:"quote" yaml:"quote"`
	Selection string `toml:"selection" yaml:"selection"`
	Status    string `toml:"status" yaml:"status"`

	// Code block highlighting.
	Keyword string `toml:"keyword" yaml:"keyword"`
	String  string `toml:"string" yaml:"string"`
	Number  string `toml:"number" yaml:"number"`
	Comment string `toml:"comment" yaml:"comment"`
}

// Theme is a parsed ThemeConfig.
type Theme struct {
	Text, Marker, Heading, Code, Link, Quote, Selection, Status colorful.Color
	Keyword, String, Number, Comment                            colorful.Color
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			BackgroundThreshold: 256 << 10,
			VisibleBytes:        64 << 10,
			LineEnding:          "lf",
			LayoutCacheLines:    4096,
		},
		Diagnostics: DiagnosticsConfig{Format: "log"},
		Logging:     LoggingConfig{Level: "info"},
		UI: UIConfig{
			TabWidth: 4,
			Theme: ThemeConfig{
				Text:      "#d0d0d0",
				Marker:    "#6c6c6c",
				Heading:   "#ffaf5f",
				Code:      "#87d787",
				Link:      "#5fafff",
				Quote:     "#a8a8a8",
				Selection: "#3a3a5a",
				Status:    "#303030",
				Keyword:   "#d787d7",
				String:    "#d7af87",
				Number:    "#87afd7",
				Comment:   "#808080",
			},
		},
	}
}

// Load builds a configuration from the defaults, the file at path (if
// path is non-empty and the file exists) and the environment. env may be
// nil to skip the environment.
func Load(fsys loader.FileSystem, path string, env loader.Loader) (Config, error) {
	var sources []loader.Loader
	if path != "" {
		l, err := loader.ForPath(fsys, path)
		if err != nil {
			return Config{}, err
		}
		sources = append(sources, l)
	}
	if env != nil {
		sources = append(sources, env)
	}

	merged := make(map[string]any)
	for _, l := range sources {
		m, err := l.Load()
		if err != nil {
			return Config{}, err
		}
		loader.DeepMerge(merged, m)
	}

	cfg := Default()
	if len(merged) > 0 {
		if err := decode(merged, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode overlays m onto cfg. Unknown keys are errors.
func decode(m map[string]any, cfg *Config) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding merged config: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	if c.Engine.BackgroundThreshold < 0 {
		bad("engine.background_threshold %d is negative", c.Engine.BackgroundThreshold)
	}
	if c.Engine.VisibleBytes < 0 {
		bad("engine.visible_bytes %d is negative", c.Engine.VisibleBytes)
	}
	if c.Engine.LayoutCacheLines < 0 {
		bad("engine.layout_cache_lines %d is negative", c.Engine.LayoutCacheLines)
	}
	switch c.Engine.LineEnding {
	case "lf", "keep":
	default:
		bad("engine.line_ending %q is not lf or keep", c.Engine.LineEnding)
	}
	switch c.Diagnostics.Format {
	case "log", "jsonl":
	default:
		bad("diagnostics.format %q is not log or jsonl", c.Diagnostics.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		bad("logging.level %q", c.Logging.Level)
	}
	if c.UI.TabWidth < 1 || c.UI.TabWidth > 16 {
		bad("ui.tab_width %d is outside 1-16", c.UI.TabWidth)
	}
	if _, err := c.UI.Theme.Parse(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Parse converts the hex colors.
func (t ThemeConfig) Parse() (Theme, error) {
	var th Theme
	fields := []struct {
		name string
		hex  string
		dst  *colorful.Color
	}{
		{"text", t.Text, &th.Text},
		{"marker", t.Marker, &th.Marker},
		{"heading", t.Heading, &th.Heading},
		{"code", t.Code, &th.Code},
		{"link", t.Link, &th.Link},
		{"quote", t.Quote, &th.Quote},
		{"selection", t.Selection, &th.Selection},
		{"status", t.Status, &th.Status},
		{"keyword", t.Keyword, &th.Keyword},
		{"string", t.String, &th.String},
		{"number", t.Number, &th.Number},
		{"comment", t.Comment, &th.Comment},
	}
	for _, f := range fields {
		c, err := colorful.Hex(f.hex)
		if err != nil {
			return Theme{}, fmt.Errorf("%w: ui.theme.%s %q: %v", ErrInvalid, f.name, f.hex, err)
		}
		*f.dst = c
	}
	return th, nil
}
