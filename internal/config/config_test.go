package config

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/hybridmd/internal/config/loader"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadLayers(t *testing.T) {
	fsys := fstest.MapFS{
		"hybridmd.toml": {Data: []byte(`
[engine]
visible_bytes = 1024
normalize_nfc = true

[ui]
tab_width = 2

[ui.theme]
heading = "#ff0000"
`)},
	}
	t.Setenv("HYBRIDMD_ENGINE_VISIBLE_BYTES", "2048")
	t.Setenv("HYBRIDMD_LOG_LEVEL", "debug")

	cfg, err := Load(fsys, "hybridmd.toml", loader.NewEnvLoader(EnvPrefix))
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Engine.VisibleBytes = 2048
	want.Engine.NormalizeNFC = true
	want.UI.TabWidth = 2
	want.UI.Theme.Heading = "#ff0000"
	want.Logging.Level = "debug"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"c.yml": {Data: []byte("diagnostics:\n  enabled: true\n  format: jsonl\n")},
	}
	cfg, err := Load(fsys, "c.yml", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Diagnostics.Enabled || cfg.Diagnostics.Format != "jsonl" {
		t.Errorf("diagnostics = %+v", cfg.Diagnostics)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(fstest.MapFS{}, "none.toml", nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"unknown key", "[engine]\nspeed = 3\n"},
		{"bad level", "[logging]\nlevel = \"loud\"\n"},
		{"bad tab width", "[ui]\ntab_width = 0\n"},
		{"bad color", "[ui.theme]\ntext = \"red\"\n"},
		{"wrong type", "[engine]\nvisible_bytes = \"big\"\n"},
		{"negative threshold", "[engine]\nbackground_threshold = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"c.toml": {Data: []byte(tt.file)}}
			if _, err := Load(fsys, "c.toml", nil); !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestThemeParse(t *testing.T) {
	th, err := Default().UI.Theme.Parse()
	if err != nil {
		t.Fatal(err)
	}
	r, g, b := th.Heading.RGB255()
	if r != 0xff || g != 0xaf || b != 0x5f {
		t.Errorf("heading = %d,%d,%d", r, g, b)
	}
}
