package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/nexal/constraints"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Render.Region != "" || cfg.Render.Preset != "" {
		t.Fatalf("region and preset should defer to the design file, got %+v", cfg.Render)
	}
	if cfg.Render.Measurer != MeasurerBasic || cfg.HasFonts() {
		t.Fatalf("default should use the basic measurer without fonts")
	}
	if cfg.Capabilities() != nil {
		t.Fatalf("no font restriction expected by default")
	}
}

func TestLoadMergesWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "nexal.yaml", `
render:
  region: FR
  measurer: Canvas
  options:
    sidebar_width: 200
    sidebar_position: right
fonts:
  base_dir: fonts
  families:
    Lato:
      regular:
        path: Lato-Regular.ttf
      bold:
        path: Lato-Bold.ttf
    Inter:
      regular:
        path: Inter-Regular.ttf
log:
  debug: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Render.Region != "FR" || cfg.Render.Preset != "" {
		t.Fatalf("unexpected render config %+v", cfg.Render)
	}
	if cfg.Render.Measurer != MeasurerCanvas {
		t.Fatalf("measurer should be normalised, got %q", cfg.Render.Measurer)
	}
	if cfg.Render.Options.SidebarWidth != 200 || cfg.Render.Options.SidebarPosition != constraints.SideRight {
		t.Fatalf("options not decoded: %+v", cfg.Render.Options)
	}
	if cfg.Output.PDF != "output/cv.pdf" || !cfg.Log.Debug {
		t.Fatalf("defaults lost: %+v %+v", cfg.Output, cfg.Log)
	}
	if cfg.Fonts.BaseDir != filepath.Join(dir, "fonts") {
		t.Fatalf("base dir should be relative to the config file, got %s", cfg.Fonts.BaseDir)
	}
	if cfg.Fonts.Families["Lato"].Bold.Path != "Lato-Bold.ttf" {
		t.Fatalf("font files not decoded: %+v", cfg.Fonts.Families)
	}
	caps := cfg.Capabilities()
	if caps == nil || strings.Join(caps.Families, ",") != "Inter,Lato" {
		t.Fatalf("unexpected capabilities %+v", caps)
	}
	opts := cfg.RendererOptions()
	if opts.BaseDir != cfg.Fonts.BaseDir || len(opts.Fonts) != 2 {
		t.Fatalf("renderer options not built: %+v", opts)
	}
}

func TestValidateUsesCanvasWhenFontsConfigured(t *testing.T) {
	cfg := Default()
	cfg.Fonts.Default.Regular.Path = "Inter-Regular.ttf"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Render.Measurer != MeasurerCanvas {
		t.Fatalf("fonts configured, measurer should be canvas, got %q", cfg.Render.Measurer)
	}

	cfg = Default()
	if err := cfg.Validate(); err != nil || cfg.Render.Measurer != MeasurerBasic {
		t.Fatalf("without fonts measurer should stay basic, got %q %v", cfg.Render.Measurer, err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown measurer": "render:\n  measurer: harfbuzz\n",
		"canvas no fonts":  "render:\n  measurer: canvas\n",
		"bad yaml":         "render: [\n",
	}
	for name, body := range cases {
		path := writeFile(t, dir, strings.ReplaceAll(name, " ", "_")+".yaml", body)
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("missing file should fail")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil || cfg.Render.Measurer != MeasurerBasic {
		t.Fatalf("expected defaults, got %+v %v", cfg, err)
	}
	cfg, err = LoadOrDefault("")
	if err != nil || cfg == nil {
		t.Fatalf("empty path should give defaults")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nexal.yaml")
	cfg := Default()
	cfg.Render.Region = "JP"
	cfg.Output.Debug = "output/layout.json"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Render.Region != "JP" || loaded.Output.Debug != "output/layout.json" {
		t.Fatalf("round trip lost values: %+v", loaded)
	}
}
