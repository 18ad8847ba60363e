package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maruel/subcommands"
	"github.com/soypat/solid/parts"
	"github.com/soypat/solid/render"
)

type testApp struct {
	*subcommands.DefaultApplication
	out, err bytes.Buffer
}

func (a *testApp) GetOut() io.Writer { return &a.out }
func (a *testApp) GetErr() io.Writer { return &a.err }

func run(t *testing.T, args ...string) (*testApp, int) {
	t.Helper()
	app := &testApp{DefaultApplication: newApplication()}
	return app, subcommands.Run(app, args)
}

func TestSCADCommand(t *testing.T) {
	dir := t.TempDir()
	app, code := run(t, "scad", "-out", dir)
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, app.err.String())
	}
	for _, name := range parts.Names() {
		b, err := os.ReadFile(filepath.Join(dir, name+".scad"))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(b), "$fn=40;\n\n") {
			t.Errorf("%s: missing header", name)
		}
	}
}

func TestSCADCommandConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(cfgPath, []byte("facets: 16\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	app, code := run(t, "scad", "-config", cfgPath, "-out", dir, "sled")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, app.err.String())
	}
	b, err := os.ReadFile(filepath.Join(dir, "sled.scad"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "$fn=16;") {
		t.Errorf("unexpected header %q", b[:8])
	}
	if _, err := os.Stat(filepath.Join(dir, "tube.scad")); !os.IsNotExist(err) {
		t.Error("tube.scad written although only sled was requested")
	}
}

func TestSTLCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "small.yaml")
	const small = "tray:\n  width: 40\n  height: 30\n  depth: 12\n"
	if err := os.WriteFile(cfgPath, []byte(small), 0o644); err != nil {
		t.Fatal(err)
	}
	// 16 cells is too coarse for 2mm walls and gets raised.
	app, code := run(t, "stl", "-config", cfgPath, "-out", dir, "-cells", "16", "tray", "tube")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, app.err.String())
	}
	for _, name := range []string{"tray", "tube"} {
		fp, err := os.Open(filepath.Join(dir, name+".stl"))
		if err != nil {
			t.Fatal(err)
		}
		tris, err := render.ReadSTL(fp)
		fp.Close()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(tris) == 0 {
			t.Errorf("%s: no triangles", name)
		}
	}
}

func TestUnknownPart(t *testing.T) {
	app, code := run(t, "scad", "-out", t.TempDir(), "lid")
	if code == 0 {
		t.Fatal("expected failure for unknown part")
	}
	if !strings.Contains(app.err.String(), "unknown part") {
		t.Errorf("unexpected error output %q", app.err.String())
	}
}

func TestParamsDims(t *testing.T) {
	app, code := run(t, "params")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, app.err.String())
	}
	cfg, err := parts.DecodeConfig(&app.out, parts.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Facets != 40 {
		t.Errorf("want 40 facets, got %d", cfg.Facets)
	}

	app, code = run(t, "dims")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, app.err.String())
	}
	for _, key := range []string{"outer_width: 100", "tube_external_length:", "door_flat_radius:"} {
		if !strings.Contains(app.out.String(), key) {
			t.Errorf("dims output missing %q:\n%s", key, app.out.String())
		}
	}
}

func TestDimsInvalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(cfgPath, []byte("case:\n  tube_tolerance: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	app, code := run(t, "dims", "-config", cfgPath)
	if code == 0 {
		t.Fatal("expected failure for invalid configuration")
	}
	if !strings.Contains(app.out.String(), "sled_external_length:") {
		t.Error("dimensions not printed for invalid configuration")
	}
	if !strings.Contains(app.err.String(), "tube_tolerance") {
		t.Errorf("validation error not reported: %q", app.err.String())
	}
}
