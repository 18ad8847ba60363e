package parts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeConfig(t *testing.T) {
	const doc = `
facets: 64
tray:
  width: 80
  magnet_placement: fixed
case:
  token_count: 12
`
	got, err := DecodeConfig(strings.NewReader(doc), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultConfig()
	want.Facets = 64
	want.Tray.Width = 80
	want.Tray.MagnetPlacement = MagnetFixed
	want.Case.TokenCount = 12
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeConfigErrors(t *testing.T) {
	for _, test := range []struct {
		doc  string
		want error
	}{
		{doc: "tray:\n  widht: 80\n"},
		{doc: "case: [1, 2]\n"},
		{doc: "case:\n  sides: 8\n", want: ErrInvalidParam},
		{doc: "tray:\n  magnet_depth: 3\n", want: ErrFit},
		{doc: "material: wood\n", want: ErrInvalidParam},
	} {
		_, err := DecodeConfig(strings.NewReader(test.doc), DefaultConfig())
		if err == nil {
			t.Errorf("%q: expected error", test.doc)
			continue
		}
		if test.want != nil && !errors.Is(err, test.want) {
			t.Errorf("%q: want %v, got %v", test.doc, test.want, err)
		}
	}
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Material = "pla"
	b, err := cfg.YAML()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "parts.yaml")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(b), "token_diameter: 22") {
		t.Errorf("unexpected YAML:\n%s", b)
	}
}

func TestLoadConfigDefault(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("want ErrNotExist, got %v", err)
	}
}

func TestReadConfigSkipsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("case:\n  tube_tolerance: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := ReadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Case.TubeTolerance != -1 {
		t.Errorf("want tube tolerance -1, got %v", cfg.Case.TubeTolerance)
	}
	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("want ErrInvalidParam, got %v", err)
	}
}
