package compress

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wudi/pdftoolkit/pdftest"
	"github.com/wudi/pdftoolkit/tools"
)

func TestLevelMaps(t *testing.T) {
	cases := []struct {
		level   Level
		quality int
		scale   float64
	}{
		{LevelLossless, 90, 1.0},
		{LevelLight, 80, 0.9},
		{LevelBalanced, 65, 0.75},
		{LevelAggressive, 50, 0.6},
	}
	for _, tc := range cases {
		if got := tc.level.jpegQuality(); got != tc.quality {
			t.Errorf("level %d quality = %d, want %d", tc.level, got, tc.quality)
		}
		if got := tc.level.imageScale(); got != tc.scale {
			t.Errorf("level %d scale = %f, want %f", tc.level, got, tc.scale)
		}
	}
}

func TestLevelValid(t *testing.T) {
	if Level(-1).Valid() || Level(4).Valid() {
		t.Fatal("out-of-range levels must be invalid")
	}
	if !DefaultLevel.Valid() {
		t.Fatal("default level must be valid")
	}
}

func TestPresetValid(t *testing.T) {
	for _, p := range []Preset{PresetScreen, PresetEbook, PresetPrinter, PresetPrepress} {
		if !p.Valid() {
			t.Errorf("preset %s should be valid", p)
		}
	}
	if Preset("lossless").Valid() {
		t.Fatal("unknown preset must be invalid")
	}
}

func TestBasicRejectsBadLevel(t *testing.T) {
	svc := New(tools.NewRunner(nil, nil))
	err := svc.Basic(context.Background(), "in.pdf", "out.pdf", Level(9))
	if err == nil || !strings.Contains(err.Error(), "invalid compression level") {
		t.Fatalf("expected level validation error, got %v", err)
	}
}

func TestPresetRejectsBadPreset(t *testing.T) {
	svc := New(tools.NewRunner(nil, nil))
	err := svc.Preset(context.Background(), "in.pdf", "out.pdf", Preset("best"))
	if err == nil || !strings.Contains(err.Error(), "invalid preset") {
		t.Fatalf("expected preset validation error, got %v", err)
	}
}

func TestBasicRoundTrip(t *testing.T) {
	if _, err := exec.LookPath("gs"); err != nil {
		t.Skip("gs not installed in PATH")
	}
	svc := New(tools.NewRunner(nil, nil))
	in := pdftest.Write(t)
	out := filepath.Join(t.TempDir(), "out.pdf")

	if err := svc.Basic(context.Background(), in, out, DefaultLevel); err != nil {
		t.Fatalf("Basic() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF-") {
		t.Fatal("output is not a PDF")
	}
}
