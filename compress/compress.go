// Package compress maps the service's compression knobs onto ghostscript
// invocations. Two paths exist: a level-based one with fixed quality/scale
// steps and a preset one exposing ghostscript's canned PDFSETTINGS profiles.
package compress

import (
	"context"
	"fmt"

	"github.com/wudi/pdftoolkit/tools"
)

// Level selects how aggressively embedded images are recompressed. Higher
// levels trade quality for size.
type Level int

const (
	LevelLossless   Level = 0
	LevelLight      Level = 1
	LevelBalanced   Level = 2
	LevelAggressive Level = 3

	// DefaultLevel matches the service default (balanced).
	DefaultLevel = LevelBalanced
)

// baseline rasterization density the scale steps are applied to.
const basePPI = 150

// jpegQuality returns the JPEG quality for the level.
func (l Level) jpegQuality() int {
	switch l {
	case LevelLossless:
		return 90
	case LevelLight:
		return 80
	case LevelAggressive:
		return 50
	default:
		return 65
	}
}

// imageScale returns the image downscale factor for the level.
func (l Level) imageScale() float64 {
	switch l {
	case LevelLossless:
		return 1.0
	case LevelLight:
		return 0.9
	case LevelAggressive:
		return 0.6
	default:
		return 0.75
	}
}

// Valid reports whether the level is within the supported range.
func (l Level) Valid() bool { return l >= LevelLossless && l <= LevelAggressive }

// Preset names a ghostscript PDFSETTINGS profile.
type Preset string

const (
	PresetScreen   Preset = "screen"
	PresetEbook    Preset = "ebook"
	PresetPrinter  Preset = "printer"
	PresetPrepress Preset = "prepress"

	DefaultPreset = PresetEbook
)

// Valid reports whether the preset is one ghostscript understands.
func (p Preset) Valid() bool {
	switch p {
	case PresetScreen, PresetEbook, PresetPrinter, PresetPrepress:
		return true
	}
	return false
}

// Service compresses PDF files through the external tool runner.
type Service struct {
	runner *tools.Runner
}

// New builds a compression service on top of runner.
func New(runner *tools.Runner) *Service {
	return &Service{runner: runner}
}

// Basic compresses in to out using the level's quality and scale steps,
// expressed as ghostscript downsampling targets.
func (s *Service) Basic(ctx context.Context, in, out string, level Level) error {
	if !level.Valid() {
		return fmt.Errorf("invalid compression level %d", level)
	}
	ppi := int(basePPI * level.imageScale())
	if err := s.runner.GhostscriptTuned(ctx, in, out, level.jpegQuality(), ppi); err != nil {
		return fmt.Errorf("compress level %d: %w", level, err)
	}
	return nil
}

// Preset compresses in to out with one of the canned ghostscript profiles.
func (s *Service) Preset(ctx context.Context, in, out string, preset Preset) error {
	if !preset.Valid() {
		return fmt.Errorf("invalid preset %q", preset)
	}
	if err := s.runner.GhostscriptPreset(ctx, in, out, string(preset)); err != nil {
		return fmt.Errorf("compress preset %s: %w", preset, err)
	}
	return nil
}
