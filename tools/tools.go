// Package tools wraps the external document converters the service delegates
// to: ghostscript, qpdf, poppler, ocrmypdf and libreoffice. Each binary is
// optional at runtime; callers get ErrNotFound when one is missing so the
// failure can be reported per endpoint instead of at startup.
package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/wudi/pdftoolkit/observability"
)

// Canonical tool names. Config overrides are keyed by these.
const (
	Ghostscript = "gs"
	QPDF        = "qpdf"
	PDFToPPM    = "pdftoppm"
	PDFInfo     = "pdfinfo"
	OCRmyPDF    = "ocrmypdf"
	LibreOffice = "soffice"
)

// ErrNotFound reports that a required external binary is not installed.
var ErrNotFound = errors.New("tool not installed")

// stderrTailLimit bounds how much captured stderr ends up in error messages.
const stderrTailLimit = 2048

// Runner locates and executes external tools with context cancellation.
type Runner struct {
	overrides map[string]string
	log       observability.Logger
}

// NewRunner builds a Runner. overrides maps canonical tool names to binary
// names or absolute paths; unknown keys are ignored. A nil logger is allowed.
func NewRunner(overrides map[string]string, log observability.Logger) *Runner {
	if log == nil {
		log = observability.NopLogger{}
	}
	ov := make(map[string]string, len(overrides))
	for k, v := range overrides {
		ov[k] = v
	}
	return &Runner{overrides: ov, log: log}
}

func (r *Runner) binary(name string) string {
	if v, ok := r.overrides[name]; ok && v != "" {
		return v
	}
	return name
}

// Available reports whether the named tool resolves to an executable.
func (r *Runner) Available(name string) bool {
	_, err := exec.LookPath(r.binary(name))
	return err == nil
}

// Report returns availability for every tool the service knows about.
func (r *Runner) Report() map[string]bool {
	out := make(map[string]bool)
	for _, name := range []string{Ghostscript, QPDF, PDFToPPM, PDFInfo, OCRmyPDF, LibreOffice} {
		out[name] = r.Available(name)
	}
	return out
}

// run executes the named tool and returns its stdout. Absence of the binary
// yields an error wrapping ErrNotFound; a non-zero exit wraps the exec error
// together with the stderr tail.
func (r *Runner) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(r.binary(name))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Debug("running tool", observability.String("tool", name), observability.String("args", strings.Join(args, " ")))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", name, ctx.Err())
		}
		return nil, fmt.Errorf("%s failed: %w: %s", name, err, stderrTail(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

func stderrTail(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > stderrTailLimit {
		s = "..." + s[len(s)-stderrTailLimit:]
	}
	if s == "" {
		return "(no stderr)"
	}
	return s
}
