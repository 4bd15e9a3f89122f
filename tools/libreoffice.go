package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OfficeToPDF converts an office document (or HTML file) to PDF via headless
// libreoffice and returns the path of the produced file. libreoffice names the
// output after the input base name, so outDir should be an empty scratch dir.
func (r *Runner) OfficeToPDF(ctx context.Context, in, outDir string) (string, error) {
	// Separate profile dir per invocation: concurrent soffice processes sharing
	// a profile deadlock on the profile lock file.
	profile, err := os.MkdirTemp(outDir, "lo-profile-")
	if err != nil {
		return "", fmt.Errorf("create libreoffice profile dir: %w", err)
	}
	defer os.RemoveAll(profile)

	args := []string{
		"--headless",
		fmt.Sprintf("-env:UserInstallation=file://%s", profile),
		"--convert-to", "pdf",
		"--outdir", outDir,
		in,
	}
	if _, err := r.run(ctx, LibreOffice, args...); err != nil {
		return "", err
	}

	base := filepath.Base(in)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	out := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("soffice produced no output at %s: %w", out, err)
	}
	return out, nil
}
