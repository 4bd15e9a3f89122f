// Package convert turns uploads between formats: raster images in-process,
// office documents and markdown via the external libreoffice converter.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wudi/pdftoolkit/tools"
)

// Service handles the conversions that need external tools.
type Service struct {
	runner *tools.Runner
}

// New builds a conversion service on top of runner.
func New(runner *tools.Runner) *Service {
	return &Service{runner: runner}
}

// OfficeToPDF converts an office document (docx, odt, xlsx, pptx, html, ...)
// to PDF and returns the output path inside outDir.
func (s *Service) OfficeToPDF(ctx context.Context, in, outDir string) (string, error) {
	return s.runner.OfficeToPDF(ctx, in, outDir)
}

// MarkdownToPDF renders markdown to HTML and hands it to the office converter.
// The produced PDF lives inside dir.
func (s *Service) MarkdownToPDF(ctx context.Context, source []byte, title, dir string) (string, error) {
	htmlDoc, err := MarkdownToHTML(source, title)
	if err != nil {
		return "", err
	}
	htmlPath := filepath.Join(dir, "document.html")
	if err := os.WriteFile(htmlPath, htmlDoc, 0o600); err != nil {
		return "", fmt.Errorf("write intermediate html: %w", err)
	}
	return s.runner.OfficeToPDF(ctx, htmlPath, dir)
}
