// Package rasterize renders PDF pages to image files via poppler and packages
// them for download.
package rasterize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/wudi/pdftoolkit/observability"
	"github.com/wudi/pdftoolkit/tools"
)

const (
	MinDPI     = 72
	MaxDPI     = 600
	DefaultDPI = 150

	// jpegQuality is the fixed re-encode quality for jpeg output pages.
	jpegQuality = 85
)

// Options controls one rasterization run.
type Options struct {
	// DPI is the render density, MinDPI..MaxDPI.
	DPI int
	// Format is "png" or "jpeg".
	Format string
}

// Validate normalizes defaults and rejects out-of-range values.
func (o *Options) Validate() error {
	if o.DPI == 0 {
		o.DPI = DefaultDPI
	}
	if o.DPI < MinDPI || o.DPI > MaxDPI {
		return fmt.Errorf("dpi %d out of range %d..%d", o.DPI, MinDPI, MaxDPI)
	}
	if o.Format == "" {
		o.Format = "png"
	}
	if o.Format == "jpg" {
		o.Format = "jpeg"
	}
	if o.Format != "png" && o.Format != "jpeg" {
		return fmt.Errorf("unsupported format %q", o.Format)
	}
	return nil
}

func (o Options) ext() string {
	if o.Format == "jpeg" {
		return "jpg"
	}
	return o.Format
}

// Service renders pages through the external tool runner.
type Service struct {
	runner  *tools.Runner
	workers int
	log     observability.Logger
}

// New builds a rasterization service. workers bounds concurrent page
// post-processing; values below one are raised to one.
func New(runner *tools.Runner, workers int, log observability.Logger) *Service {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Service{runner: runner, workers: workers, log: log}
}

// Pages renders every page of in into dir and returns the page file paths in
// page order, named page_<n>.<ext> with n starting at one.
func (s *Service) Pages(ctx context.Context, in, dir string, opts Options) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	prefix := filepath.Join(dir, "raster")
	if err := s.runner.RasterizePages(ctx, in, prefix, opts.DPI, opts.Format); err != nil {
		return nil, err
	}
	pages, err := normalizePages(dir, "raster", opts.ext())
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("rasterization produced no pages")
	}
	s.log.Debug("rasterized pages",
		observability.Int("pages", len(pages)),
		observability.Int("dpi", opts.DPI),
		observability.String("format", opts.Format))

	if opts.Format == "jpeg" {
		if err := s.reencodeJPEGs(ctx, pages); err != nil {
			return nil, err
		}
	}
	return pages, nil
}

// reencodeJPEGs rewrites each page at the fixed service quality, bounded by
// the worker count.
func (s *Service) reencodeJPEGs(ctx context.Context, pages []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, page := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return reencodeJPEG(page)
		})
	}
	return g.Wait()
}

func reencodeJPEG(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read page %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode page %s: %w", path, err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encode page %s: %w", path, err)
	}
	if buf.Len() < len(data) {
		return os.WriteFile(path, buf.Bytes(), 0o600)
	}
	return nil
}

// normalizePages renames pdftoppm's zero-padded output (prefix-01.png) to the
// service's stable page_<n> names and returns them sorted by page number.
func normalizePages(dir, prefix, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	type page struct {
		num  int
		path string
	}
	var found []page
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix+"-") || !strings.HasSuffix(name, "."+ext) {
			continue
		}
		numPart := strings.TrimSuffix(strings.TrimPrefix(name, prefix+"-"), "."+ext)
		num, err := strconv.Atoi(numPart)
		if err != nil {
			continue
		}
		found = append(found, page{num: num, path: filepath.Join(dir, name)})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].num < found[j].num })

	out := make([]string, 0, len(found))
	for _, p := range found {
		dst := filepath.Join(dir, fmt.Sprintf("page_%d.%s", p.num, ext))
		if err := os.Rename(p.path, dst); err != nil {
			return nil, fmt.Errorf("rename page %d: %w", p.num, err)
		}
		out = append(out, dst)
	}
	return out, nil
}
