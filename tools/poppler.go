package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// RasterizePages renders every page of in as an image file using pdftoppm.
// format must be "png" or "jpeg". Output files are written next to outPrefix
// with pdftoppm's own page-number suffixes; callers normalize the names.
func (r *Runner) RasterizePages(ctx context.Context, in, outPrefix string, dpi int, format string) error {
	args := []string{"-r", strconv.Itoa(dpi)}
	switch format {
	case "png":
		args = append(args, "-png")
	case "jpeg":
		args = append(args, "-jpeg")
	default:
		return fmt.Errorf("pdftoppm: unsupported format %q", format)
	}
	args = append(args, in, outPrefix)
	_, err := r.run(ctx, PDFToPPM, args...)
	return err
}

// PageCount returns the number of pages pdfinfo reports for in.
func (r *Runner) PageCount(ctx context.Context, in string) (int, error) {
	out, err := r.run(ctx, PDFInfo, in)
	if err != nil {
		return 0, err
	}
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("pdfinfo: parse page count: %w", err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("pdfinfo: no page count in output")
}

// ProbePDF runs pdfinfo over in to check that it is a readable PDF.
func (r *Runner) ProbePDF(ctx context.Context, in string) error {
	_, err := r.run(ctx, PDFInfo, in)
	return err
}
