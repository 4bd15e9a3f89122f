package tools

import (
	"context"
	"fmt"
)

// GhostscriptPreset rewrites in to out with one of ghostscript's canned
// PDFSETTINGS profiles (screen, ebook, printer, prepress). Preset validity is
// the caller's concern; ghostscript itself accepts unknown presets silently.
func (r *Runner) GhostscriptPreset(ctx context.Context, in, out, preset string) error {
	args := []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		fmt.Sprintf("-dPDFSETTINGS=/%s", preset),
		"-dNOPAUSE", "-dQUIET", "-dBATCH",
		fmt.Sprintf("-sOutputFile=%s", out),
		in,
	}
	_, err := r.run(ctx, Ghostscript, args...)
	return err
}

// GhostscriptTuned rewrites in to out downsampling color and grayscale images
// to colorPPI and re-encoding them as JPEG at jpegQuality. This backs the
// level-based compression path where the caller picks the two knobs.
func (r *Runner) GhostscriptTuned(ctx context.Context, in, out string, jpegQuality, colorPPI int) error {
	args := []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dNOPAUSE", "-dQUIET", "-dBATCH",
		"-dAutoFilterColorImages=false",
		"-dAutoFilterGrayImages=false",
		"-dColorImageFilter=/DCTEncode",
		"-dGrayImageFilter=/DCTEncode",
		"-dDownsampleColorImages=true",
		"-dDownsampleGrayImages=true",
		"-dColorImageDownsampleType=/Bicubic",
		"-dGrayImageDownsampleType=/Bicubic",
		fmt.Sprintf("-dColorImageResolution=%d", colorPPI),
		fmt.Sprintf("-dGrayImageResolution=%d", colorPPI),
		fmt.Sprintf("-dJPEGQ=%d", jpegQuality),
		fmt.Sprintf("-sOutputFile=%s", out),
		in,
	}
	_, err := r.run(ctx, Ghostscript, args...)
	return err
}
