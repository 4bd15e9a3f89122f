package ocr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InputOption mutates an OCR input before submission.
type InputOption func(*Input)

// WithLanguages sets language hints on the OCR input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithRegion sets the recognition region on the OCR input.
func WithRegion(region Region) InputOption {
	return func(in *Input) {
		if region.IsEmpty() {
			in.Region = nil
			return
		}
		in.Region = &region
	}
}

// WithDPI overrides the DPI value on the OCR input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithMetadata sets provider-specific metadata for the input.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			in.Metadata = nil
			return
		}
		in.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}

// FormatForExtension maps a file extension (with or without the dot) to an
// ImageFormat. Unknown extensions yield the empty format.
func FormatForExtension(ext string) ImageFormat {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return ImageFormatPNG
	case "jpg", "jpeg":
		return ImageFormatJPEG
	case "tif", "tiff":
		return ImageFormatTIFF
	}
	return ""
}

// InputFromBytes builds an input from an encoded image payload.
func InputFromBytes(id string, data []byte, format ImageFormat, opts ...InputOption) Input {
	in := Input{ID: id, Image: data, Format: format}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

// InputFromFile reads an image file (typically a rasterized document page) and
// builds an input for it. page is the zero-based page index the file
// represents. The generated ID is stable for a page within one document to
// simplify correlation with downstream results.
func InputFromFile(path string, page int, opts ...InputOption) (Input, error) {
	format := FormatForExtension(filepath.Ext(path))
	if format == "" {
		return Input{}, fmt.Errorf("unsupported image extension %q", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("read image %s: %w", path, err)
	}
	in := Input{
		ID:     fmt.Sprintf("page-%d", page),
		Image:  data,
		Format: format,
		Page:   page,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in, nil
}
