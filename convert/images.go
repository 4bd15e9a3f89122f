package convert

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // decode only
)

// DefaultJPEGQuality is used when the caller does not pick one.
const DefaultJPEGQuality = 85

// ImageOptions controls a single image conversion.
type ImageOptions struct {
	// To is the target format: png, jpeg, gif, bmp or tiff.
	To string
	// MaxEdge, when positive, downscales the image so its longer edge does not
	// exceed this many pixels. Images already within the bound are untouched.
	MaxEdge int
	// JPEGQuality applies to jpeg output; zero means DefaultJPEGQuality.
	JPEGQuality int
}

// Normalize canonicalizes the target format and rejects unsupported ones.
// AVIF and HEIF are called out explicitly: the container image may carry their
// system codecs, but no Go encoder is available in-process.
func (o *ImageOptions) Normalize() error {
	o.To = strings.ToLower(strings.TrimSpace(o.To))
	switch o.To {
	case "jpg":
		o.To = "jpeg"
	case "tif":
		o.To = "tiff"
	}
	switch o.To {
	case "png", "jpeg", "gif", "bmp", "tiff":
	case "avif", "heif", "heic", "webp":
		return fmt.Errorf("no in-process encoder for %s", o.To)
	case "":
		return fmt.Errorf("target format is required")
	default:
		return fmt.Errorf("unsupported target format %q", o.To)
	}
	if o.MaxEdge < 0 {
		return fmt.Errorf("max_edge must not be negative")
	}
	if o.JPEGQuality == 0 {
		o.JPEGQuality = DefaultJPEGQuality
	}
	if o.JPEGQuality < 1 || o.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality %d out of range 1..100", o.JPEGQuality)
	}
	return nil
}

// ContentType returns the MIME type of the target format.
func (o ImageOptions) ContentType() string {
	if o.To == "" {
		return "application/octet-stream"
	}
	return "image/" + o.To
}

// Ext returns the file extension (without dot) for the target format.
func (o ImageOptions) Ext() string {
	if o.To == "jpeg" {
		return "jpg"
	}
	return o.To
}

// Image decodes r (png, jpeg, gif, bmp, tiff or webp), optionally downscales
// it, and encodes it to w in the target format.
func Image(r io.Reader, w io.Writer, opts ImageOptions) error {
	if err := opts.Normalize(); err != nil {
		return err
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	img = shrinkToEdge(img, opts.MaxEdge)

	switch opts.To {
	case "png":
		err = png.Encode(w, img)
	case "jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: opts.JPEGQuality})
	case "gif":
		err = gif.Encode(w, img, nil)
	case "bmp":
		err = bmp.Encode(w, img)
	case "tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", opts.To, err)
	}
	return nil
}

// shrinkToEdge downscales img so its longer edge is at most maxEdge pixels.
// The CatmullRom kernel keeps text in scanned pages readable after resizing.
func shrinkToEdge(img image.Image, maxEdge int) image.Image {
	if maxEdge <= 0 {
		return img
	}
	b := img.Bounds()
	long := b.Dx()
	if b.Dy() > long {
		long = b.Dy()
	}
	if long <= maxEdge {
		return img
	}
	scale := float64(maxEdge) / float64(long)
	w := int(float64(b.Dx()) * scale)
	h := int(float64(b.Dy()) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
