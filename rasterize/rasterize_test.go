package rasterize

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/wudi/pdftoolkit/pdftest"
	"github.com/wudi/pdftoolkit/tools"
)

func TestOptionsValidate(t *testing.T) {
	var o Options
	if err := o.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if o.DPI != DefaultDPI || o.Format != "png" {
		t.Fatalf("defaults not applied: %+v", o)
	}

	o = Options{DPI: 30}
	if err := o.Validate(); err == nil {
		t.Fatal("expected low dpi rejection")
	}
	o = Options{DPI: 1200}
	if err := o.Validate(); err == nil {
		t.Fatal("expected high dpi rejection")
	}
	o = Options{Format: "gif"}
	if err := o.Validate(); err == nil {
		t.Fatal("expected format rejection")
	}
	o = Options{Format: "jpg"}
	if err := o.Validate(); err != nil || o.Format != "jpeg" {
		t.Fatalf("jpg alias not normalized: %+v, %v", o, err)
	}
}

func TestNormalizePages(t *testing.T) {
	dir := t.TempDir()
	// pdftoppm zero-pads page numbers; order on disk is lexical, not numeric.
	for _, name := range []string{"raster-02.png", "raster-10.png", "raster-01.png", "other.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	pages, err := normalizePages(dir, "raster", "png")
	if err != nil {
		t.Fatalf("normalizePages() error = %v", err)
	}
	want := []string{
		filepath.Join(dir, "page_1.png"),
		filepath.Join(dir, "page_2.png"),
		filepath.Join(dir, "page_10.png"),
	}
	if len(pages) != len(want) {
		t.Fatalf("pages = %v", pages)
	}
	for i := range want {
		if pages[i] != want[i] {
			t.Errorf("page[%d] = %s, want %s", i, pages[i], want[i])
		}
	}
	for _, p := range want {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("renamed page missing: %v", err)
		}
	}
}

func TestNormalizePagesEmpty(t *testing.T) {
	pages, err := normalizePages(t.TempDir(), "raster", "png")
	if err != nil {
		t.Fatalf("normalizePages() error = %v", err)
	}
	if len(pages) != 0 {
		t.Fatalf("expected no pages, got %v", pages)
	}
}

func TestReencodeJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 120))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "page_1.jpg")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := reencodeJPEG(path); err != nil {
		t.Fatalf("reencodeJPEG() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("re-encoded page unreadable: %v", err)
	}
	if len(data) > buf.Len() {
		t.Fatalf("re-encode grew the file: %d > %d", len(data), buf.Len())
	}
}

func TestZipFiles(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"page_1.png", "page_2.png"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("data-"+name), 0o600); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	zipPath := filepath.Join(dir, "pages.zip")

	if err := ZipFiles(paths, zipPath); err != nil {
		t.Fatalf("ZipFiles() error = %v", err)
	}
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(zr.File))
	}
	if zr.File[0].Name != "page_1.png" || zr.File[1].Name != "page_2.png" {
		t.Fatalf("unexpected entries: %s, %s", zr.File[0].Name, zr.File[1].Name)
	}
	if zr.File[0].Method != zip.Deflate {
		t.Fatal("entries must be deflate-compressed")
	}
}

func TestPagesRoundTrip(t *testing.T) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		t.Skip("pdftoppm not installed in PATH")
	}
	svc := New(tools.NewRunner(nil, nil), 2, nil)
	in := pdftest.Write(t)
	dir := t.TempDir()

	pages, err := svc.Pages(context.Background(), in, dir, Options{DPI: 72})
	if err != nil {
		t.Fatalf("Pages() error = %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if filepath.Base(pages[0]) != "page_1.png" {
		t.Fatalf("unexpected page name: %s", pages[0])
	}
	img, err := os.ReadFile(pages[0])
	if err != nil || len(img) == 0 {
		t.Fatalf("page file unreadable: %v", err)
	}
}

func TestPagesRejectsBadOptions(t *testing.T) {
	svc := New(tools.NewRunner(nil, nil), 2, nil)
	if _, err := svc.Pages(context.Background(), "in.pdf", t.TempDir(), Options{DPI: 10}); err == nil {
		t.Fatal("expected dpi validation error")
	}
}
