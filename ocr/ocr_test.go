package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakeEngine struct {
	name  string
	fail  map[string]error
	calls int
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Recognize(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	f.calls++
	if err, ok := f.fail[in.ID]; ok {
		return Result{}, err
	}
	return Result{InputID: in.ID, Page: in.Page, PlainText: "text for " + in.ID}, nil
}

func TestRecognizeSequential(t *testing.T) {
	eng := &fakeEngine{name: "fake"}
	inputs := []Input{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	results, err := Recognize(context.Background(), eng, inputs)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[1].InputID != "b" {
		t.Fatalf("result order broken: %+v", results)
	}
}

func TestRecognizePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	eng := &fakeEngine{name: "fake", fail: map[string]error{"b": boom}}

	_, err := Recognize(context.Background(), eng, []Input{{ID: "a"}, {ID: "b"}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestInputOptions(t *testing.T) {
	in := InputFromBytes("img", []byte{1}, ImageFormatPNG,
		WithLanguages("eng", "deu"),
		WithDPI(300),
		WithRegion(Region{X: 1, Y: 2, Width: 10, Height: 20}),
		WithTesseractPSM(6),
		WithTesseractWhitelist("0123456789"),
	)
	if len(in.Languages) != 2 || in.DPI != 300 {
		t.Fatalf("options not applied: %+v", in)
	}
	if in.Region == nil || in.Region.Width != 10 {
		t.Fatalf("region not applied: %+v", in.Region)
	}
	if in.Metadata["tessedit_pageseg_mode"] != "6" {
		t.Fatalf("psm not applied: %v", in.Metadata)
	}
	if in.Metadata["tessedit_char_whitelist"] != "0123456789" {
		t.Fatalf("whitelist not applied: %v", in.Metadata)
	}
}

func TestWithRegionEmptyClears(t *testing.T) {
	in := InputFromBytes("img", nil, ImageFormatPNG, WithRegion(Region{Width: -1}))
	if in.Region != nil {
		t.Fatalf("empty region should clear the field: %+v", in.Region)
	}
}

func TestInputFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page-3.png")
	if err := os.WriteFile(path, []byte("fake png"), 0o600); err != nil {
		t.Fatal(err)
	}

	in, err := InputFromFile(path, 3, WithDPI(150))
	if err != nil {
		t.Fatalf("InputFromFile() error = %v", err)
	}
	if in.ID != "page-3" || in.Page != 3 {
		t.Fatalf("unexpected identity: id=%s page=%d", in.ID, in.Page)
	}
	if in.Format != ImageFormatPNG || in.DPI != 150 {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestInputFromFileUnsupportedExtension(t *testing.T) {
	_, err := InputFromFile(filepath.Join(t.TempDir(), "scan.xyz"), 0)
	if err == nil {
		t.Fatal("expected error for unknown extension")
	}
}

func TestFormatForExtension(t *testing.T) {
	cases := map[string]ImageFormat{
		".png": ImageFormatPNG, "jpg": ImageFormatJPEG, ".JPEG": ImageFormatJPEG,
		"tif": ImageFormatTIFF, ".bogus": "",
	}
	for ext, want := range cases {
		if got := FormatForExtension(ext); got != want {
			t.Errorf("FormatForExtension(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestDefaultEngineIsNoopWithoutProvider(t *testing.T) {
	res, err := DefaultEngine().Recognize(context.Background(), Input{ID: "x", Page: 2})
	if err != nil {
		t.Fatalf("noop engine error = %v", err)
	}
	if res.InputID != "x" || res.Page != 2 || res.PlainText != "" {
		t.Fatalf("unexpected noop result: %+v", res)
	}
}

func TestJobStateTerminal(t *testing.T) {
	for state, want := range map[JobState]bool{
		JobStatePending: false, JobStateRunning: false,
		JobStateSucceeded: true, JobStateFailed: true, JobStateCanceled: true,
	} {
		if got := state.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", state, got, want)
		}
	}
}
