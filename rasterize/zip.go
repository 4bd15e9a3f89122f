package rasterize

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ZipFiles writes the given files into a deflate-compressed archive at
// zipPath, each under its base name.
func ZipFiles(paths []string, zipPath string) error {
	f, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, p := range paths {
		if err := addFile(zw, p); err != nil {
			zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer src.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   filepath.Base(path),
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("add %s: %w", path, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
