// Package pdftest provides tiny valid documents for tests that need real PDF
// input without fixture files.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// MinimalPDF builds a one-page empty PDF with a correct xref table.
func MinimalPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	bodies := []string{
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n",
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n",
	}
	offsets := make([]int, 0, len(bodies))
	for _, body := range bodies {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(bodies)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(bodies)+1, xref)
	return buf.Bytes()
}

// Write places a minimal PDF in a temp dir and returns its path.
func Write(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "minimal.pdf")
	if err := os.WriteFile(path, MinimalPDF(), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
