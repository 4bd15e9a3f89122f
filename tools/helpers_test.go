package tools

import (
	"testing"

	"github.com/wudi/pdftoolkit/pdftest"
)

func writeMinimalPDF(t *testing.T) string {
	t.Helper()
	return pdftest.Write(t)
}
