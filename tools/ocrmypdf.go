package tools

import (
	"context"
	"strings"
)

// MakeSearchable runs ocrmypdf over in, producing a PDF with a hidden text
// layer at out. skipText leaves pages that already carry text untouched.
func (r *Runner) MakeSearchable(ctx context.Context, in, out string, langs []string, skipText bool) error {
	var args []string
	if skipText {
		args = append(args, "--skip-text")
	}
	if len(langs) > 0 {
		args = append(args, "-l", strings.Join(langs, "+"))
	}
	args = append(args, in, out)
	_, err := r.run(ctx, OCRmyPDF, args...)
	return err
}
