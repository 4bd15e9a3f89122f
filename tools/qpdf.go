package tools

import "context"

// Linearize rewrites in to out as a linearized ("web optimized") PDF.
func (r *Runner) Linearize(ctx context.Context, in, out string) error {
	_, err := r.run(ctx, QPDF, "--linearize", in, out)
	return err
}
