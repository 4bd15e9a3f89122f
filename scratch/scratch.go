// Package scratch manages per-request temporary workspaces. Every upload and
// every intermediate artifact lives in one workspace so cleanup is a single
// best-effort sweep after the response is sent.
package scratch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/wudi/pdftoolkit/observability"
)

// Store creates workspaces under a base directory.
type Store struct {
	base string
	log  observability.Logger
}

// NewStore builds a Store rooted at base; empty base means os.TempDir. The
// base directory is created if missing.
func NewStore(base string, log observability.Logger) (*Store, error) {
	if base == "" {
		base = os.TempDir()
	}
	if log == nil {
		log = observability.NopLogger{}
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch base %s: %w", base, err)
	}
	return &Store{base: base, log: log}, nil
}

// Workspace is one uuid-named scratch directory.
type Workspace struct {
	dir string
	log observability.Logger
}

// NewWorkspace creates a fresh workspace directory.
func (s *Store) NewWorkspace() (*Workspace, error) {
	dir := filepath.Join(s.base, "pdftoolkit-"+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir, log: s.log}, nil
}

// Dir returns the workspace directory path.
func (w *Workspace) Dir() string { return w.dir }

// Path joins name onto the workspace directory.
func (w *Workspace) Path(name string) string { return filepath.Join(w.dir, name) }

// Subdir creates and returns a named subdirectory.
func (w *Workspace) Subdir(name string) (string, error) {
	dir := filepath.Join(w.dir, name)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", fmt.Errorf("create subdir %s: %w", name, err)
	}
	return dir, nil
}

// Put streams r into the workspace under the original file name's suffix,
// defaulting to .pdf when the name carries none, and returns the stored path.
func (w *Workspace) Put(name string, r io.Reader) (string, error) {
	suffix := filepath.Ext(name)
	if suffix == "" {
		suffix = ".pdf"
	}
	path := filepath.Join(w.dir, "upload"+suffix)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("store upload: %w", err)
	}
	return path, nil
}

// Cleanup removes the whole workspace. Missing paths are not an error; any
// other failure is logged and swallowed, matching fire-and-forget cleanup
// semantics.
func (w *Workspace) Cleanup() {
	if err := os.RemoveAll(w.dir); err != nil && !os.IsNotExist(err) {
		w.log.Warn("scratch cleanup failed",
			observability.String("dir", w.dir),
			observability.Error("err", err))
	}
}
