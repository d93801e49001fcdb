// Package artifact writes generated assembly next to, or under a directory
// derived from, the source it came from.
package artifact

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/zjrosen/xshell/internal/log"
)

// TargetPath derives the artifact path for sourcePath: the base name with its
// extension replaced by targetExt (appended when there is none), placed in
// outputDir. An empty outputDir keeps the source's directory.
func TargetPath(sourcePath, outputDir, targetExt string) string {
	base := filepath.Base(sourcePath)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	if targetExt != "" && !strings.HasPrefix(targetExt, ".") {
		targetExt = "." + targetExt
	}
	if outputDir == "" {
		outputDir = filepath.Dir(sourcePath)
	}
	return filepath.Join(outputDir, base+targetExt)
}

// Writer persists assembly listings.
type Writer struct {
	fs afero.Fs
}

// NewWriter creates a writer on fs. A nil fs writes to the OS filesystem.
func NewWriter(fs afero.Fs) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Writer{fs: fs}
}

// Write stores lines joined by "\n" at path, creating parent directories.
func (w *Writer) Write(path string, lines []string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := w.fs.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := afero.WriteFile(w.fs, path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("writing artifact %s: %w", path, err)
	}
	log.Debug(log.CatStore, "artifact written", "path", path, "lines", len(lines))
	return nil
}

// Read returns a previously written artifact split into lines.
func (w *Writer) Read(path string) ([]string, error) {
	data, err := afero.ReadFile(w.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact %s: %w", path, err)
	}
	if len(data) == 0 {
		return []string{}, nil
	}
	return strings.Split(string(data), "\n"), nil
}

// Exists reports whether an artifact is present at path.
func (w *Writer) Exists(path string) bool {
	ok, err := afero.Exists(w.fs, path)
	return err == nil && ok
}
