package export

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileSaver writes artifacts into a directory, creating it on first use.
type FileSaver struct {
	Dir string
}

func (s FileSaver) Save(name string, data []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	// The name comes from a URL path segment; keep only its base so a
	// hostile download_url cannot climb out of the export directory.
	target := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return target, nil
}
