package parser

import (
	"fmt"
	"os"
	"path/filepath"
)

// spoolTemp writes document bytes to a temp file so external tools can be
// pointed at a path. Call cleanup() to remove the temp dir.
func spoolTemp(data []byte, pattern, filename string) (path string, cleanup func(), err error) {
	tmpDir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup = func() { _ = os.RemoveAll(tmpDir) }

	path = filepath.Join(tmpDir, filename)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("spool document: %w", err)
	}
	return path, cleanup, nil
}
