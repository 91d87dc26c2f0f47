package patterndriver

import (
	"os"
	"path/filepath"
)

func joinRoot(projectRoot, relPath string) string {
	if filepath.IsAbs(relPath) {
		return relPath
	}
	return filepath.Join(projectRoot, relPath)
}

func openFile(path string) (*os.File, error) {
	return os.Open(path)
}

func extOf(path string) string {
	return filepath.Ext(path)
}
