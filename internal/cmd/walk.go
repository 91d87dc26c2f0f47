package cmd

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// discoverFiles is the CLI's minimal stand-in for the file-tree scanner
// the core does not own: it walks root and returns project-relative
// paths, skipping dotfiles/dotdirs and any exclude glob.
func discoverFiles(root string, excludes []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		base := d.Name()
		if strings.HasPrefix(base, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		for _, pattern := range excludes {
			if match, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); match {
				return nil
			}
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	return files, err
}
