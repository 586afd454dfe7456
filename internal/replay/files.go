package replay

import (
	"os"
	"path/filepath"
	"sort"
)

// FindRecordings returns the .jsonl files under dir in lexical order.
// Unreadable entries are skipped.
func FindRecordings(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ".jsonl" {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files, err
}
