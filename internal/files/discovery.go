package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindCSVFiles lists the CSV files directly under dir, oldest first by
// modification time. A missing directory yields an empty list.
func FindCSVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	type candidate struct {
		path    string
		modTime int64
	}
	var candidates []candidate
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{
			path:    filepath.Join(dir, entry.Name()),
			modTime: info.ModTime().UnixNano(),
		})
	}
	sort.Slice(candidates, func(a, b int) bool { return candidates[a].modTime < candidates[b].modTime })

	paths := make([]string, len(candidates))
	for i, c := range candidates {
		paths[i] = c.path
	}
	return paths, nil
}

// NewestCSV returns the most recently modified CSV in dir, or "" when the
// directory holds none.
func NewestCSV(dir string) (string, error) {
	paths, err := FindCSVFiles(dir)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", nil
	}
	return paths[len(paths)-1], nil
}
