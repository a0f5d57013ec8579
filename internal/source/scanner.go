package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir walks dataDir and returns every .toml workbook, sorted by path.
// A missing directory yields no files and no error.
func ScanDir(dataDir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			// Hidden directories hold editor state and backups.
			if path != dataDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".toml" {
			return nil
		}

		files = append(files, DiscoveredFile{
			Path: path,
			Name: strings.TrimSuffix(d.Name(), ".toml"),
		})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}
