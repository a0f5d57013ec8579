package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/fintrack/internal/source"
	"github.com/theirongolddev/fintrack/internal/store"
)

// SyncResult extends LoadResult with store sync metadata.
type SyncResult struct {
	LoadResult
	Unchanged int
	Reparsed  int
	Removed   int
}

// LoadWithStore syncs workbooks under dataDir into the ledger database,
// reparsing only files whose mtime or size changed, then returns the full
// ledger including manually entered rows. Tracked workbooks that are gone
// from dataDir have their rows removed. A workbook that fails to parse
// keeps its previously imported rows.
func LoadWithStore(dataDir string, db *store.Ledger, progressFn ProgressFunc) (*SyncResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataDir, err)
	}

	tracked, err := db.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading file tracker: %w", err)
	}

	result := &SyncResult{LoadResult: LoadResult{TotalFiles: len(files)}}

	type stamp struct{ mtime, size int64 }
	var toReparse []source.DiscoveredFile
	var stamps []stamp
	seen := make(map[string]struct{}, len(files))

	for _, f := range files {
		seen[f.Path] = struct{}{}
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}

		prev, ok := tracked[f.Path]
		if ok && prev.MtimeNs == info.ModTime().UnixNano() && prev.SizeBytes == info.Size() {
			result.Unchanged++
			result.ParsedFiles++
			continue
		}
		toReparse = append(toReparse, f)
		stamps = append(stamps, stamp{info.ModTime().UnixNano(), info.Size()})
	}
	result.Reparsed = len(toReparse)

	for path := range tracked {
		if _, ok := seen[path]; ok {
			continue
		}
		if err := db.DeleteSource(path); err != nil {
			return nil, fmt.Errorf("removing %s: %w", path, err)
		}
		result.Removed++
	}

	if len(toReparse) > 0 {
		results := parseAll(toReparse, func(n int) {
			if progressFn != nil {
				progressFn(n+result.Unchanged, result.TotalFiles)
			}
		})

		for i, pr := range results {
			if pr.Err != nil {
				result.fail(toReparse[i].Path, pr.Err)
				continue
			}
			result.ParsedFiles++
			result.ParseErrors += pr.ParseErrors

			if err := db.ReplaceSource(toReparse[i].Path, pr.Ledger, stamps[i].mtime, stamps[i].size); err != nil {
				return nil, fmt.Errorf("storing %s: %w", toReparse[i].Path, err)
			}
		}
	}

	l, err := db.LoadLedger()
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	result.Ledger = l

	return result, nil
}

// StoreDir returns the platform-appropriate data directory for the ledger.
func StoreDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fintrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "fintrack")
}

// StorePath returns the full path to the ledger database.
func StorePath() string {
	return filepath.Join(StoreDir(), "ledger.db")
}
