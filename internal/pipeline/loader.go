package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/source"
)

// LoadResult holds the output of the workbook loading pipeline.
type LoadResult struct {
	Ledger      model.Ledger
	TotalFiles  int
	ParsedFiles int
	ParseErrors int
	FileErrors  int
	// Failed maps each unreadable workbook to its error.
	Failed map[string]error
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every workbook under dataDir and merges them
// into one ledger in path order.
func Load(dataDir string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataDir, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	results := parseAll(files, func(n int) {
		if progressFn != nil {
			progressFn(n, len(files))
		}
	})

	for i, pr := range results {
		if pr.Err != nil {
			result.fail(files[i].Path, pr.Err)
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		result.Ledger = result.Ledger.Merge(pr.Ledger)
	}

	return result, nil
}

func (r *LoadResult) fail(path string, err error) {
	r.FileErrors++
	if r.Failed == nil {
		r.Failed = make(map[string]error)
	}
	r.Failed[path] = err
}

// parseAll parses files with a bounded worker pool. Results keep input order.
func parseAll(files []source.DiscoveredFile, done func(n int)) []source.ParseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if done != nil {
					done(int(n))
				}
			}
		}()
	}

	wg.Wait()
	return results
}
