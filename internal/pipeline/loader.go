package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/source"
)

// LoadResult holds the output of parsing a set of event exports.
type LoadResult struct {
	Events      []model.ChatMessageEvent
	TotalFiles  int
	ParsedFiles int
	ParseErrors int
	FileErrors  int
	Duplicates  int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every export under path without touching a store.
func Load(path string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanPath(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	for _, pr := range parseFiles(files, 0, len(files), progressFn) {
		if pr.Err != nil {
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		result.Duplicates += pr.Duplicates
		result.Events = append(result.Events, pr.Events...)
	}
	return result, nil
}

// parseFiles parses files with a bounded worker pool. Results keep input order.
// Progress is reported as offset+n of total.
func parseFiles(files []source.DiscoveredFile, offset, total int, progressFn ProgressFunc) []source.ParseResult {
	if len(files) == 0 {
		return nil
	}

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
				if progressFn != nil {
					progressFn(offset+int(n), total)
				}
			}
		}()
	}

	wg.Wait()
	return results
}
