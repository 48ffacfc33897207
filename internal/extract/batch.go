package extract

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FindPDFs returns the paths of all PDF files under dir, sorted so batch
// output order is stable across runs.
func FindPDFs(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// ExtractBatch processes the given files with a bounded worker pool. File
// tasks share no mutable state: each worker opens and closes its own
// document. A failure on one file is recorded in the summary and the rest of
// the batch continues. Cancelling ctx stops new files from being picked up;
// files already in flight finish or time out on their own.
func (e *Engine) ExtractBatch(ctx context.Context, paths []string, r PageRange) *BatchSummary {
	results := make([]FileResult, len(paths))

	workers := e.opts.Workers
	if workers > len(paths) {
		workers = len(paths)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int, len(paths))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := range jobs {
				path := paths[i]
				if err := ctx.Err(); err != nil {
					results[i] = FileResult{Path: path, Err: err}
					continue
				}

				e.log.Debug().Int("worker", worker).Str("file", path).Msg("worker processing file")
				doc, err := e.ExtractDocument(ctx, path, r)
				if err != nil {
					e.log.Error().Err(err).Str("file", path).Msg("file processing failed")
				}
				results[i] = FileResult{Path: path, Result: doc, Err: err}
			}
		}(w)
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	summary := &BatchSummary{Files: results}
	for _, f := range results {
		if f.Failed() {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}

	e.log.Info().
		Int("total", len(paths)).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Msg("batch processing completed")

	return summary
}
