package reference

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/papercomputeco/kotori/pkg/vector"
)

// Result summarizes an ingest run.
type Result struct {
	Files   int
	Chunks  int
	Failed  int
	Removed int
}

// Ingester splits documents into sentence windows and stores them through
// a worker pool.
type Ingester struct {
	driver vector.Driver
	pool   *Pool
	logger *slog.Logger

	Window  int
	Overlap int
}

// NewIngester creates an ingester writing to the pool's driver.
func NewIngester(pool *Pool, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{
		driver:  pool.config.Driver,
		pool:    pool,
		logger:  logger,
		Window:  DefaultWindow,
		Overlap: DefaultOverlap,
	}
}

// IngestFiles reads and ingests each file. A file that cannot be read
// fails the run.
func (in *Ingester) IngestFiles(ctx context.Context, paths ...string) (Result, error) {
	var total Result
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return total, fmt.Errorf("resolving %s: %w", p, err)
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			return total, fmt.Errorf("reading %s: %w", p, err)
		}

		r, err := in.IngestText(ctx, abs, string(data))
		total.Files += r.Files
		total.Chunks += r.Chunks
		total.Failed += r.Failed
		total.Removed += r.Removed
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// IngestText chunks text from path and waits until every chunk has been
// processed. Chunks left over from a previous, longer version of the
// same path are removed.
func (in *Ingester) IngestText(ctx context.Context, path, text string) (Result, error) {
	chunks := ChunkSentences(SplitSentences(text), in.Window, in.Overlap)
	source := filepath.Base(path)

	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	keep := make(map[string]bool, len(chunks))

	for i, content := range chunks {
		id := ChunkID(path, i)
		keep[id] = true

		wg.Add(1)
		job := Job{
			Doc: vector.Document{
				ID:      id,
				Content: content,
				Metadata: map[string]string{
					KeySource: source,
					KeyType:   Type,
					KeyPath:   path,
					KeyIndex:  strconv.Itoa(i),
				},
			},
			done: func(err error) {
				if err != nil {
					failed.Add(1)
				}
				wg.Done()
			},
		}
		if err := in.pool.Submit(ctx, job); err != nil {
			wg.Done()
			wg.Wait()
			return Result{Files: 1, Chunks: i, Failed: int(failed.Load())}, err
		}
	}
	wg.Wait()

	removed, err := in.removeStale(ctx, path, keep)
	if err != nil {
		in.logger.Warn("could not remove stale chunks", "path", path, "error", err)
	}

	r := Result{Files: 1, Chunks: len(chunks), Failed: int(failed.Load()), Removed: removed}
	in.logger.Info("ingested reference document",
		"source", source,
		"chunks", r.Chunks,
		"failed", r.Failed,
		"removed", r.Removed,
	)
	return r, nil
}

func (in *Ingester) removeStale(ctx context.Context, path string, keep map[string]bool) (int, error) {
	docs, err := in.driver.List(ctx, vector.Filter{KeyType: Type, KeyPath: path})
	if err != nil {
		return 0, err
	}

	var stale []string
	for _, d := range docs {
		if !keep[d.ID] {
			stale = append(stale, d.ID)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	return len(stale), in.driver.Delete(ctx, stale)
}
