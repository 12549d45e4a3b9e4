package reference

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/papercomputeco/kotori/pkg/embeddings"
	"github.com/papercomputeco/kotori/pkg/vector"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job embeds and stores one chunk.
type Job struct {
	Doc vector.Document

	// done is called with the job's outcome once it has been processed.
	done func(error)
}

// PoolConfig is the configuration options for the worker pool.
type PoolConfig struct {
	Driver   vector.Driver
	Embedder embeddings.Embedder

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	Logger *slog.Logger
}

// Pool embeds and stores chunks asynchronously.
type Pool struct {
	config *PoolConfig
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	closeOnce sync.Once
}

// NewPool creates a Pool and starts its worker goroutines.
func NewPool(c *PoolConfig) (*Pool, error) {
	if c.Driver == nil || c.Embedder == nil {
		return nil, fmt.Errorf("pool requires a vector driver and an embedder")
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job without blocking. It returns false, dropping the
// job, when the queue is full.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("chunk queued", "id", job.Doc.ID)
		return true
	default:
		p.logger.Error("chunk not queued, queue full, job dropped", "id", job.Doc.ID)
		return false
	}
}

// Submit queues a job, waiting for room until ctx is done.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	select {
	case p.queue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs and waits for in-flight jobs to drain.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		err := p.processJob(job)
		if err != nil {
			p.logger.Warn("failed to store chunk", "id", job.Doc.ID, "error", err)
		}
		if job.done != nil {
			job.done(err)
		}
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

func (p *Pool) processJob(job Job) error {
	ctx := context.Background()

	emb, err := p.config.Embedder.Embed(ctx, job.Doc.Content)
	if err != nil {
		return fmt.Errorf("embedding chunk: %w", err)
	}

	doc := job.Doc
	doc.Embedding = emb
	if err := p.config.Driver.Add(ctx, []vector.Document{doc}); err != nil {
		return fmt.Errorf("storing chunk: %w", err)
	}

	p.logger.Debug("stored chunk", "id", doc.ID, "embedding_dim", len(emb))
	return nil
}
