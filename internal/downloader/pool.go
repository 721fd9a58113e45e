// Package downloader fans the storage of extracted posts out to a bounded
// set of workers. Workers never touch the browser: a job carries the image
// URLs already pulled from the page.
package downloader

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"threadscraper/pkg/logger"
	"threadscraper/pkg/sink"
)

// ErrPoolClosed is returned by Submit once the pool is shutting down
var ErrPoolClosed = errors.New("worker pool is shutting down")

// StoreJob is one post's images waiting to be stored
type StoreJob struct {
	// Seq is the post's position in discovery order
	Seq        int
	PostIndex  int
	URLs       []string
	RawSources []string
}

// StoreResult is the outcome of one StoreJob
type StoreResult struct {
	Job      StoreJob
	Result   sink.PostResult
	Duration time.Duration
	// FinishedAt is when the post's last image was settled
	FinishedAt time.Time
}

// PostStorer persists one post's images; *sink.Pipeline satisfies it
type PostStorer interface {
	StorePost(ctx context.Context, postIndex int, urls, rawSources []string) sink.PostResult
}

// WorkerPool runs StoreJobs on a fixed number of goroutines
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan StoreJob
	resultQueue chan StoreResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	storer      PostStorer
	logger      logger.Logger
}

// NewWorkerPool creates a pool bound to ctx. numWorkers below 1 means 1.
func NewWorkerPool(ctx context.Context, numWorkers int, storer PostStorer, log logger.Logger) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan StoreJob, numWorkers*2),
		resultQueue: make(chan StoreResult, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		storer:      storer,
		logger:      logger.OrGlobal(log),
	}
}

// Start launches the workers
func (wp *WorkerPool) Start() {
	wp.logger.DebugWithFields("Starting storage workers", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the queue, waits for in-flight jobs and closes Results
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// Submit queues a job, blocking while the queue is full
func (wp *WorkerPool) Submit(job StoreJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return ErrPoolClosed
	}
}

// Results delivers outcomes in completion order
func (wp *WorkerPool) Results() <-chan StoreResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		start := time.Now()
		res := wp.storer.StorePost(wp.ctx, job.PostIndex, job.URLs, job.RawSources)
		finished := time.Now()

		wp.logger.DebugWithFields("Worker stored post", map[string]interface{}{
			"worker_id":  id,
			"post_index": job.PostIndex,
			"stored":     len(res.Assets),
			"failed":     res.Failed,
		})

		// always delivered; Stop relies on the consumer draining Results
		wp.resultQueue <- StoreResult{Job: job, Result: res, Duration: finished.Sub(start), FinishedAt: finished}
	}
}

// StoreAll runs jobs through a pool of numWorkers and returns one result per
// job, sorted by Seq. onResult, if set, sees each result as it completes.
func StoreAll(ctx context.Context, numWorkers int, storer PostStorer, jobs []StoreJob, log logger.Logger, onResult func(StoreResult)) []StoreResult {
	pool := NewWorkerPool(ctx, numWorkers, storer, log)
	pool.Start()

	go func() {
		defer pool.Stop()
		for _, job := range jobs {
			if err := pool.Submit(job); err != nil {
				return
			}
		}
	}()

	results := make([]StoreResult, 0, len(jobs))
	for r := range pool.Results() {
		if onResult != nil {
			onResult(r)
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Job.Seq < results[j].Job.Seq })
	return results
}
