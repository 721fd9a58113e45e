package downloader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"threadscraper/pkg/logger"
	"threadscraper/pkg/models"
	"threadscraper/pkg/sink"
)

// mockStorer stores every URL except those listed in fail, sleeping longer
// for earlier posts so completion order differs from submission order
type mockStorer struct {
	fail     map[string]bool
	delay    func(postIndex int) time.Duration
	calls    int32
	inFlight int32
	peak     int32
}

func (m *mockStorer) StorePost(ctx context.Context, postIndex int, urls, _ []string) sink.PostResult {
	atomic.AddInt32(&m.calls, 1)
	n := atomic.AddInt32(&m.inFlight, 1)
	defer atomic.AddInt32(&m.inFlight, -1)
	for {
		p := atomic.LoadInt32(&m.peak)
		if n <= p || atomic.CompareAndSwapInt32(&m.peak, p, n) {
			break
		}
	}

	if m.delay != nil {
		time.Sleep(m.delay(postIndex))
	}

	var res sink.PostResult
	for _, u := range urls {
		if m.fail[u] {
			res.Failed++
			continue
		}
		res.Assets = append(res.Assets, models.MediaAsset{OriginalURL: u, StoredLocation: "stored/" + u})
	}
	return res
}

func jobs(n int) []StoreJob {
	out := make([]StoreJob, n)
	for i := range out {
		out[i] = StoreJob{
			Seq:       i,
			PostIndex: i + 1,
			URLs:      []string{fmt.Sprintf("https://cdn.example.com/%d.jpg", i+1)},
		}
	}
	return out
}

func TestStoreAllPreservesDiscoveryOrder(t *testing.T) {
	storer := &mockStorer{
		delay: func(postIndex int) time.Duration { return time.Duration(10-postIndex) * time.Millisecond },
	}

	var seen int32
	results := StoreAll(context.Background(), 4, storer, jobs(8), logger.NewNopLogger(), func(StoreResult) {
		atomic.AddInt32(&seen, 1)
	})

	require.Len(t, results, 8)
	for i, r := range results {
		assert.Equal(t, i, r.Job.Seq)
		assert.Equal(t, i+1, r.Job.PostIndex)
		require.Len(t, r.Result.Assets, 1)
	}
	assert.Equal(t, int32(8), seen)
	assert.Equal(t, int32(8), atomic.LoadInt32(&storer.calls))
	assert.LessOrEqual(t, atomic.LoadInt32(&storer.peak), int32(4))
}

func TestStoreAllSingleWorkerIsSequential(t *testing.T) {
	storer := &mockStorer{delay: func(int) time.Duration { return time.Millisecond }}

	results := StoreAll(context.Background(), 0, storer, jobs(5), nil, nil)

	assert.Len(t, results, 5)
	if peak := atomic.LoadInt32(&storer.peak); peak != 1 {
		t.Errorf("Expected one job at a time, saw %d", peak)
	}
}

func TestStoreAllRecordsCompletionTimes(t *testing.T) {
	storer := &mockStorer{delay: func(int) time.Duration { return 20 * time.Millisecond }}
	before := time.Now()

	results := StoreAll(context.Background(), 1, storer, jobs(3), nil, nil)

	require.Len(t, results, 3)
	assert.False(t, results[0].FinishedAt.Before(before))
	for i := 1; i < len(results); i++ {
		assert.True(t, results[i].FinishedAt.After(results[i-1].FinishedAt),
			"post %d should finish after post %d", results[i].Job.PostIndex, results[i-1].Job.PostIndex)
	}
}

func TestStoreAllReportsFailures(t *testing.T) {
	storer := &mockStorer{fail: map[string]bool{"https://cdn.example.com/2.jpg": true}}

	results := StoreAll(context.Background(), 2, storer, jobs(3), logger.NewNopLogger(), nil)

	require.Len(t, results, 3)
	assert.Equal(t, 1, results[1].Result.Failed)
	assert.Empty(t, results[1].Result.Assets)
	assert.Equal(t, 0, results[2].Result.Failed)
}

func TestStoreAllEmpty(t *testing.T) {
	results := StoreAll(context.Background(), 3, &mockStorer{}, nil, nil, nil)
	assert.Empty(t, results)
}

func TestWorkerPoolSubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	// a queue that is already full forces Submit to observe the cancellation
	pool := NewWorkerPool(ctx, 1, &mockStorer{}, logger.NewNopLogger())
	for i := 0; i < cap(pool.jobQueue); i++ {
		pool.jobQueue <- StoreJob{Seq: i}
	}
	cancel()

	assert.ErrorIs(t, pool.Submit(StoreJob{Seq: 99}), ErrPoolClosed)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range pool.Results() {
		}
	}()
	pool.Start()
	pool.Stop()
	wg.Wait()
}
