// Package thumbs turns folder scans into decoded gallery thumbnails.
//
// A Pool runs decode jobs on a bounded set of worker goroutines and delivers
// every result, success or failure, on a shared channel. A Collector owns
// the visible thumbnail list: it starts scans, tags each job with a
// generation counter and drops results whose generation has been superseded
// by a newer scan.
package thumbs

import (
	"image"
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultConcurrency caps how many decodes run in parallel unless a pool is
// configured otherwise.
const DefaultConcurrency = 8

// Codec decodes an image file into a raster bounded by maxWidth x maxHeight.
type Codec interface {
	DecodeScaled(path string, maxWidth, maxHeight int) (image.Image, error)
}

// Job is one unit of thumbnail work. Gen ties the job to the scan request
// that created it.
type Job struct {
	Path   string
	Width  int
	Height int
	Gen    int64
}

// Result is the outcome of one Job. Raster is nil when the decode failed
// and Err then carries the cause. A failed decode is data, not a fault: it
// still produces exactly one Result.
type Result struct {
	Path   string
	Raster image.Image
	Gen    int64
	Err    error
}

// Pool executes jobs with bounded parallelism. Results are written to the
// channel handed to NewPool; the pool never closes that channel, so several
// pools may share one.
type Pool struct {
	codec     Codec
	semaphore chan struct{}
	results   chan<- Result
	wg        sync.WaitGroup
}

// NewPool creates a pool running at most concurrency decodes at once.
// concurrency <= 0 selects DefaultConcurrency.
func NewPool(codec Codec, concurrency int, results chan<- Result) *Pool {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Pool{
		codec:     codec,
		semaphore: make(chan struct{}, concurrency),
		results:   results,
	}
}

// Submit enqueues a job and returns immediately. The job runs in its own
// goroutine once a worker slot frees up. Submissions are not deduplicated:
// the same path submitted twice yields two results. In-flight jobs are
// never cancelled.
func (p *Pool) Submit(job Job) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		// Acquire semaphore
		p.semaphore <- struct{}{}
		defer func() { <-p.semaphore }() // Release semaphore when done

		raster, err := p.codec.DecodeScaled(job.Path, job.Width, job.Height)
		if err != nil {
			log.Debug().Str("path", job.Path).Err(err).Msg("thumbnail decode failed")
			p.results <- Result{Path: job.Path, Gen: job.Gen, Err: err}
			return
		}
		p.results <- Result{Path: job.Path, Raster: raster, Gen: job.Gen}
	}()
}

// Wait blocks until every submitted job has delivered its result.
func (p *Pool) Wait() {
	p.wg.Wait()
}
