package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrQueueFull is returned by TryEnqueue when the buffer has no room.
var ErrQueueFull = errors.New("queue full")

// ErrQueueStopped is returned when enqueueing on a queue that is not running.
var ErrQueueStopped = errors.New("queue not running")

// Job is one unit of background work.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job. A returned error schedules a retry.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	// DrainTimeout bounds how long Stop keeps processing buffered jobs.
	DrainTimeout time.Duration
	// OnDrop receives every job the queue gives up on: retries exhausted,
	// a retry cancelled by Stop, or still buffered when the drain times out.
	OnDrop func(Job, error)
	Logger *zap.Logger
}

// Queue is an in-memory job dispatcher backed by a fixed set of goroutines.
// Buffered jobs are drained on Stop.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	retries sync.WaitGroup
	mu      sync.RWMutex
	running bool
}

// NewQueue builds a queue. Zero config values fall back to small defaults.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger.With(zap.String("queue", name)),
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.running = true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers), zap.Int("buffer", q.cfg.BufferSize))
}

// Stop refuses new jobs, processes what is already buffered for at most
// DrainTimeout, then stops the workers.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		for len(q.jobs) > 0 {
			time.Sleep(10 * time.Millisecond)
		}
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(q.cfg.DrainTimeout):
		q.logger.Warn("queue drain timed out", zap.Int("pending", len(q.jobs)))
	}

	q.cancel()
	q.wg.Wait()
	q.retries.Wait()
	for len(q.jobs) > 0 {
		q.drop(<-q.jobs, ErrQueueStopped)
	}
	q.logger.Info("queue stopped")
}

// Enqueue blocks until the job is buffered or ctx ends.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	qctx, err := q.prepare(&job)
	if err != nil {
		return err
	}
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-qctx.Done():
		return fmt.Errorf("%s: %w", q.name, ErrQueueStopped)
	}
}

// TryEnqueue buffers the job without blocking.
func (q *Queue) TryEnqueue(job Job) error {
	if _, err := q.prepare(&job); err != nil {
		return err
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("%s: %w", q.name, ErrQueueFull)
	}
}

// Pending reports how many jobs are buffered.
func (q *Queue) Pending() int {
	return len(q.jobs)
}

func (q *Queue) prepare(job *Job) (context.Context, error) {
	q.mu.RLock()
	running, ctx := q.running, q.ctx
	q.mu.RUnlock()
	if !running {
		return nil, fmt.Errorf("%s: %w", q.name, ErrQueueStopped)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	return ctx, nil
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			if err := q.handler(q.ctx, job); err != nil {
				q.handleFailure(job, err)
			}
		}
	}
}

func (q *Queue) handleFailure(job Job, err error) {
	job.Attempt++
	if job.Attempt > q.cfg.MaxRetries {
		q.drop(job, err)
		return
	}
	q.logger.Warn("job failed, retrying",
		zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Int("attempt", job.Attempt), zap.Error(err))

	q.retries.Add(1)
	go func(j Job) {
		defer q.retries.Done()
		timer := time.NewTimer(q.cfg.RetryDelay * time.Duration(j.Attempt))
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			q.drop(j, err)
		case <-timer.C:
			select {
			case q.jobs <- j:
			case <-q.ctx.Done():
				q.drop(j, err)
			}
		}
	}(job)
}

func (q *Queue) drop(job Job, err error) {
	q.logger.Error("job dropped",
		zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Int("attempts", job.Attempt), zap.Error(err))
	if q.cfg.OnDrop != nil {
		q.cfg.OnDrop(job, err)
	}
}
