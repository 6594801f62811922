package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueStockAlert = "jobs:stock_alert"

	JobLowStock = "low_stock"

	// MaxAttempts is how many times a job is handed to its handler before it
	// is moved to the dead letter queue.
	MaxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP. A nil *Dispatcher drops jobs.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	if rdb == nil {
		return nil
	}
	return &Dispatcher{rdb: rdb}
}

// EnqueueLowStock pushes a low stock alert job to Redis.
func (d *Dispatcher) EnqueueLowStock(ctx context.Context, alert StockAlert) error {
	if d == nil {
		return nil
	}
	return d.enqueue(ctx, QueueStockAlert, JobLowStock, alert)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{ID: uuid.NewString(), Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handler processes one job payload. A returned error counts as a failed
// attempt.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Pool consumes the registered job types from their queues.
type Pool struct {
	rdb      *redis.Client
	queue    string
	handlers map[string]Handler
	wg       sync.WaitGroup
}

func NewPool(rdb *redis.Client, queue string) *Pool {
	return &Pool{rdb: rdb, queue: queue, handlers: make(map[string]Handler)}
}

// Register binds a handler to a job type. Must be called before Start.
func (p *Pool) Register(jobType string, h Handler) {
	p.handlers[jobType] = h
}

// Start launches numWorkers goroutines consuming the queue.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
	log.Info().Str("queue", p.queue).Msgf("worker pool started with %d workers", numWorkers)
}

// Wait blocks until every worker has returned after ctx cancellation.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("worker: BRPOP failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		p.deadLetter(ctx, queue, Job{Type: "unknown", Payload: json.RawMessage(fmt.Sprintf("%q", raw))}, err.Error())
		return
	}

	h, ok := p.handlers[job.Type]
	if !ok {
		p.deadLetter(ctx, queue, job, "no handler registered")
		return
	}

	job.Attempts++
	err := h(ctx, job.Payload)
	switch nextStep(job, err) {
	case stepDone:
		log.Debug().Str("type", job.Type).Str("job_id", job.ID).Msg("job processed")
	case stepRetry:
		log.Warn().Err(err).Str("type", job.Type).Str("job_id", job.ID).Int("attempt", job.Attempts).Msg("job failed, requeueing")
		encoded, mErr := json.Marshal(job)
		if mErr == nil {
			mErr = p.rdb.LPush(ctx, queue, encoded).Err()
		}
		if mErr != nil {
			p.deadLetter(ctx, queue, job, "requeue failed: "+mErr.Error())
		}
	case stepDeadLetter:
		p.deadLetter(ctx, queue, job, err.Error())
	}
}

type step int

const (
	stepDone step = iota
	stepRetry
	stepDeadLetter
)

// nextStep decides what happens to a job after an attempt. job.Attempts
// already counts the attempt that produced err.
func nextStep(job Job, err error) step {
	if err == nil {
		return stepDone
	}
	if job.Attempts < MaxAttempts {
		return stepRetry
	}
	return stepDeadLetter
}
