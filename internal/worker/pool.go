package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueMovimientos = "jobs:movimientos"

	JobMovimiento = "movimiento"
)

// Queue is the subset of the Redis client the workers use.
// *redis.Client satisfies it.
type Queue interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// MovimientoJob is a stock movement whose booking failed during fulfillment.
type MovimientoJob struct {
	PedidoID   uint                  `json:"pedido_id"`
	Movimiento dto.MovimientoRequest `json:"movimiento"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	q  Queue
	cb *infra.CircuitBreaker
}

// NewDispatcher returns a Dispatcher whose pushes go through cb (optional).
func NewDispatcher(q Queue, cb *infra.CircuitBreaker) *Dispatcher {
	return &Dispatcher{q: q, cb: cb}
}

// EncolarMovimiento queues a movement for retry.
func (d *Dispatcher) EncolarMovimiento(ctx context.Context, pedidoID uint, req dto.MovimientoRequest) error {
	return d.enqueue(ctx, QueueMovimientos, JobMovimiento, MovimientoJob{PedidoID: pedidoID, Movimiento: req}, 0)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}, attempts int) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return d.push(ctx, queue, Job{Type: jobType, Payload: data, Attempts: attempts})
}

func (d *Dispatcher) push(ctx context.Context, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.cb.Execute(func() error {
		return d.q.LPush(ctx, queue, encoded).Err()
	})
}

// Processor handles one dequeued job.
type Processor interface {
	Process(ctx context.Context, queue string, job Job)
}

// StartWorkerPool launches numWorkers goroutines consuming queue.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
// The returned WaitGroup completes once every worker saw ctx cancelled.
func StartWorkerPool(ctx context.Context, q Queue, numWorkers int, queue string, p Processor) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, q, id, queue, p)
		}(i)
	}
	log.Info().Str("queue", queue).Msgf("worker pool started with %d workers", numWorkers)
	return &wg
}

func runWorker(ctx context.Context, q Queue, id int, queue string, p Processor) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
		}

		// waits up to 5s then loops to check ctx
		result, err := q.BRPop(ctx, 5*time.Second, queue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("worker: BRPOP falló")
				sleep(ctx, time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		var job Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Error().Str("queue", result[0]).Err(err).Msg("failed to unmarshal job")
			continue
		}
		p.Process(ctx, result[0], job)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func decodePayload(job Job, v interface{}) error {
	if err := json.Unmarshal(job.Payload, v); err != nil {
		return fmt.Errorf("payload de %s inválido: %w", job.Type, err)
	}
	return nil
}
