package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/adapters/queue"
	"github.com/Cleo-Systems/elevate-extract/internal/service/metrics"
)

// Worker is the process-wide driver: it long-polls the queue and runs the
// pipeline over each received item, one at a time. Failures are isolated per
// item; the loop itself only stops when its context is cancelled or the queue
// consumer goes away.
type Worker struct {
	source     queue.Source
	pipeline   *Pipeline
	batchSize  int
	visibility time.Duration
	wait       time.Duration
	log        zerolog.Logger
}

func NewWorker(source queue.Source, pipeline *Pipeline, batchSize int, visibility, wait time.Duration, log zerolog.Logger) *Worker {
	return &Worker{
		source:     source,
		pipeline:   pipeline,
		batchSize:  batchSize,
		visibility: visibility,
		wait:       wait,
		log:        log,
	}
}

// Run loops until ctx is cancelled. An empty batch leads straight into the
// next receive; the long poll is the only throttle.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		items, err := w.source.Receive(ctx, w.batchSize, w.visibility, w.wait)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if errors.Is(err, queue.ErrClosed) {
				return err
			}
			w.log.Error().Err(err).Msg("receive failed")
			continue
		}
		metrics.ReceiveBatchSize.Observe(float64(len(items)))

		for _, item := range items {
			w.handle(ctx, item)
		}
	}
}

func (w *Worker) handle(ctx context.Context, item queue.WorkItem) {
	log := w.log.With().Str("item_id", uuid.NewString()).Logger()

	metrics.InFlight.Inc()
	defer metrics.InFlight.Dec()
	start := time.Now()

	err := w.pipeline.Process(ctx, item)
	metrics.PipelineDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		kind := KindOf(err)
		metrics.MessagesProcessed.WithLabelValues("failure").Inc()
		metrics.FailuresTotal.WithLabelValues(string(kind)).Inc()
		log.Error().Err(err).Str("kind", string(kind)).Dur("elapsed", time.Since(start)).
			Msg("processing failed, releasing item for redelivery")
		if verr := item.SetVisibility(0); verr != nil {
			log.Error().Err(verr).Msg("failed to release item")
		}
		return
	}

	metrics.MessagesProcessed.WithLabelValues("success").Inc()
	if aerr := item.Acknowledge(); aerr != nil {
		// The broker will redeliver after the visibility window lapses; the
		// pipeline is idempotent so a duplicate run is harmless.
		log.Error().Err(aerr).Msg("failed to acknowledge item")
		return
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("item processed")
}
