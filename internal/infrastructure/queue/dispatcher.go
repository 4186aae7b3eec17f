package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/keralahub/culturalhub/internal/api/metrics"
	"github.com/keralahub/culturalhub/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes payment webhook events to a fixed set of workers using
// consistent hashing on the payment intent id, guaranteeing per-order
// event ordering.
type Dispatcher struct {
	workers []chan ports.PaymentEventInput
	service ports.PaymentService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.PaymentService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.PaymentEventInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.PaymentEventInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its payment intent.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(event ports.PaymentEventInput) {
	d.workers[d.shardIndex(event.PaymentIntentID)] <- event
}

// shardIndex maps a payment intent id deterministically to a worker index.
func (d *Dispatcher) shardIndex(paymentIntentID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(paymentIntentID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.PaymentEventInput) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.service.ProcessEvent(ctx, event); err != nil {
				metrics.PaymentEventsErrorsTotal.WithLabelValues("process_failed").Inc()
				d.log.Error().Err(err).
					Str("provider_event", event.EventID).
					Str("payment_intent", event.PaymentIntentID).
					Int("worker_id", id).
					Msg("payment event processing failed")
				continue
			}
			metrics.PaymentEventsProcessedTotal.WithLabelValues(event.Type).Inc()
		}
	}
}
