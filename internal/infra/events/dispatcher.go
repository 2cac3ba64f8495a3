package events

import (
	"context"
	"errors"
	"time"

	"class-access/internal/domain/model"
	"class-access/internal/domain/ports/adapter"
	"class-access/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// ErrQueueFull is returned when the dispatcher cannot take another event.
var ErrQueueFull = errors.New("access event queue full")

var _ adapter.AccessEventPublisher = (*Dispatcher)(nil)

// Dispatcher decouples callers from the broker. PublishAccessGranted only
// enqueues; Run drains the queue into the wrapped publisher.
type Dispatcher struct {
	sink    adapter.AccessEventPublisher
	queue   chan model.AccessGrantedEvent
	timeout time.Duration
	log     zerolog.Logger
}

func NewDispatcher(sink adapter.AccessEventPublisher, size int, timeout time.Duration, logger *zerolog.Logger) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		sink:    sink,
		queue:   make(chan model.AccessGrantedEvent, size),
		timeout: timeout,
		log:     logger.With().Str("component", "access_events").Logger(),
	}
}

// PublishAccessGranted never blocks. A full queue drops ev and returns ErrQueueFull.
func (d *Dispatcher) PublishAccessGranted(_ context.Context, ev model.AccessGrantedEvent) error {
	select {
	case d.queue <- ev:
		return nil
	default:
		metrics.IncAccessEvent("dropped")
		return ErrQueueFull
	}
}

// Run sends queued events until ctx is done, then flushes what is left
// within one send timeout.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.log.Info().Msg("access event dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.flush()
			return ctx.Err()
		case ev := <-d.queue:
			// An in-flight send outlives shutdown by at most one timeout.
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
			d.send(sctx, ev)
			cancel()
		}
	}
}

func (d *Dispatcher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	for {
		select {
		case ev := <-d.queue:
			if ctx.Err() != nil {
				metrics.IncAccessEvent("dropped")
				continue
			}
			d.send(ctx, ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) send(ctx context.Context, ev model.AccessGrantedEvent) {
	if err := d.sink.PublishAccessGranted(ctx, ev); err != nil {
		metrics.IncAccessEvent("failed")
		d.log.Warn().Err(err).
			Str("user_id", ev.UserID).
			Str("class_id", ev.ClassID).
			Str("source", string(ev.Source)).
			Msg("access event not published")
		return
	}
	metrics.IncAccessEvent("published")
}

// Close closes the wrapped publisher. Call it after Run has returned.
func (d *Dispatcher) Close() error { return d.sink.Close() }
