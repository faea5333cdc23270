// internal/events/dispatcher.go
package events

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/common/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Config struct {
	Workers     int
	QueueSize   int
	SinkTimeout time.Duration
}

// Dispatcher fans events out to every sink from bounded queues drained by a
// fixed number of workers. Events for one activity and email always land on
// the same worker, so sinks see them in publish order. Publish never blocks
// the caller.
type Dispatcher struct {
	cfg     Config
	sinks   []Sink
	queues  []chan Event
	pending atomic.Int64
	logger  logger.Logger
	obs     *observability.Observability

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

func NewDispatcher(cfg Config, sinks []Sink, log logger.Logger, obs *observability.Observability) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = 5 * time.Second
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if obs == nil {
		obs = &observability.Observability{}
	}
	// QueueSize is split across the per-worker queues.
	perWorker := (cfg.QueueSize + cfg.Workers - 1) / cfg.Workers
	queues := make([]chan Event, cfg.Workers)
	for i := range queues {
		queues[i] = make(chan Event, perWorker)
	}
	return &Dispatcher{
		cfg:    cfg,
		sinks:  sinks,
		queues: queues,
		logger: log.WithFields(map[string]interface{}{"component": "event-dispatcher"}),
		obs:    obs,
	}
}

func (d *Dispatcher) queueFor(event Event) chan Event {
	h := fnv.New32a()
	h.Write([]byte(event.Activity))
	h.Write([]byte{0})
	h.Write([]byte(event.Email))
	return d.queues[h.Sum32()%uint32(len(d.queues))]
}

// Start launches the workers. Calling it twice has no effect.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for _, q := range d.queues {
		d.wg.Add(1)
		go d.run(q)
	}

	names := d.SinkNames()
	d.logger.Info("event dispatcher started", map[string]interface{}{
		"workers":   d.cfg.Workers,
		"queueSize": d.cfg.QueueSize,
		"sinks":     names,
	})
}

// SinkNames lists the configured sinks in delivery order.
func (d *Dispatcher) SinkNames() []string {
	names := make([]string, 0, len(d.sinks))
	for _, s := range d.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Publish enqueues event on its worker's queue. It returns false when the
// dispatcher is closed or that queue is full; the event is dropped in both
// cases.
func (d *Dispatcher) Publish(event Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return false
	}
	if len(d.sinks) == 0 {
		return true
	}

	depth := d.pending.Add(1)
	select {
	case d.queueFor(event) <- event:
		metrics.EventQueueDepth.Set(float64(depth))
		return true
	default:
		d.pending.Add(-1)
		metrics.EventsDropped.Inc()
		d.logger.Warn("event queue full, dropping event", map[string]interface{}{
			"eventId":  event.ID,
			"type":     string(event.Type),
			"activity": event.Activity,
		})
		return false
	}
}

// Close stops intake and waits for queued events to drain or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	started := d.started
	d.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("event dispatcher drained", nil)
		return nil
	case <-ctx.Done():
		d.logger.Warn("event dispatcher close timed out", map[string]interface{}{
			"pending": d.pending.Load(),
		})
		return ctx.Err()
	}
}

func (d *Dispatcher) run(queue <-chan Event) {
	defer d.wg.Done()
	for event := range queue {
		metrics.EventQueueDepth.Set(float64(d.pending.Add(-1)))
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event Event) {
	for _, sink := range d.sinks {
		d.deliverTo(sink, event)
	}
}

func (d *Dispatcher) deliverTo(sink Sink, event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SinkTimeout)
	defer cancel()

	ctx, span := d.obs.StartSpan(ctx, "events.publish",
		attribute.String("sink", sink.Name()),
		attribute.String("event.type", string(event.Type)),
		attribute.String("event.id", event.ID),
	)
	defer span.End()

	if err := sink.Publish(ctx, event); err != nil {
		span.SetStatus(codes.Error, err.Error())
		metrics.EventsFailed.WithLabelValues(sink.Name()).Inc()
		d.obs.RecordEvent(ctx, sink.Name(), "failure")
		d.logger.WithError(err).Error("event delivery failed", map[string]interface{}{
			"sink":     sink.Name(),
			"eventId":  event.ID,
			"type":     string(event.Type),
			"activity": event.Activity,
		})
		return
	}

	metrics.EventsPublished.WithLabelValues(sink.Name()).Inc()
	d.obs.RecordEvent(ctx, sink.Name(), "success")
	d.logger.Debug("event delivered", map[string]interface{}{
		"sink":    sink.Name(),
		"eventId": event.ID,
	})
}
