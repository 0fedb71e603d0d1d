package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/obralink/marketplace/internal/api/metrics"
	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes feed events to a fixed set of workers using consistent
// hashing on the project ID, guaranteeing per-project event ordering.
type Dispatcher struct {
	workers  []chan domain.MessageEvent
	service  ports.FeedService
	log      zerolog.Logger
	wg       sync.WaitGroup
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.FeedService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.MessageEvent, numWorkers),
		service: service,
		log:     log,
		stopped: make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.MessageEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled,
// and from then on Enqueue drops events instead of blocking.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		<-ctx.Done()
		d.stopOnce.Do(func() { close(d.stopped) })
	}()
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue sends an event to the worker responsible for its project. It
// blocks while the shard is full, and returns without enqueuing once the
// dispatcher has stopped.
func (d *Dispatcher) Enqueue(event domain.MessageEvent) {
	idx := d.shardIndex(event.ProjectID)
	select {
	case d.workers[idx] <- event:
	case <-d.stopped:
		d.log.Warn().Str("project_id", event.ProjectID).Str("message_id", event.MessageID).Msg("dispatcher stopped, feed event dropped")
		return
	}
	metrics.FeedQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a project ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(projectID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(projectID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.MessageEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.FeedQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

			start := time.Now()
			outcome := "ok"
			if err := d.service.Process(ctx, event); err != nil {
				outcome = "error"
				d.log.Error().Err(err).
					Str("project_id", event.ProjectID).
					Str("message_id", event.MessageID).
					Int("worker_id", id).
					Msg("feed event processing failed")
			}
			metrics.FeedProcessingDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		}
	}
}
