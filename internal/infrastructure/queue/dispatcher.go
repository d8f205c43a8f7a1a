package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/planactions/customfields/internal/core/domain"
	"github.com/planactions/customfields/internal/core/ports"
	"github.com/planactions/customfields/internal/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// Dispatcher routes compatibility scans to a fixed set of workers using
// consistent hashing on the field key, so scans of one field run in the
// order their retypes happened.
type Dispatcher struct {
	workers []chan ports.CompatJob
	service ports.CompatService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.CompatService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.CompatJob, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.CompatJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a scan to the worker owning its key. It never blocks the
// admin command that triggered it: when the worker is saturated the scan is
// dropped and logged.
func (d *Dispatcher) Enqueue(job ports.CompatJob) {
	idx := d.shardIndex(job.Key)
	select {
	case d.workers[idx] <- job:
		metrics.CompatQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().Str("key", job.Key).Int("worker_id", idx).Msg("compatibility scan dropped, worker saturated")
	}
}

// Report returns the latest finished scan for key.
func (d *Dispatcher) Report(key string) (*domain.CompatibilityReport, bool) {
	return d.service.Report(key)
}

// shardIndex maps a field key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.CompatJob) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.CompatQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.service.Process(ctx, job); err != nil {
				d.log.Error().Err(err).
					Str("key", job.Key).
					Int("worker_id", id).
					Msg("compatibility scan failed")
			}
		}
	}
}
