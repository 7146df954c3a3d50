// Package usage maintains per-bot submission counters off the request path.
package usage

import (
	"context"
	"sync"
	"time"

	"github.com/blix057/afdver-Bot/internal/logger"
)

// Defaults wired by bootstrap.
const (
	DefaultCapacity       = 1024
	DefaultFlushInterval  = time.Second
	DefaultFlushThreshold = 500
)

// flushTimeout bounds the database work of a single flush.
const flushTimeout = 5 * time.Second

// Sink persists aggregated usage counts.
type Sink interface {
	RecordUsage(ctx context.Context, identity string, submissions int64, at time.Time) error
}

// Recorder buffers accepted-submission events and periodically folds them
// into the bots table. Counters are advisory: a full buffer drops the
// event rather than stalling ingest, and flush failures are logged and
// forgotten.
type Recorder struct {
	sink           Sink
	log            logger.Logger
	events         chan string
	closed         chan struct{}
	once           sync.Once
	wg             sync.WaitGroup
	flushInterval  time.Duration
	flushThreshold int
}

// New creates a recorder that aggregates events by identity and flushes
// every flushInterval, or earlier once flushThreshold events are pending.
func New(
	sink Sink,
	log logger.Logger,
	capacity int,
	flushInterval time.Duration,
	flushThreshold int,
) *Recorder {
	return &Recorder{
		sink:           sink,
		log:            log,
		events:         make(chan string, capacity),
		closed:         make(chan struct{}),
		flushInterval:  flushInterval,
		flushThreshold: flushThreshold,
	}
}

// Record performs a non-blocking send of one accepted submission by the
// given identity. It returns false if the buffer is full.
func (r *Recorder) Record(identity string) bool {
	select {
	case r.events <- identity:
		return true
	default:
		return false
	}
}

// Start launches the background flush goroutine.
func (r *Recorder) Start() {
	r.wg.Add(1)
	go r.loop()
}

// Close drains the buffer, flushes what is pending, and waits for the
// flush goroutine to finish. It is safe to call multiple times.
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.closed)
	})
	r.wg.Wait()
}

func (r *Recorder) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	pending := make(map[string]int64)
	count := 0

	for {
		select {
		case identity := <-r.events:
			pending[identity]++
			count++
			if count >= r.flushThreshold {
				r.flush(pending)
				pending = make(map[string]int64)
				count = 0
			}

		case <-ticker.C:
			if count > 0 {
				r.flush(pending)
				pending = make(map[string]int64)
				count = 0
			}

		case <-r.closed:
			r.drain(pending)
			if len(pending) > 0 {
				r.flush(pending)
			}
			return
		}
	}
}

// drain reads all remaining events from the buffer channel into the map.
func (r *Recorder) drain(pending map[string]int64) {
	for {
		select {
		case identity := <-r.events:
			pending[identity]++
		default:
			return
		}
	}
}

// flush writes one aggregated update per identity.
func (r *Recorder) flush(pending map[string]int64) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	now := time.Now()
	for identity, submissions := range pending {
		if err := r.sink.RecordUsage(ctx, identity, submissions, now); err != nil {
			r.log.Error("Failed to record bot usage",
				logger.String("identity", identity),
				logger.Int64("submissions", submissions),
				logger.Error(err),
			)
		}
	}

	r.log.Debug("Flushed usage counters",
		logger.Int("identities", len(pending)),
	)
}
