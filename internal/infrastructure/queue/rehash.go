package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lunchorder/order-system/internal/core/domain"
)

const (
	defaultWorkers = 2
	channelBuffer  = 64
	jobTimeout     = 5 * time.Second
)

// Rehasher persists a hashed replacement for a legacy credential.
type Rehasher interface {
	EnsureHashed(ctx context.Context, p *domain.Principal) (bool, error)
}

// Counter is satisfied by prometheus.Counter.
type Counter interface {
	Inc()
}

// RehashDispatcher migrates legacy credentials off the login path. Jobs are
// sharded by username so one principal is never rehashed by two workers at once.
type RehashDispatcher struct {
	workers  []chan domain.Principal
	rehasher Rehasher
	migrated Counter
	log      zerolog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewRehashDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. migrated may be nil.
func NewRehashDispatcher(numWorkers int, rehasher Rehasher, migrated Counter, log zerolog.Logger) *RehashDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &RehashDispatcher{
		workers:  make([]chan domain.Principal, numWorkers),
		rehasher: rehasher,
		migrated: migrated,
		log:      log,
		pending:  make(map[string]struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Principal, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *RehashDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue schedules p for migration and never blocks. A principal already
// waiting is not queued twice; a full shard drops the job, and the next login
// schedules it again.
func (d *RehashDispatcher) Enqueue(p domain.Principal) {
	d.mu.Lock()
	if _, ok := d.pending[p.Username]; ok {
		d.mu.Unlock()
		return
	}
	d.pending[p.Username] = struct{}{}
	d.mu.Unlock()

	select {
	case d.workers[d.shardIndex(p.Username)] <- p:
	default:
		d.done(p.Username)
		d.log.Warn().Str("username", p.Username).Msg("rehash queue full, dropping job")
	}
}

func (d *RehashDispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *RehashDispatcher) done(username string) {
	d.mu.Lock()
	delete(d.pending, username)
	d.mu.Unlock()
}

func (d *RehashDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Principal) {
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-ch:
			if !ok {
				return
			}
			d.process(ctx, id, p)
		}
	}
}

func (d *RehashDispatcher) process(ctx context.Context, id int, p domain.Principal) {
	defer d.done(p.Username)

	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	migrated, err := d.rehasher.EnsureHashed(jobCtx, &p)
	if err != nil {
		d.log.Error().Err(err).
			Str("username", p.Username).
			Int("worker_id", id).
			Msg("credential migration failed")
		return
	}
	if migrated {
		if d.migrated != nil {
			d.migrated.Inc()
		}
		d.log.Info().Str("username", p.Username).Int("worker_id", id).Msg("legacy credential migrated")
	}
}
