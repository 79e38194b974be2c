package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"artify/internal/entity"
)

const DefaultInterval = 30 * time.Second

type API interface {
	Statistics(ctx context.Context) (entity.Statistics, error)
}

type Snapshot struct {
	// Stats holds the last successful fetch.
	Stats      entity.Statistics
	Err        error
	UpdatedAt  time.Time
	Refreshing bool
}

// Poller keeps the site-wide counters fresh.
type Poller struct {
	api      API
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu   sync.Mutex
	snap Snapshot
	subs map[int]func(Snapshot)
	next int
}

func NewPoller(api API, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		api:      api,
		interval: interval,
		logger:   logger.With("component", "stats"),
		now:      time.Now,
		subs:     make(map[int]func(Snapshot)),
	}
}

func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Refresh fetches the counters once. On failure the previous counters stay.
func (p *Poller) Refresh(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	p.snap.Refreshing = true
	snap := p.snap
	p.mu.Unlock()
	p.publish(snap)

	st, err := p.api.Statistics(ctx)

	p.mu.Lock()
	p.snap.Refreshing = false
	p.snap.Err = err
	if err == nil {
		st.FetchedAt = p.now().UTC()
		p.snap.Stats = st
		p.snap.UpdatedAt = st.FetchedAt
	}
	snap = p.snap
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("statistics refresh failed", "error", err)
	}
	p.publish(snap)
	return snap, err
}

// Run refreshes immediately and then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	_, _ = p.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_, _ = p.Refresh(ctx)
		}
	}
}

// Subscribe calls fn with every new snapshot. The returned func removes it.
func (p *Poller) Subscribe(fn func(Snapshot)) func() {
	p.mu.Lock()
	id := p.next
	p.next++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *Poller) publish(snap Snapshot) {
	p.mu.Lock()
	subs := make([]func(Snapshot), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
