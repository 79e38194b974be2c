package likes

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"artify/internal/notify"
)

// Liker records one like event and returns the server's like count.
type Liker interface {
	Like(ctx context.Context, id string) (int, error)
}

// Listener is told about every count the server confirms.
type Listener func(id string, likes int)

// Mutator sends likes and keeps the last count the server reported for each
// artwork. Counts are never incremented locally. Likes for the same artwork
// go out one at a time, likes for different artworks run in parallel.
type Mutator struct {
	api      Liker
	notifier notify.Notifier
	logger   *slog.Logger

	mu        sync.Mutex
	counts    map[string]int
	locks     map[string]*artworkLock
	listeners map[int]Listener
	nextID    int
}

type artworkLock struct {
	sem  chan struct{}
	refs int
}

func NewMutator(api Liker, notifier notify.Notifier, logger *slog.Logger) *Mutator {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Mutator{
		api:       api,
		notifier:  notifier,
		logger:    logger.With("component", "likes"),
		counts:    make(map[string]int),
		locks:     make(map[string]*artworkLock),
		listeners: make(map[int]Listener),
	}
}

// Like sends one like for id. On failure the known count is left as it was.
func (m *Mutator) Like(ctx context.Context, id string) (int, error) {
	unlock, err := m.lock(ctx, id)
	if err != nil {
		return m.Count(id), err
	}
	defer unlock()

	likes, err := m.api.Like(ctx, id)
	if err != nil {
		m.logger.Warn("like failed", "artwork_id", id, "error", err)
		m.notifier.Notify(notify.Error("Could not like this artwork", err))
		return m.Count(id), fmt.Errorf("like %s: %w", id, err)
	}

	m.mu.Lock()
	m.counts[id] = likes
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	for _, l := range listeners {
		l(id, likes)
	}
	return likes, nil
}

// Count returns the last known count for id, zero if none.
func (m *Mutator) Count(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[id]
}

// Seed primes the count for id from data loaded elsewhere.
func (m *Mutator) Seed(id string, likes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[id] = likes
}

// OnChange registers l. The returned func removes it.
func (m *Mutator) OnChange(l Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// lock takes the per-artwork slot, giving up if ctx ends first.
func (m *Mutator) lock(ctx context.Context, id string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &artworkLock{sem: make(chan struct{}, 1)}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	release := func() {
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}

	select {
	case l.sem <- struct{}{}:
		return func() {
			<-l.sem
			release()
		}, nil
	case <-ctx.Done():
		release()
		return nil, ctx.Err()
	}
}
