package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"artify/internal/entity"
	"artify/internal/notify"
	"artify/internal/platform/artifyapi"
)

var (
	// ErrSuperseded is returned by a page load that was overtaken by a newer one.
	ErrSuperseded  = errors.New("catalog: superseded by a newer request")
	ErrInvalidPage = errors.New("catalog: page out of range")
	ErrClosed      = errors.New("catalog: store closed")
)

// Lister is the part of the API client the catalog needs.
type Lister interface {
	ListArtworks(ctx context.Context, page, limit int) (artifyapi.ArtworkPage, error)
}

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Snapshot is an immutable view of the store. Callers must not modify the
// slices it carries.
type Snapshot struct {
	Status     Status
	Page       int
	TotalPages int
	// Artworks is the page as returned by the server.
	Artworks []entity.Artwork
	// Visible is Artworks after the filter.
	Visible []entity.Artwork
	Filter  FilterState
	Err     error
}

// NoMatches reports a successful load that the filter (or the server) left
// empty. It is never true for a failed load.
func (s Snapshot) NoMatches() bool {
	return s.Status == StatusReady && len(s.Visible) == 0
}

func (s Snapshot) Pagination() Pagination {
	return newPagination(s.Page, s.TotalPages)
}

// Store serves one page of public artworks at a time. Page loads are
// latest-wins: starting a load cancels the one in flight and any response
// that still arrives for it is dropped.
type Store struct {
	api      Lister
	notifier notify.Notifier
	logger   *slog.Logger

	mu     sync.Mutex
	snap   Snapshot
	gen    uint64
	cancel context.CancelFunc
	closed bool
	subs   map[int]func(Snapshot)
	nextID int
}

func NewStore(api Lister, notifier notify.Notifier, logger *slog.Logger) *Store {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		api:      api,
		notifier: notifier,
		logger:   logger.With("component", "catalog"),
		subs:     make(map[int]func(Snapshot)),
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// LoadPage fetches page and makes it the current page. The store reports
// StatusLoading from the moment LoadPage is called until the fetch ends.
func (s *Store) LoadPage(ctx context.Context, page int) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	if page < 1 || (s.snap.TotalPages > 0 && page > s.snap.TotalPages) {
		s.mu.Unlock()
		return Snapshot{}, fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.snap.Status = StatusLoading
	s.snap.Page = page
	s.snap.Err = nil
	loading := s.snap
	s.mu.Unlock()

	s.publish(loading)

	res, err := s.api.ListArtworks(reqCtx, page, PageSize)
	if err == nil && page > max(res.TotalPages, 1) {
		// The total was unknown when page was accepted. Fetch the last page
		// instead so the label and the data always agree.
		s.logger.Debug("page past the end, loading last page", "page", page, "total", res.TotalPages)
		page = max(res.TotalPages, 1)
		res, err = s.api.ListArtworks(reqCtx, page, PageSize)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return Snapshot{}, ErrClosed
	}
	if gen != s.gen {
		s.mu.Unlock()
		cancel()
		s.logger.Debug("discarded stale page", "page", page)
		return Snapshot{}, ErrSuperseded
	}
	s.cancel = nil
	cancel()

	if err != nil {
		// A failed page is not shown as if the previous page were current.
		s.snap.Status = StatusFailed
		s.snap.Err = err
		s.snap.Artworks = nil
		s.snap.Visible = nil
		failed := s.snap
		s.mu.Unlock()

		s.logger.Warn("page load failed", "page", page, "error", err)
		s.notifier.Notify(notify.Error("Could not load artworks", err))
		s.publish(failed)
		return failed, err
	}

	s.snap.Status = StatusReady
	s.snap.TotalPages = max(res.TotalPages, page, 1)
	s.snap.Page = page
	s.snap.Artworks = slices.Clone(res.Data)
	s.snap.Visible = Filter(s.snap.Artworks, s.snap.Filter)
	ready := s.snap
	s.mu.Unlock()

	s.publish(ready)
	return ready, nil
}

// Reload fetches the current page again, or the first page if none was loaded.
func (s *Store) Reload(ctx context.Context) (Snapshot, error) {
	page := max(s.Snapshot().Page, 1)
	return s.LoadPage(ctx, page)
}

// ApplyFilter narrows the loaded page. It never fetches and never changes the
// current page.
func (s *Store) ApplyFilter(search string, categories []string) Snapshot {
	s.mu.Lock()
	if s.closed {
		snap := s.snap
		s.mu.Unlock()
		return snap
	}
	s.snap.Filter = FilterState{Search: search, Categories: slices.Clone(categories)}
	s.snap.Visible = Filter(s.snap.Artworks, s.snap.Filter)
	snap := s.snap
	s.mu.Unlock()

	s.publish(snap)
	return snap
}

// ApplyLikeCount replaces the like count of one loaded artwork with the
// server's value.
func (s *Store) ApplyLikeCount(id string, likes int) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	i := slices.IndexFunc(s.snap.Artworks, func(a entity.Artwork) bool { return a.ID == id })
	if i < 0 || s.snap.Artworks[i].LikeCount == likes {
		s.mu.Unlock()
		return
	}
	arts := slices.Clone(s.snap.Artworks)
	arts[i].LikeCount = likes
	s.snap.Artworks = arts
	s.snap.Visible = Filter(arts, s.snap.Filter)
	snap := s.snap
	s.mu.Unlock()

	s.publish(snap)
}

// Subscribe calls fn with every new snapshot. The returned func removes it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Close cancels the load in flight. Later results and calls are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.subs = map[int]func(Snapshot){}
}

func (s *Store) publish(snap Snapshot) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
