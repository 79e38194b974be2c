package favorites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"artify/internal/confirm"
	"artify/internal/entity"
	"artify/internal/notify"
	"artify/internal/platform/artifyapi"
)

//go:generate mockgen -source=favorites.go -destination=mocks/mock_api.go -package=mocks API

var (
	ErrUnauthenticated = errors.New("favorites: no signed-in account")
	ErrUnknownFavorite = errors.New("favorites: not in the list")
	// ErrNotRemoved means the server answered but deleted nothing.
	ErrNotRemoved = errors.New("favorites: nothing was removed")
	ErrSuperseded = errors.New("favorites: superseded by a newer request")
)

const kindRemove = "favorite.remove"

type API interface {
	ListFavorites(ctx context.Context, email string) ([]entity.FavoriteRecord, error)
	AddFavorite(ctx context.Context, rec entity.FavoriteRecord) (artifyapi.AddFavoriteResult, error)
	DeleteFavorite(ctx context.Context, id, email string) (int, error)
}

// Outcome of Add. Both values are successes.
type Outcome int

const (
	OutcomeAdded Outcome = iota + 1
	OutcomeAlreadyAdded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeAlreadyAdded:
		return "already added"
	default:
		return "unknown"
	}
}

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

type Snapshot struct {
	Status  Status
	Email   string
	Records []entity.FavoriteRecord
	Err     error
}

// Contains reports whether artworkID is among the loaded favorites.
func (s Snapshot) Contains(artworkID string) bool {
	return slices.ContainsFunc(s.Records, func(r entity.FavoriteRecord) bool { return r.ArtworkID == artworkID })
}

// Store holds the favorites of one account. The list is always replaced
// wholesale from the server; only a confirmed removal edits it locally.
type Store struct {
	api      API
	gate     *confirm.Gate
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	snap   Snapshot
	gen    uint64
	subs   map[int]func(Snapshot)
	nextID int
}

func NewStore(api API, notifier notify.Notifier, logger *slog.Logger) *Store {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		api:      api,
		gate:     confirm.NewGate(),
		notifier: notifier,
		logger:   logger.With("component", "favorites"),
		now:      time.Now,
		subs:     make(map[int]func(Snapshot)),
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Load replaces the list with the server's favorites for email.
func (s *Store) Load(ctx context.Context, email string) (Snapshot, error) {
	if email == "" {
		return Snapshot{}, ErrUnauthenticated
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.snap.Email != email {
		s.snap.Records = nil
	}
	s.snap.Status = StatusLoading
	s.snap.Email = email
	s.snap.Err = nil
	loading := s.snap
	s.mu.Unlock()
	s.publish(loading)

	recs, err := s.api.ListFavorites(ctx, email)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return Snapshot{}, ErrSuperseded
	}
	if err != nil {
		s.snap.Status = StatusFailed
		s.snap.Err = err
		s.snap.Records = nil
		failed := s.snap
		s.mu.Unlock()

		s.logger.Warn("favorites load failed", "email", email, "error", err)
		s.notifier.Notify(notify.Error("Could not load your favorites", err))
		s.publish(failed)
		return failed, err
	}
	s.snap.Status = StatusReady
	s.snap.Records = slices.Clone(recs)
	ready := s.snap
	s.mu.Unlock()

	s.publish(ready)
	return ready, nil
}

// Reload retries the last Load.
func (s *Store) Reload(ctx context.Context) (Snapshot, error) {
	return s.Load(ctx, s.Snapshot().Email)
}

// Add favorites a for email. A duplicate is reported as OutcomeAlreadyAdded,
// not as an error. The list is then refreshed from the server.
func (s *Store) Add(ctx context.Context, a entity.Artwork, email string) (Outcome, error) {
	if email == "" {
		return 0, ErrUnauthenticated
	}

	res, err := s.api.AddFavorite(ctx, entity.NewFavoriteRecord(a, email, s.now().UTC()))
	if err != nil {
		s.logger.Warn("add favorite failed", "artwork_id", a.ID, "error", err)
		s.notifier.Notify(notify.Error("Could not add to favorites", err))
		return 0, fmt.Errorf("add favorite %s: %w", a.ID, err)
	}

	outcome := OutcomeAdded
	if res.AlreadyAdded() {
		outcome = OutcomeAlreadyAdded
		s.notifier.Notify(notify.Info("Already in your favorites"))
	} else {
		s.notifier.Notify(notify.Success("Added to favorites"))
	}
	s.logger.Info("favorite added", "artwork_id", a.ID, "outcome", outcome.String())

	// A failed refresh shows up as StatusFailed; the add itself stands.
	_, _ = s.Load(ctx, email)
	return outcome, nil
}

// RequestRemove starts the removal of a loaded favorite record.
func (s *Store) RequestRemove(favoriteID string) (confirm.Token, error) {
	s.mu.Lock()
	found := slices.ContainsFunc(s.snap.Records, func(r entity.FavoriteRecord) bool { return r.ID == favoriteID })
	s.mu.Unlock()
	if !found {
		return "", fmt.Errorf("%w: %s", ErrUnknownFavorite, favoriteID)
	}
	return s.gate.Request(kindRemove, favoriteID), nil
}

// PendingRemoval returns the record a removal token stands for, without
// consuming the token.
func (s *Store) PendingRemoval(tok confirm.Token) (entity.FavoriteRecord, bool) {
	p, ok := s.gate.Peek(tok)
	if !ok || p.Kind != kindRemove {
		return entity.FavoriteRecord{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.snap.Records, func(r entity.FavoriteRecord) bool { return r.ID == p.Subject })
	if i < 0 {
		return entity.FavoriteRecord{ID: p.Subject}, true
	}
	return s.snap.Records[i], true
}

// CancelRemove drops a pending removal.
func (s *Store) CancelRemove(tok confirm.Token) {
	s.gate.Cancel(tok)
}

// ConfirmRemove deletes the record behind tok. The local list changes only
// when the server reports a deletion.
func (s *Store) ConfirmRemove(ctx context.Context, tok confirm.Token, email string) error {
	if email == "" {
		return ErrUnauthenticated
	}
	p, err := s.gate.Take(tok, kindRemove)
	if err != nil {
		return err
	}

	n, err := s.api.DeleteFavorite(ctx, p.Subject, email)
	if err != nil {
		s.logger.Warn("remove favorite failed", "favorite_id", p.Subject, "error", err)
		s.notifier.Notify(notify.Error("Could not remove favorite", err))
		return fmt.Errorf("remove favorite %s: %w", p.Subject, err)
	}
	if n == 0 {
		s.notifier.Notify(notify.Error("Favorite was not removed", ErrNotRemoved))
		return fmt.Errorf("%w: %s", ErrNotRemoved, p.Subject)
	}

	s.mu.Lock()
	if s.snap.Email != email {
		s.mu.Unlock()
		return nil
	}
	s.snap.Records = slices.DeleteFunc(slices.Clone(s.snap.Records), func(r entity.FavoriteRecord) bool {
		return r.ID == p.Subject
	})
	snap := s.snap
	s.mu.Unlock()

	s.notifier.Notify(notify.Success("Removed from favorites"))
	s.publish(snap)
	return nil
}

// Reset forgets the account's favorites and pending removals. In-flight
// loads are discarded when they return.
func (s *Store) Reset() {
	s.mu.Lock()
	s.gen++
	s.snap = Snapshot{}
	s.mu.Unlock()

	s.gate.Clear()
	s.publish(Snapshot{})
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

func (s *Store) publish(snap Snapshot) {
	s.mu.Lock()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
