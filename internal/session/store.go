package session

import (
	"context"
	"log/slog"
	"sync"

	"artify/internal/entity"
)

// Provider is the identity provider's side of the contract: it pushes the
// resolved identity, or nil, once per session change.
type Provider interface {
	Subscribe(fn func(*entity.Identity)) (unsubscribe func())
}

// Resetter is implemented by stores holding data that belongs to one account.
type Resetter interface {
	Reset()
}

// Store is the single source of truth for the current session.
type Store struct {
	applyMu sync.Mutex

	mu        sync.Mutex
	state     State
	subs      map[int]func(State)
	nextID    int
	resetters []Resetter
	resolved  chan struct{}

	logger *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		state:    Resolving(),
		subs:     make(map[int]func(State)),
		resolved: make(chan struct{}),
		logger:   logger.With("component", "session"),
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Bind applies every notification from p until the returned func is called.
func (s *Store) Bind(p Provider) (unbind func()) {
	return p.Subscribe(s.Apply)
}

// RegisterReset adds r to the stores cleared whenever the session becomes anonymous.
func (s *Store) RegisterReset(r Resetter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetters = append(s.resetters, r)
}

// Subscribe calls fn after every transition. The returned func removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Wait blocks until the session has been resolved at least once.
func (s *Store) Wait(ctx context.Context) (State, error) {
	select {
	case <-s.resolved:
		return s.State(), nil
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

// Apply moves the session to match identity. A nil identity means signed out.
// Switching directly between two accounts passes through Anonymous so that
// identity-scoped stores are cleared in between.
func (s *Store) Apply(identity *entity.Identity) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	prev := s.State()

	var steps []State
	switch {
	case identity == nil:
		if prev.Phase == PhaseAnonymous {
			return
		}
		steps = []State{Anonymous()}
	case prev.Phase == PhaseAuthenticated && !prev.Identity.Same(identity):
		steps = []State{Anonymous(), Authenticated(*identity)}
	default:
		steps = []State{Authenticated(*identity)}
	}

	for _, next := range steps {
		s.transition(next)
	}
}

func (s *Store) transition(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	select {
	case <-s.resolved:
	default:
		close(s.resolved)
	}
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	resetters := append([]Resetter(nil), s.resetters...)
	s.mu.Unlock()

	s.logger.Info("session changed", "from", prev.Phase.String(), "to", next.Phase.String(), "email", next.Email())

	if next.Phase == PhaseAnonymous {
		for _, r := range resetters {
			r.Reset()
		}
	}
	for _, fn := range subs {
		fn(next)
	}
}
