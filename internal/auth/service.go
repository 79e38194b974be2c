package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"artify/internal/entity"
	"artify/internal/store"
)

var (
	ErrSignedOut       = errors.New("auth: not signed in")
	ErrProviderProfile = errors.New("auth: profile cannot be edited here")
)

// SessionStore persists the signed-in session between runs.
type SessionStore interface {
	Save(ctx context.Context, s entity.StoredSession) error
	Get(ctx context.Context) (entity.StoredSession, error)
	Delete(ctx context.Context) error
}

type PasswordSigner interface {
	SignIn(ctx context.Context, email, password string) (entity.Identity, error)
	SignUp(ctx context.Context, email, password string) (entity.Identity, error)
	UpdateProfile(ctx context.Context, idToken string, p Profile) (entity.Identity, error)
}

type FederatedSigner interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (entity.Identity, error)
	Verify(ctx context.Context, raw string) (entity.Identity, error)
}

// Service is the identity provider seen by the rest of the application.
// Subscribers get the resolved identity, or nil, once per change.
type Service struct {
	sessions SessionStore
	password PasswordSigner
	google   FederatedSigner
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	current  *entity.Identity
	resolved bool
	subs     map[int]func(*entity.Identity)
	nextID   int
}

// NewService wires the providers. password and google may be nil when not
// configured; the matching sign-in methods then return ErrNotConfigured.
func NewService(sessions SessionStore, password PasswordSigner, google FederatedSigner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions: sessions,
		password: password,
		google:   google,
		logger:   logger.With("component", "auth"),
		now:      time.Now,
		subs:     make(map[int]func(*entity.Identity)),
	}
}

// Subscribe registers fn. Once the session is resolved fn is called
// immediately with the current identity.
func (s *Service) Subscribe(fn func(*entity.Identity)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	resolved, current := s.resolved, s.current
	s.mu.Unlock()

	if resolved {
		fn(current)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Current returns the signed-in identity or nil.
func (s *Service) Current() *entity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	id := *s.current
	return &id
}

// Restore resolves the session persisted by an earlier run. A missing or
// expired session resolves to signed out.
func (s *Service) Restore(ctx context.Context) (*entity.Identity, error) {
	stored, err := s.sessions.Get(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.set(nil)
		return nil, nil
	case err != nil:
		// Still resolve, or nothing waiting on the session would ever proceed.
		s.set(nil)
		return nil, fmt.Errorf("restore session: %w", err)
	}

	id := stored.Identity()
	s.logger.Info("session restored", "email", id.Email, "provider", id.Provider)
	s.set(&id)
	return &id, nil
}

func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*entity.Identity, error) {
	if s.password == nil {
		return nil, ErrNotConfigured
	}
	id, err := s.password.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Warn("password sign in failed", "email", email, "error", err)
		return nil, err
	}
	return s.signedIn(ctx, id)
}

// Register creates a password account, sets its profile and signs it in.
// The password rule is checked before anything is sent.
func (s *Service) Register(ctx context.Context, email, password string, p Profile) (*entity.Identity, error) {
	if s.password == nil {
		return nil, ErrNotConfigured
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	p, err := p.Validate()
	if err != nil {
		return nil, err
	}

	id, err := s.password.SignUp(ctx, email, password)
	if err != nil {
		s.logger.Warn("sign up failed", "email", email, "error", err)
		return nil, err
	}
	s.logger.Info("account created", "email", id.Email)

	updated, err := s.password.UpdateProfile(ctx, id.IDToken, p)
	if err != nil {
		// The account exists either way; keep it signed in without the profile.
		s.logger.Warn("set profile after sign up failed", "email", id.Email, "error", err)
		signed, serr := s.signedIn(ctx, id)
		if serr != nil {
			return nil, serr
		}
		return signed, fmt.Errorf("account created but profile not saved: %w", err)
	}
	return s.signedIn(ctx, merge(id, updated))
}

// UpdateProfile changes the display name and photo of the signed-in password
// account and notifies subscribers of the new identity.
func (s *Service) UpdateProfile(ctx context.Context, p Profile) (*entity.Identity, error) {
	current := s.Current()
	if current == nil {
		return nil, ErrSignedOut
	}
	if current.Provider != entity.ProviderPassword {
		return nil, fmt.Errorf("%w: %s accounts are edited with their provider", ErrProviderProfile, current.Provider)
	}
	if s.password == nil {
		return nil, ErrNotConfigured
	}
	p, err := p.Validate()
	if err != nil {
		return nil, err
	}

	updated, err := s.password.UpdateProfile(ctx, current.IDToken, p)
	if err != nil {
		s.logger.Warn("profile update failed", "email", current.Email, "error", err)
		return nil, err
	}
	s.logger.Info("profile updated", "email", current.Email)
	return s.signedIn(ctx, merge(*current, updated))
}

// merge applies a profile update reply to id. The reply may omit the email
// and only carries a token when it rotated.
func merge(id, updated entity.Identity) entity.Identity {
	id.DisplayName = updated.DisplayName
	id.PhotoURL = updated.PhotoURL
	if updated.IDToken != "" {
		id.IDToken = updated.IDToken
	}
	return id
}

// GoogleAuthURL returns the consent page URL for the code flow.
func (s *Service) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", ErrNotConfigured
	}
	return s.google.AuthCodeURL(state), nil
}

func (s *Service) SignInWithGoogle(ctx context.Context, code string) (*entity.Identity, error) {
	if s.google == nil {
		return nil, ErrNotConfigured
	}
	id, err := s.google.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("google sign in failed", "error", err)
		return nil, err
	}
	return s.signedIn(ctx, id)
}

// SignInWithIDToken accepts a Google ID token obtained elsewhere.
func (s *Service) SignInWithIDToken(ctx context.Context, raw string) (*entity.Identity, error) {
	if s.google == nil {
		return nil, ErrNotConfigured
	}
	id, err := s.google.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return s.signedIn(ctx, id)
}

// SignOut forgets the persisted session and notifies subscribers.
func (s *Service) SignOut(ctx context.Context) error {
	err := s.sessions.Delete(ctx)
	s.set(nil)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	s.logger.Info("signed out")
	return nil
}

func (s *Service) signedIn(ctx context.Context, id entity.Identity) (*entity.Identity, error) {
	if id.Email == "" {
		return nil, ErrNoEmail
	}

	expires := s.now().Add(time.Hour)
	if c, err := ParseUnverified(id.IDToken); err == nil && !c.Expiry().IsZero() {
		if c.Expired(s.now()) {
			return nil, ErrTokenExpired
		}
		expires = c.Expiry()
	}

	err := s.sessions.Save(ctx, entity.StoredSession{
		Email:       id.Email,
		DisplayName: id.DisplayName,
		PhotoURL:    id.PhotoURL,
		Provider:    id.Provider,
		IDToken:     id.IDToken,
		ExpiresAt:   expires,
		CreatedAt:   s.now(),
	})
	if err != nil {
		// The account is signed in for this run even if it cannot be remembered.
		s.logger.Warn("persist session failed", "email", id.Email, "error", err)
	}

	s.logger.Info("signed in", "email", id.Email, "provider", id.Provider)
	s.set(&id)
	return &id, nil
}

func (s *Service) set(id *entity.Identity) {
	s.mu.Lock()
	if s.resolved && s.current.Same(id) && (id == nil || *s.current == *id) {
		s.mu.Unlock()
		return
	}
	s.resolved = true
	s.current = id
	subs := make([]func(*entity.Identity), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(id)
	}
}
