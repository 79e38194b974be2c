package gallery

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
	"artify/internal/session"
)

//go:generate mockgen -source=gallery.go -destination=mocks/mock_api.go -package=mocks API

var (
	ErrUnauthenticated = errors.New("gallery: no signed-in account")
	ErrBusy            = errors.New("gallery: a submission is already in progress")
	ErrNotOwner        = errors.New("gallery: artwork is not in your gallery")
	ErrSuperseded      = errors.New("gallery: superseded by a newer request")
)

const kindDelete = "artwork.delete"

type API interface {
	ListOwned(ctx context.Context, email string) ([]entity.Artwork, error)
	CreateArtwork(ctx context.Context, a entity.Artwork) (string, error)
	UpdateArtwork(ctx context.Context, id string, patch artifyapi.ArtworkPatch) error
	DeleteArtwork(ctx context.Context, id string) error
}

// SessionSource is where the controller learns who the owner is.
type SessionSource interface {
	State() session.State
}

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

type FormState int

const (
	FormIdle FormState = iota
	FormSubmitting
)

type Snapshot struct {
	Status   Status
	Email    string
	Artworks []entity.Artwork
	Err      error

	Form FormState
	// FormErr is the outcome of the last submission, nil on success.
	FormErr error
}

// Artwork returns the loaded artwork with the given ID.
func (s Snapshot) Artwork(id string) (entity.Artwork, bool) {
	i := slices.IndexFunc(s.Artworks, func(a entity.Artwork) bool { return a.ID == id })
	if i < 0 {
		return entity.Artwork{}, false
	}
	return s.Artworks[i], true
}

// Controller manages the signed-in owner's own artworks. After every
// successful mutation the list is fetched again instead of patched locally.
type Controller struct {
	api      API
	sess     SessionSource
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

func NewController(api API, sess SessionSource, notifier notify.Notifier, logger *slog.Logger) *Controller {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		api:      api,
		sess:     sess,
		gate:     confirm.NewGate(),
		notifier: notifier,
		logger:   logger.With("component", "gallery"),
		now:      time.Now,
		subs:     make(map[int]func(Snapshot)),
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

func (c *Controller) owner() (*entity.Identity, error) {
	st := c.sess.State()
	if !st.Authenticated() || st.Identity.Email == "" {
		return nil, ErrUnauthenticated
	}
	return st.Identity, nil
}

// Load fetches the owner's artworks, private ones included.
func (c *Controller) Load(ctx context.Context) (Snapshot, error) {
	id, err := c.owner()
	if err != nil {
		return Snapshot{}, err
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	if c.snap.Email != id.Email {
		c.snap.Artworks = nil
	}
	c.snap.Status = StatusLoading
	c.snap.Email = id.Email
	c.snap.Err = nil
	loading := c.snap
	c.mu.Unlock()
	c.publish(loading)

	arts, err := c.api.ListOwned(ctx, id.Email)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return Snapshot{}, ErrSuperseded
	}
	if err != nil {
		c.snap.Status = StatusFailed
		c.snap.Err = err
		c.snap.Artworks = nil
		failed := c.snap
		c.mu.Unlock()

		c.logger.Warn("gallery load failed", "email", id.Email, "error", err)
		c.notifier.Notify(notify.Error("Could not load your artworks", err))
		c.publish(failed)
		return failed, err
	}
	c.snap.Status = StatusReady
	c.snap.Artworks = slices.Clone(arts)
	ready := c.snap
	c.mu.Unlock()

	c.publish(ready)
	return ready, nil
}

// Reload retries the last Load.
func (c *Controller) Reload(ctx context.Context) (Snapshot, error) {
	return c.Load(ctx)
}

// Create submits a new artwork owned by the signed-in account and returns its ID.
func (c *Controller) Create(ctx context.Context, f Fields) (string, error) {
	owner, err := c.owner()
	if err != nil {
		return "", err
	}
	if err := c.beginSubmit(); err != nil {
		return "", err
	}

	id, err := c.create(ctx, owner, f)
	c.endSubmit(err)
	if err != nil {
		return "", err
	}

	c.notifier.Notify(notify.Success("Artwork submitted"))
	_, _ = c.Load(ctx)
	return id, nil
}

func (c *Controller) create(ctx context.Context, owner *entity.Identity, f Fields) (string, error) {
	patch, err := Validate(f)
	if err != nil {
		return "", err
	}

	a := entity.Artwork{
		OwnerName:     owner.DisplayName,
		OwnerImageURL: owner.PhotoURL,
		OwnerEmail:    owner.Email,
		CreatedAt:     c.now().UTC(),
	}
	patch.Apply(&a)

	id, err := c.api.CreateArtwork(ctx, a)
	if err != nil {
		c.logger.Warn("create artwork failed", "title", a.Title, "error", err)
		c.notifier.Notify(notify.Error("Could not submit artwork", err))
		return "", fmt.Errorf("create artwork: %w", err)
	}
	c.logger.Info("artwork created", "artwork_id", id)
	return id, nil
}

// Update replaces the editable fields of one of the owner's artworks.
func (c *Controller) Update(ctx context.Context, id string, f Fields) error {
	owner, err := c.owner()
	if err != nil {
		return err
	}
	if err := c.beginSubmit(); err != nil {
		return err
	}

	err = c.update(ctx, owner, id, f)
	c.endSubmit(err)
	if err != nil {
		return err
	}

	c.notifier.Notify(notify.Success("Artwork updated"))
	_, _ = c.Load(ctx)
	return nil
}

func (c *Controller) update(ctx context.Context, owner *entity.Identity, id string, f Fields) error {
	if !c.owns(owner.Email, id) {
		return fmt.Errorf("%w: %s", ErrNotOwner, id)
	}
	patch, err := Validate(f)
	if err != nil {
		return err
	}
	if err := c.api.UpdateArtwork(ctx, id, patch); err != nil {
		c.logger.Warn("update artwork failed", "artwork_id", id, "error", err)
		c.notifier.Notify(notify.Error("Could not update artwork", err))
		return fmt.Errorf("update artwork %s: %w", id, err)
	}
	c.logger.Info("artwork updated", "artwork_id", id)
	return nil
}

// RequestDelete starts the deletion of one of the owner's artworks.
func (c *Controller) RequestDelete(id string) (confirm.Token, error) {
	owner, err := c.owner()
	if err != nil {
		return "", err
	}
	if !c.owns(owner.Email, id) {
		return "", fmt.Errorf("%w: %s", ErrNotOwner, id)
	}
	return c.gate.Request(kindDelete, id), nil
}

// PendingDelete returns the artwork a delete token stands for, without
// consuming the token.
func (c *Controller) PendingDelete(tok confirm.Token) (entity.Artwork, bool) {
	p, ok := c.gate.Peek(tok)
	if !ok || p.Kind != kindDelete {
		return entity.Artwork{}, false
	}
	if a, ok := c.Snapshot().Artwork(p.Subject); ok {
		return a, true
	}
	return entity.Artwork{ID: p.Subject}, true
}

func (c *Controller) CancelDelete(tok confirm.Token) {
	c.gate.Cancel(tok)
}

// ConfirmDelete deletes the artwork behind tok and fetches the list again.
func (c *Controller) ConfirmDelete(ctx context.Context, tok confirm.Token) error {
	if _, err := c.owner(); err != nil {
		return err
	}
	p, err := c.gate.Take(tok, kindDelete)
	if err != nil {
		return err
	}

	if err := c.api.DeleteArtwork(ctx, p.Subject); err != nil {
		c.logger.Warn("delete artwork failed", "artwork_id", p.Subject, "error", err)
		c.notifier.Notify(notify.Error("Could not delete artwork", err))
		return fmt.Errorf("delete artwork %s: %w", p.Subject, err)
	}
	c.logger.Info("artwork deleted", "artwork_id", p.Subject)
	c.notifier.Notify(notify.Success("Artwork deleted"))
	_, _ = c.Load(ctx)
	return nil
}

// Reset forgets the owner's artworks and pending deletions.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.gen++
	c.snap = Snapshot{}
	c.mu.Unlock()

	c.gate.Clear()
	c.publish(Snapshot{})
}

// Subscribe calls fn with every new snapshot. The returned func removes it.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Controller) owns(email, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap.Email != email {
		return false
	}
	a, ok := c.snap.Artwork(id)
	return ok && a.OwnedBy(email)
}

func (c *Controller) beginSubmit() error {
	c.mu.Lock()
	if c.snap.Form == FormSubmitting {
		c.mu.Unlock()
		return ErrBusy
	}
	c.snap.Form = FormSubmitting
	c.snap.FormErr = nil
	snap := c.snap
	c.mu.Unlock()

	c.publish(snap)
	return nil
}

func (c *Controller) endSubmit(err error) {
	c.mu.Lock()
	c.snap.Form = FormIdle
	c.snap.FormErr = err
	snap := c.snap
	c.mu.Unlock()

	c.publish(snap)
}

func (c *Controller) publish(snap Snapshot) {
	c.mu.Lock()
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
