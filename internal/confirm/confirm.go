// Package confirm implements the two-step protocol for destructive actions:
// Request hands out a token, and the action runs only when that token is
// taken back. Cancelling discards it with no side effect.
package confirm

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownToken = errors.New("confirm: unknown or already used token")

type Token string

// Pending describes the action a token stands for.
type Pending struct {
	Token     Token
	Kind      string
	Subject   string
	CreatedAt time.Time
}

type Gate struct {
	mu      sync.Mutex
	pending map[Token]Pending
	now     func() time.Time
}

func NewGate() *Gate {
	return &Gate{
		pending: make(map[Token]Pending),
		now:     time.Now,
	}
}

// Request registers an action of the given kind on subject and returns its token.
func (g *Gate) Request(kind, subject string) Token {
	tok := Token(uuid.NewString())
	g.mu.Lock()
	g.pending[tok] = Pending{Token: tok, Kind: kind, Subject: subject, CreatedAt: g.now()}
	g.mu.Unlock()
	return tok
}

// Take consumes tok. It succeeds at most once per token and only for the given kind.
func (g *Gate) Take(tok Token, kind string) (Pending, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pending[tok]
	if !ok || p.Kind != kind {
		return Pending{}, ErrUnknownToken
	}
	delete(g.pending, tok)
	return p, nil
}

// Cancel discards tok. Cancelling an unknown token is a no-op.
func (g *Gate) Cancel(tok Token) {
	g.mu.Lock()
	delete(g.pending, tok)
	g.mu.Unlock()
}

// Peek returns the pending action without consuming it.
func (g *Gate) Peek(tok Token) (Pending, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pending[tok]
	return p, ok
}

// Clear drops every pending token.
func (g *Gate) Clear() {
	g.mu.Lock()
	g.pending = make(map[Token]Pending)
	g.mu.Unlock()
}
