// Package access gates owner-only views on the session state.
package access

import (
	"net/url"
	"strings"
	"sync"

	"artify/internal/session"
)

type Kind int

const (
	// Wait means the session is still resolving: show a neutral placeholder,
	// neither the protected content nor a redirect.
	Wait Kind = iota
	Admit
	Redirect
)

func (k Kind) String() string {
	switch k {
	case Wait:
		return "wait"
	case Admit:
		return "admit"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

type Decision struct {
	Kind       Kind
	Origin     string
	RedirectTo string
}

const DefaultSignInPath = "/login"

// Project maps a session state to a decision for a view mounted at origin.
func Project(state session.State, origin, signInPath string) Decision {
	switch {
	case !state.Resolved():
		return Decision{Kind: Wait, Origin: origin}
	case state.Authenticated():
		return Decision{Kind: Admit, Origin: origin}
	default:
		return Decision{Kind: Redirect, Origin: origin, RedirectTo: signInURL(signInPath, origin)}
	}
}

func signInURL(signInPath, origin string) string {
	if origin == "" {
		return signInPath
	}
	sep := "?"
	if strings.Contains(signInPath, "?") {
		sep = "&"
	}
	return signInPath + sep + "redirect=" + url.QueryEscape(origin)
}

// SessionSource is the part of session.Store the guard reads.
type SessionSource interface {
	State() session.State
	Subscribe(fn func(session.State)) func()
}

type Guard struct {
	signInPath string

	mu         sync.Mutex
	returnPath string
}

func NewGuard(signInPath string) *Guard {
	if signInPath == "" {
		signInPath = DefaultSignInPath
	}
	return &Guard{signInPath: signInPath}
}

// Evaluate projects state and remembers the origin of a redirect so the user
// can be sent back after signing in.
func (g *Guard) Evaluate(state session.State, origin string) Decision {
	d := Project(state, origin, g.signInPath)
	if d.Kind == Redirect && origin != "" {
		g.mu.Lock()
		g.returnPath = origin
		g.mu.Unlock()
	}
	return d
}

// ConsumeReturn hands out the recorded destination once.
func (g *Guard) ConsumeReturn() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.returnPath
	g.returnPath = ""
	return p, p != ""
}

// Mount renders the current decision immediately and again after every
// session change, until the returned unmount func is called.
func (g *Guard) Mount(src SessionSource, origin string, render func(Decision)) (unmount func()) {
	var (
		mu      sync.Mutex
		mounted = true
	)
	emit := func(state session.State) {
		mu.Lock()
		defer mu.Unlock()
		if !mounted {
			return
		}
		render(g.Evaluate(state, origin))
	}

	unsubscribe := src.Subscribe(emit)
	emit(src.State())

	return func() {
		mu.Lock()
		mounted = false
		mu.Unlock()
		unsubscribe()
	}
}
