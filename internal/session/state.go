package session

import "artify/internal/entity"

type Phase int

const (
	// PhaseResolving is the state before the identity provider has reported
	// anything. It is not the same as anonymous.
	PhaseResolving Phase = iota
	PhaseAuthenticated
	PhaseAnonymous
)

func (p Phase) String() string {
	switch p {
	case PhaseResolving:
		return "resolving"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of who is using the app.
type State struct {
	Phase    Phase
	Identity *entity.Identity
}

func Resolving() State { return State{Phase: PhaseResolving} }

func Anonymous() State { return State{Phase: PhaseAnonymous} }

func Authenticated(identity entity.Identity) State {
	return State{Phase: PhaseAuthenticated, Identity: &identity}
}

func (s State) Resolved() bool { return s.Phase != PhaseResolving }

func (s State) Authenticated() bool {
	return s.Phase == PhaseAuthenticated && s.Identity != nil
}

// Email returns the signed-in account's email, or "" when not authenticated.
func (s State) Email() string {
	if !s.Authenticated() {
		return ""
	}
	return s.Identity.Email
}
