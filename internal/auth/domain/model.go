package domain

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrMissingCredential = errors.New("missing credential")
)

// State is where a client session is in the authentication flow.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

// Identity is the identity provider's record of an account.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

// Credentials are the tokens issued for a signed-in account.
type Credentials struct {
	Identity     Identity
	IDToken      string
	RefreshToken string
	ExpiresIn    int
}

// ProviderError is a rejection reported by the identity provider. Message is the provider's
// own text.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string { return e.Message }

// Session is one client's authentication state machine.
//
//	unauthenticated -> authenticating -> authenticated -> unauthenticated
//	authenticating -> unauthenticated (failure)
type Session struct {
	mu    sync.Mutex
	state State
	user  *Identity
}

func NewSession() *Session {
	return &Session{state: StateUnauthenticated}
}

// Resume starts a session that is already authenticated as id, such as one carried by a
// verified ID token.
func Resume(id Identity) *Session {
	return &Session{state: StateAuthenticated, user: &id}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the signed-in identity, nil unless authenticated.
func (s *Session) User() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Begin moves unauthenticated to authenticating.
func (s *Session) Begin() error {
	return s.transition(StateUnauthenticated, StateAuthenticating, nil)
}

// Complete moves authenticating to authenticated as id.
func (s *Session) Complete(id Identity) error {
	return s.transition(StateAuthenticating, StateAuthenticated, &id)
}

// Fail moves authenticating back to unauthenticated.
func (s *Session) Fail() error {
	return s.transition(StateAuthenticating, StateUnauthenticated, nil)
}

// End moves authenticated to unauthenticated.
func (s *Session) End() error {
	return s.transition(StateAuthenticated, StateUnauthenticated, nil)
}

// Refresh replaces the identity of an authenticated session.
func (s *Session) Refresh(id Identity) error {
	return s.transition(StateAuthenticated, StateAuthenticated, &id)
}

func (s *Session) transition(from, to State, user *Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, s.state, to)
	}
	s.state = to
	s.user = user
	return nil
}
