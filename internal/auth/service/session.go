package service

import (
	"context"

	"github.com/alightgram/alightgram-backend/internal/auth/domain"
	"github.com/alightgram/alightgram-backend/internal/media"
)

// Session runs SessionService operations through one client's state machine.
type Session struct {
	svc     *SessionService
	machine *domain.Session
}

func (s *SessionService) NewSession() *Session {
	return &Session{svc: s, machine: domain.NewSession()}
}

// ResumeSession starts a session already signed in as id.
func (s *SessionService) ResumeSession(id domain.Identity) *Session {
	return &Session{svc: s, machine: domain.Resume(id)}
}

func (s *Session) State() domain.State { return s.machine.State() }

// User returns the signed-in identity, nil unless authenticated.
func (s *Session) User() *domain.Identity { return s.machine.User() }

func (s *Session) SignInWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	return s.authenticate(func() (*AuthResult, error) {
		return s.svc.SignInWithPassword(ctx, email, password)
	})
}

func (s *Session) SignInWithGoogle(ctx context.Context, idToken, code string) (*AuthResult, error) {
	return s.authenticate(func() (*AuthResult, error) {
		return s.svc.SignInWithGoogle(ctx, idToken, code)
	})
}

func (s *Session) SignUp(ctx context.Context, email, password, displayName string, avatar *media.File) (*AuthResult, error) {
	return s.authenticate(func() (*AuthResult, error) {
		return s.svc.SignUp(ctx, email, password, displayName, avatar)
	})
}

// SignOut revokes the user's refresh tokens and ends the session. The session ends even if
// revocation fails.
func (s *Session) SignOut(ctx context.Context) error {
	u := s.machine.User()
	if err := s.machine.End(); err != nil {
		return err
	}
	return s.svc.SignOut(ctx, u.UID)
}

// UpdateProfile edits the signed-in user's profile and refreshes the session identity.
func (s *Session) UpdateProfile(ctx context.Context, displayName string, avatar *media.File) (*AuthResult, error) {
	u := s.machine.User()
	if u == nil {
		return nil, domain.ErrInvalidTransition
	}
	p, err := s.svc.UpdateProfile(ctx, u.UID, displayName, avatar)
	if err != nil {
		return nil, err
	}
	u.DisplayName = p.DisplayName
	u.PhotoURL = p.PhotoURL
	if err := s.machine.Refresh(*u); err != nil {
		return nil, err
	}
	return &AuthResult{Profile: *p, ProfileStored: true}, nil
}

func (s *Session) authenticate(do func() (*AuthResult, error)) (*AuthResult, error) {
	if err := s.machine.Begin(); err != nil {
		return nil, err
	}
	res, err := do()
	if err != nil {
		_ = s.machine.Fail()
		return nil, err
	}
	if err := s.machine.Complete(domain.Identity{
		UID:         res.Profile.UID,
		Email:       res.Profile.Email,
		DisplayName: res.Profile.DisplayName,
		PhotoURL:    res.Profile.PhotoURL,
	}); err != nil {
		return nil, err
	}
	return res, nil
}
