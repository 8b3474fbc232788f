package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/alightgram/alightgram-backend/internal/auth/domain"
	"github.com/alightgram/alightgram-backend/internal/auth/repository"
	"github.com/alightgram/alightgram-backend/internal/logging"
	"github.com/alightgram/alightgram-backend/internal/media"
	usersdomain "github.com/alightgram/alightgram-backend/internal/users/domain"
	usersrepo "github.com/alightgram/alightgram-backend/internal/users/repository"
)

const defaultDisplayName = "User"

// AuthResult is a signed-in user with their tokens and profile.
type AuthResult struct {
	Profile      usersdomain.UserProfile `json:"profile"`
	IDToken      string                  `json:"idToken"`
	RefreshToken string                  `json:"refreshToken,omitempty"`
	ExpiresIn    int                     `json:"expiresIn,omitempty"`
	// ProfileStored is false when sign-up created the account but failed to write the
	// profile record.
	ProfileStored bool `json:"profileStored"`
}

// SessionService wraps the identity provider and keeps profile records in step with it.
type SessionService struct {
	idp      repository.IdentityProvider
	codes    repository.CodeExchanger
	profiles usersrepo.Repository
	uploader media.Uploader
}

// NewSessionService creates the service. codes may be nil when federated sign-in only accepts
// ID tokens.
func NewSessionService(idp repository.IdentityProvider, codes repository.CodeExchanger, profiles usersrepo.Repository, uploader media.Uploader) *SessionService {
	return &SessionService{idp: idp, codes: codes, profiles: profiles, uploader: uploader}
}

func (s *SessionService) SignInWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	creds, err := s.idp.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	profile, err := s.CurrentProfile(ctx, creds.Identity.UID)
	if err != nil {
		return nil, err
	}
	return newResult(creds, *profile, true), nil
}

// SignInWithGoogle signs in with a Google ID token, or an authorization code when idToken is
// empty, and merges the identity's fields into the profile record.
func (s *SessionService) SignInWithGoogle(ctx context.Context, idToken, code string) (*AuthResult, error) {
	if idToken == "" {
		if code == "" || s.codes == nil {
			return nil, domain.ErrMissingCredential
		}
		var err error
		if idToken, err = s.codes.ExchangeCode(ctx, code); err != nil {
			return nil, err
		}
	}

	creds, err := s.idp.SignInWithGoogle(ctx, idToken)
	if err != nil {
		return nil, err
	}
	profile := usersdomain.UserProfile{
		UID:         creds.Identity.UID,
		DisplayName: creds.Identity.DisplayName,
		Email:       creds.Identity.Email,
		PhotoURL:    creds.Identity.PhotoURL,
	}
	if err := s.profiles.Merge(ctx, &profile); err != nil {
		return nil, fmt.Errorf("store profile: %w", err)
	}
	return newResult(creds, profile, true), nil
}

// SignUp creates the account, hosts the avatar when given, sets the identity's display name
// and photo, then writes the profile record. The record write is best-effort: on failure the
// account stays signed in and the result reports ProfileStored false.
func (s *SessionService) SignUp(ctx context.Context, email, password, displayName string, avatar *media.File) (*AuthResult, error) {
	creds, err := s.idp.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	uid := creds.Identity.UID
	logger := logging.FromContext(ctx).With(zap.String("uid", uid))

	photoURL := ""
	if avatar != nil {
		if photoURL, err = s.uploader.Upload(ctx, *avatar); err != nil {
			return nil, err
		}
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = emailLocalPart(email)
	}
	if name == "" {
		name = defaultDisplayName
	}

	if _, err := s.idp.UpdateIdentity(ctx, uid, name, photoURL); err != nil {
		return nil, err
	}

	profile := usersdomain.UserProfile{
		UID:         uid,
		DisplayName: name,
		Email:       creds.Identity.Email,
		PhotoURL:    photoURL,
	}
	if profile.Email == "" {
		profile.Email = email
	}
	stored := true
	if err := s.profiles.Create(ctx, &profile); err != nil {
		logger.Warn("account created without profile record", zap.Error(err))
		stored = false
	}

	logger.Info("account created", zap.Bool("profile_stored", stored))
	return newResult(creds, profile, stored), nil
}

func (s *SessionService) SignOut(ctx context.Context, uid string) error {
	return s.idp.RevokeSessions(ctx, uid)
}

// UpdateProfile changes the display name and, when avatar is given, the photo, on both the
// identity record and the profile record.
func (s *SessionService) UpdateProfile(ctx context.Context, uid, displayName string, avatar *media.File) (*usersdomain.UserProfile, error) {
	current, err := s.CurrentProfile(ctx, uid)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = current.DisplayName
	}
	photoURL := current.PhotoURL
	if avatar != nil {
		if photoURL, err = s.uploader.Upload(ctx, *avatar); err != nil {
			return nil, err
		}
	}

	if _, err := s.idp.UpdateIdentity(ctx, uid, name, photoURL); err != nil {
		return nil, err
	}
	if err := s.profiles.Update(ctx, uid, usersdomain.ProfileUpdate{DisplayName: name, PhotoURL: photoURL}); err != nil {
		return nil, fmt.Errorf("store profile: %w", err)
	}

	current.DisplayName = name
	current.PhotoURL = photoURL
	return current, nil
}

// CurrentProfile returns the stored profile, or one built from the identity record when none
// is stored.
func (s *SessionService) CurrentProfile(ctx context.Context, uid string) (*usersdomain.UserProfile, error) {
	p, err := s.profiles.Get(ctx, uid)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, usersdomain.ErrUserNotFound) {
		return nil, err
	}

	id, err := s.idp.GetIdentity(ctx, uid)
	if err != nil {
		return nil, err
	}
	name := id.DisplayName
	if name == "" {
		name = defaultDisplayName
	}
	return &usersdomain.UserProfile{
		UID:         uid,
		DisplayName: name,
		Email:       id.Email,
		PhotoURL:    id.PhotoURL,
	}, nil
}

func newResult(creds *domain.Credentials, profile usersdomain.UserProfile, stored bool) *AuthResult {
	return &AuthResult{
		Profile:       profile,
		IDToken:       creds.IDToken,
		RefreshToken:  creds.RefreshToken,
		ExpiresIn:     creds.ExpiresIn,
		ProfileStored: stored,
	}
}

func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return strings.TrimSpace(local)
}
