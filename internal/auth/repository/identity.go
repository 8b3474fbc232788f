package repository

import (
	"context"

	"github.com/alightgram/alightgram-backend/internal/auth/domain"
)

// IdentityProvider is the account authority: credential checks, account creation and the
// identity record's profile fields.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Credentials, error)
	// SignInWithGoogle signs in with a Google ID token, creating the account on first use.
	SignInWithGoogle(ctx context.Context, googleIDToken string) (*domain.Credentials, error)
	SignUp(ctx context.Context, email, password string) (*domain.Credentials, error)
	GetIdentity(ctx context.Context, uid string) (*domain.Identity, error)
	UpdateIdentity(ctx context.Context, uid, displayName, photoURL string) (*domain.Identity, error)
	// RevokeSessions invalidates every refresh token issued to uid.
	RevokeSessions(ctx context.Context, uid string) error
}

// CodeExchanger trades a federated authorization code for an ID token.
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
}
