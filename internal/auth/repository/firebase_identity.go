package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/go-resty/resty/v2"

	"github.com/alightgram/alightgram-backend/internal/auth/domain"
)

// AdminAuth is the part of the Firebase Admin auth client the provider uses.
type AdminAuth interface {
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseIdentityProvider signs users in through the Identity Toolkit REST API and manages
// accounts through the Admin SDK.
type FirebaseIdentityProvider struct {
	admin  AdminAuth
	client *resty.Client
	apiKey string
}

func NewFirebaseIdentityProvider(admin AdminAuth, identityToolkitURL, apiKey string) *FirebaseIdentityProvider {
	return &FirebaseIdentityProvider{
		admin: admin,
		client: resty.New().
			SetBaseURL(identityToolkitURL).
			SetTimeout(15 * time.Second).
			SetRetryCount(0),
		apiKey: apiKey,
	}
}

type toolkitResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type toolkitError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *FirebaseIdentityProvider) SignInWithPassword(ctx context.Context, email, password string) (*domain.Credentials, error) {
	return p.call(ctx, "/accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
}

func (p *FirebaseIdentityProvider) SignInWithGoogle(ctx context.Context, googleIDToken string) (*domain.Credentials, error) {
	postBody := url.Values{}
	postBody.Set("id_token", googleIDToken)
	postBody.Set("providerId", "google.com")
	return p.call(ctx, "/accounts:signInWithIdp", map[string]any{
		"postBody":            postBody.Encode(),
		"requestUri":          "http://localhost",
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	})
}

func (p *FirebaseIdentityProvider) SignUp(ctx context.Context, email, password string) (*domain.Credentials, error) {
	return p.call(ctx, "/accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
}

func (p *FirebaseIdentityProvider) call(ctx context.Context, path string, body map[string]any) (*domain.Credentials, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("identity toolkit request failed: %w", err)
	}

	if !resp.IsSuccess() {
		var e toolkitError
		if json.Unmarshal(resp.Body(), &e) == nil && e.Error.Message != "" {
			return nil, &domain.ProviderError{StatusCode: resp.StatusCode(), Message: e.Error.Message}
		}
		return nil, &domain.ProviderError{StatusCode: resp.StatusCode(), Message: resp.Status()}
	}

	var out toolkitResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode identity toolkit response: %w", err)
	}
	if out.LocalID == "" {
		return nil, fmt.Errorf("identity toolkit response has no localId")
	}
	expires, _ := strconv.Atoi(out.ExpiresIn)
	return &domain.Credentials{
		Identity: domain.Identity{
			UID:         out.LocalID,
			Email:       out.Email,
			DisplayName: out.DisplayName,
			PhotoURL:    out.PhotoURL,
		},
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    expires,
	}, nil
}

func (p *FirebaseIdentityProvider) GetIdentity(ctx context.Context, uid string) (*domain.Identity, error) {
	rec, err := p.admin.GetUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}
	return identityFromRecord(rec), nil
}

func (p *FirebaseIdentityProvider) UpdateIdentity(ctx context.Context, uid, displayName, photoURL string) (*domain.Identity, error) {
	update := (&auth.UserToUpdate{}).DisplayName(displayName).PhotoURL(photoURL)
	rec, err := p.admin.UpdateUser(ctx, uid, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update identity: %w", err)
	}
	return identityFromRecord(rec), nil
}

func (p *FirebaseIdentityProvider) RevokeSessions(ctx context.Context, uid string) error {
	if err := p.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

func identityFromRecord(rec *auth.UserRecord) *domain.Identity {
	if rec == nil || rec.UserInfo == nil {
		return &domain.Identity{}
	}
	return &domain.Identity{
		UID:         rec.UID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		PhotoURL:    rec.PhotoURL,
	}
}
