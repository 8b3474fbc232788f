package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alightgram/alightgram-backend/internal/auth/domain"
	"github.com/alightgram/alightgram-backend/internal/media"
	usersdomain "github.com/alightgram/alightgram-backend/internal/users/domain"
	usersrepo "github.com/alightgram/alightgram-backend/internal/users/repository"
)

type fakeIDP struct {
	identities map[string]*domain.Identity
	passwords  map[string]string
	google     map[string]domain.Identity
	revoked    []string
	nextUID    string
	signUpErr  error
	updates    []domain.Identity
}

func newFakeIDP() *fakeIDP {
	return &fakeIDP{
		identities: map[string]*domain.Identity{},
		passwords:  map[string]string{},
		google:     map[string]domain.Identity{},
		nextUID:    "new-uid",
	}
}

func (f *fakeIDP) creds(id domain.Identity) *domain.Credentials {
	return &domain.Credentials{Identity: id, IDToken: "id-" + id.UID, RefreshToken: "ref-" + id.UID, ExpiresIn: 3600}
}

func (f *fakeIDP) SignInWithPassword(_ context.Context, email, password string) (*domain.Credentials, error) {
	for _, id := range f.identities {
		if id.Email == email && f.passwords[email] == password {
			return f.creds(*id), nil
		}
	}
	return nil, &domain.ProviderError{StatusCode: 400, Message: "INVALID_LOGIN_CREDENTIALS"}
}

func (f *fakeIDP) SignInWithGoogle(_ context.Context, token string) (*domain.Credentials, error) {
	id, ok := f.google[token]
	if !ok {
		return nil, &domain.ProviderError{StatusCode: 400, Message: "INVALID_IDP_RESPONSE"}
	}
	f.identities[id.UID] = &id
	return f.creds(id), nil
}

func (f *fakeIDP) SignUp(_ context.Context, email, password string) (*domain.Credentials, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	id := domain.Identity{UID: f.nextUID, Email: email}
	f.identities[id.UID] = &id
	f.passwords[email] = password
	return f.creds(id), nil
}

func (f *fakeIDP) GetIdentity(_ context.Context, uid string) (*domain.Identity, error) {
	id, ok := f.identities[uid]
	if !ok {
		return nil, errors.New("USER_NOT_FOUND")
	}
	out := *id
	return &out, nil
}

func (f *fakeIDP) UpdateIdentity(_ context.Context, uid, displayName, photoURL string) (*domain.Identity, error) {
	id, ok := f.identities[uid]
	if !ok {
		return nil, errors.New("USER_NOT_FOUND")
	}
	id.DisplayName = displayName
	id.PhotoURL = photoURL
	f.updates = append(f.updates, *id)
	out := *id
	return &out, nil
}

func (f *fakeIDP) RevokeSessions(_ context.Context, uid string) error {
	f.revoked = append(f.revoked, uid)
	return nil
}

type fakeExchanger map[string]string

func (f fakeExchanger) ExchangeCode(_ context.Context, code string) (string, error) {
	if tok, ok := f[code]; ok {
		return tok, nil
	}
	return "", errors.New("invalid_grant")
}

type stubUploader struct {
	err   error
	calls int
}

func (u *stubUploader) Upload(_ context.Context, f media.File) (string, error) {
	u.calls++
	if u.err != nil {
		return "", u.err
	}
	return "https://cdn.example.com/" + f.Name, nil
}

// brokenProfiles fails every write.
type brokenProfiles struct {
	*usersrepo.MemoryRepository
}

func (brokenProfiles) Create(context.Context, *usersdomain.UserProfile) error {
	return errors.New("permission denied")
}

type fixture struct {
	idp      *fakeIDP
	profiles *usersrepo.MemoryRepository
	uploader *stubUploader
	svc      *SessionService
}

func newFixture() *fixture {
	f := &fixture{
		idp:      newFakeIDP(),
		profiles: usersrepo.NewMemoryRepository(),
		uploader: &stubUploader{},
	}
	f.svc = NewSessionService(f.idp, fakeExchanger{"code-1": "google-token"}, f.profiles, f.uploader)
	return f
}

func avatar() *media.File {
	return &media.File{Name: "me.png", Reader: strings.NewReader("png")}
}

func TestSignUp_DefaultsAndProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.SignUp(ctx, "a@b.com", "secret", "", nil)
	require.NoError(t, err)
	assert.True(t, res.ProfileStored)
	assert.Equal(t, "id-new-uid", res.IDToken)
	assert.Equal(t, usersdomain.UserProfile{UID: "new-uid", DisplayName: "a", Email: "a@b.com", PhotoURL: ""}, res.Profile)

	stored, err := f.profiles.Get(ctx, "new-uid")
	require.NoError(t, err)
	assert.Equal(t, "", stored.PhotoURL)
	assert.Equal(t, "a", stored.DisplayName)

	require.Len(t, f.idp.updates, 1)
	assert.Equal(t, "a", f.idp.updates[0].DisplayName)
	assert.Zero(t, f.uploader.calls)
}

func TestSignUp_FallsBackToUser(t *testing.T) {
	f := newFixture()
	res, err := f.svc.SignUp(context.Background(), "@b.com", "secret", "  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "User", res.Profile.DisplayName)
}

func TestSignUp_WithAvatar(t *testing.T) {
	f := newFixture()
	res, err := f.svc.SignUp(context.Background(), "a@b.com", "secret", "Ana", avatar())
	require.NoError(t, err)
	assert.Equal(t, "Ana", res.Profile.DisplayName)
	assert.Equal(t, "https://cdn.example.com/me.png", res.Profile.PhotoURL)
	assert.Equal(t, "https://cdn.example.com/me.png", f.idp.identities["new-uid"].PhotoURL)
}

func TestSignUp_AvatarFailureAborts(t *testing.T) {
	f := newFixture()
	f.uploader.err = &media.UploadError{StatusCode: 400, Message: "Upload failed"}

	_, err := f.svc.SignUp(context.Background(), "a@b.com", "secret", "Ana", avatar())
	require.Error(t, err)
	assert.Empty(t, f.idp.updates)
	_, err = f.profiles.Get(context.Background(), "new-uid")
	assert.ErrorIs(t, err, usersdomain.ErrUserNotFound)
}

func TestSignUp_ProfileWriteIsBestEffort(t *testing.T) {
	f := newFixture()
	f.svc.profiles = brokenProfiles{f.profiles}

	res, err := f.svc.SignUp(context.Background(), "a@b.com", "secret", "Ana", nil)
	require.NoError(t, err)
	assert.False(t, res.ProfileStored)
	assert.Equal(t, "Ana", res.Profile.DisplayName)
}

func TestSignUp_ProviderErrorVerbatim(t *testing.T) {
	f := newFixture()
	f.idp.signUpErr = &domain.ProviderError{StatusCode: 400, Message: "EMAIL_EXISTS"}

	_, err := f.svc.SignUp(context.Background(), "a@b.com", "secret", "", nil)
	assert.EqualError(t, err, "EMAIL_EXISTS")
}

func TestSignInWithPassword_UsesStoredProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, "a@b.com", "secret", "Ana", nil)
	require.NoError(t, err)

	res, err := f.svc.SignInWithPassword(ctx, "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Ana", res.Profile.DisplayName)

	_, err = f.svc.SignInWithPassword(ctx, "a@b.com", "nope")
	assert.EqualError(t, err, "INVALID_LOGIN_CREDENTIALS")
}

func TestSignInWithGoogle_MergesProfile(t *testing.T) {
	f := newFixture()
	f.idp.google["google-token"] = domain.Identity{UID: "g1", Email: "g@x.com", DisplayName: "Gee", PhotoURL: "https://img.example.com/g.png"}
	ctx := context.Background()

	res, err := f.svc.SignInWithGoogle(ctx, "google-token", "")
	require.NoError(t, err)
	assert.Equal(t, "g1", res.Profile.UID)

	stored, err := f.profiles.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, usersdomain.UserProfile{UID: "g1", DisplayName: "Gee", Email: "g@x.com", PhotoURL: "https://img.example.com/g.png"}, *stored)

	res, err = f.svc.SignInWithGoogle(ctx, "", "code-1")
	require.NoError(t, err)
	assert.Equal(t, "g1", res.Profile.UID)

	_, err = f.svc.SignInWithGoogle(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestCurrentProfile_FallsBackToIdentity(t *testing.T) {
	f := newFixture()
	f.idp.identities["u9"] = &domain.Identity{UID: "u9"}

	p, err := f.svc.CurrentProfile(context.Background(), "u9")
	require.NoError(t, err)
	assert.Equal(t, usersdomain.UserProfile{UID: "u9", DisplayName: "User", Email: "", PhotoURL: ""}, *p)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, "a@b.com", "secret", "Ana", nil)
	require.NoError(t, err)

	p, err := f.svc.UpdateProfile(ctx, "new-uid", "Ana B", avatar())
	require.NoError(t, err)
	assert.Equal(t, "Ana B", p.DisplayName)
	assert.Equal(t, "https://cdn.example.com/me.png", p.PhotoURL)

	stored, _ := f.profiles.Get(ctx, "new-uid")
	assert.Equal(t, "Ana B", stored.DisplayName)
	assert.Equal(t, "https://cdn.example.com/me.png", stored.PhotoURL)
	assert.Equal(t, "Ana B", f.idp.identities["new-uid"].DisplayName)

	p, err = f.svc.UpdateProfile(ctx, "new-uid", "Ana C", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/me.png", p.PhotoURL, "photo kept without a new avatar")
}

func TestSession_StateFollowsOutcome(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s := f.svc.NewSession()
	assert.Equal(t, domain.StateUnauthenticated, s.State())

	_, err := s.SignInWithPassword(ctx, "a@b.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, domain.StateUnauthenticated, s.State())

	_, err = s.SignUp(ctx, "a@b.com", "secret", "Ana", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAuthenticated, s.State())
	assert.Equal(t, "new-uid", s.User().UID)

	_, err = s.SignInWithPassword(ctx, "a@b.com", "secret")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	res, err := s.UpdateProfile(ctx, "Ana B", nil)
	require.NoError(t, err)
	assert.Equal(t, "Ana B", res.Profile.DisplayName)
	assert.Equal(t, "Ana B", s.User().DisplayName)

	require.NoError(t, s.SignOut(ctx))
	assert.Equal(t, domain.StateUnauthenticated, s.State())
	assert.Equal(t, []string{"new-uid"}, f.idp.revoked)

	assert.ErrorIs(t, s.SignOut(ctx), domain.ErrInvalidTransition)
}
