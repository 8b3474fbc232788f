package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alightgram/alightgram-backend/config"
	"github.com/alightgram/alightgram-backend/internal/media"
	"github.com/alightgram/alightgram-backend/internal/projects/domain"
	"github.com/alightgram/alightgram-backend/internal/projects/repository"
)

type projectFixture struct {
	repo     *repository.MemoryRepository
	uploader *fakeUploader
	svc      *ProjectService
}

func newProjectFixture(t *testing.T) *projectFixture {
	t.Helper()
	catalog, err := config.LoadCatalog()
	require.NoError(t, err)

	f := &projectFixture{
		repo:     repository.NewMemoryRepository(),
		uploader: &fakeUploader{},
	}
	profiles := fakeProfiles{
		"u1": {UID: "u1", DisplayName: "Ana", PhotoURL: "https://img.example.com/ana.png"},
		"u2": {UID: "u2", DisplayName: "Bo"},
	}
	f.svc = NewProjectService(f.repo, f.uploader, profiles, catalog)
	f.svc.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return f
}

func projectFile(name string) *media.File {
	return &media.File{Name: name, ContentType: "application/xml", Reader: strings.NewReader("<x/>")}
}

func TestProjectService_CreateDefaults(t *testing.T) {
	f := newProjectFixture(t)
	p, err := f.svc.Create(context.Background(), "u1", UploadRequest{
		Title: "  Velocity edit ",
		File:  projectFile("edit.xml"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Velocity edit", p.Title)
	assert.Equal(t, "Action", p.Genre)
	assert.Equal(t, "4:5", p.AspectRatio)
	assert.Equal(t, domain.VisibilityPublic, p.Visibility)
	assert.Equal(t, "https://cdn.example.com/edit.xml", p.FileURL)
	assert.Equal(t, "edit.xml", p.FileName)
	assert.Empty(t, p.VideoURL)
	assert.Equal(t, "u1", p.OwnerID)
	assert.Equal(t, "Ana", p.OwnerName)
	assert.Equal(t, "https://img.example.com/ana.png", p.OwnerPhoto)
	assert.EqualValues(t, 1_700_000_000_000, p.CreatedAt)
	assert.Zero(t, p.Likes)
	assert.Equal(t, []string{}, p.LikedBy)

	stored, err := f.repo.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Title, stored.Title)
}

func TestProjectService_CreateWithVideo(t *testing.T) {
	f := newProjectFixture(t)
	p, err := f.svc.Create(context.Background(), "u2", UploadRequest{
		Title:       "clip",
		Genre:       "Anime",
		AspectRatio: "9:16",
		Visibility:  domain.VisibilityPrivate,
		File:        projectFile("clip.xml"),
		Video:       &media.File{Name: "clip.mp4", Reader: strings.NewReader("v")},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/clip.mp4", p.VideoURL)
	assert.Equal(t, []string{"clip.xml", "clip.mp4"}, f.uploader.names)
	assert.Equal(t, domain.VisibilityPrivate, p.Visibility)
}

func TestProjectService_CreateRejects(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "", UploadRequest{Title: "x", File: projectFile("a.xml")})
	assert.ErrorIs(t, err, ErrSignInRequired)

	_, err = f.svc.Create(ctx, "u1", UploadRequest{Title: "   ", File: projectFile("a.xml")})
	assert.ErrorIs(t, err, domain.ErrInvalidProject)

	_, err = f.svc.Create(ctx, "u1", UploadRequest{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrNoFile)

	_, err = f.svc.Create(ctx, "u1", UploadRequest{Title: "x", Genre: "Polka", File: projectFile("a.xml")})
	assert.ErrorIs(t, err, domain.ErrInvalidProject)

	_, err = f.svc.Create(ctx, "u1", UploadRequest{Title: "x", AspectRatio: "3:2", File: projectFile("a.xml")})
	assert.ErrorIs(t, err, domain.ErrInvalidProject)

	assert.Empty(t, f.uploader.names, "nothing uploaded for rejected requests")
}

func TestProjectService_CreateUploadFailureStoresNothing(t *testing.T) {
	f := newProjectFixture(t)
	f.uploader.err = &media.UploadError{StatusCode: 400, Message: "Invalid preset"}

	_, err := f.svc.Create(context.Background(), "u1", UploadRequest{Title: "x", File: projectFile("a.xml")})
	var upErr *media.UploadError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, "Invalid preset", upErr.Message)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l, err := f.repo.Listen(ctx, domain.QueryFor(domain.ViewProfile, "u1"))
	require.NoError(t, err)
	defer l.Stop()
	ps, err := l.Next()
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func createOwned(t *testing.T, f *projectFixture, uid string) *domain.Project {
	t.Helper()
	p, err := f.svc.Create(context.Background(), uid, UploadRequest{Title: "orig", Genre: "Meme", File: projectFile("orig.xml")})
	require.NoError(t, err)
	return p
}

func TestProjectService_EditByOwner(t *testing.T) {
	f := newProjectFixture(t)
	p := createOwned(t, f, "u1")

	edited, err := f.svc.Edit(context.Background(), "u1", p.ID, EditRequest{
		Title:       "renamed",
		Description: "desc",
		Genre:       "Music",
		AspectRatio: "1:1",
		Visibility:  domain.VisibilityPrivate,
		XML:         bytes.NewBufferString("<project/>"),
		Video:       &media.File{Name: "new.mp4", Reader: strings.NewReader("v")},
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", edited.Title)

	stored, _ := f.repo.Get(context.Background(), p.ID)
	assert.Equal(t, "renamed", stored.Title)
	assert.Equal(t, "desc", stored.Description)
	assert.Equal(t, "Music", stored.Genre)
	assert.Equal(t, "1:1", stored.AspectRatio)
	assert.Equal(t, domain.VisibilityPrivate, stored.Visibility)
	assert.Equal(t, "<project/>", stored.XMLContent)
	assert.Equal(t, "https://cdn.example.com/new.mp4", stored.VideoURL)
}

func TestProjectService_EditRejects(t *testing.T) {
	f := newProjectFixture(t)
	p := createOwned(t, f, "u1")
	ctx := context.Background()

	_, err := f.svc.Edit(ctx, "u2", p.ID, EditRequest{Title: "hijack"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.Edit(ctx, "u1", p.ID, EditRequest{Title: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidProject)

	_, err = f.svc.Edit(ctx, "u1", "missing", EditRequest{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, _ := f.repo.Get(ctx, p.ID)
	assert.Equal(t, "orig", stored.Title)
}

func TestProjectService_EditKeepsUnsetFields(t *testing.T) {
	f := newProjectFixture(t)
	p := createOwned(t, f, "u1")

	_, err := f.svc.Edit(context.Background(), "u1", p.ID, EditRequest{Title: "t"})
	require.NoError(t, err)

	stored, _ := f.repo.Get(context.Background(), p.ID)
	assert.Equal(t, "Meme", stored.Genre)
	assert.Equal(t, "4:5", stored.AspectRatio)
	assert.Equal(t, domain.VisibilityPublic, stored.Visibility)
}

func TestProjectService_Delete(t *testing.T) {
	f := newProjectFixture(t)
	p := createOwned(t, f, "u1")
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Delete(ctx, "u2", p.ID), domain.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, "u1", p.ID))

	_, err := f.repo.Get(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectService_Download(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	f.repo.Put(domain.Project{ID: "legacy", Title: "My  old\tedit", Visibility: domain.VisibilityPublic, OwnerID: "u1", XMLContent: "<x/>"})
	f.repo.Put(domain.Project{ID: "private", Title: "p", Visibility: domain.VisibilityPrivate, OwnerID: "u1", FileURL: "https://cdn.example.com/p.xml", FileName: "p.xml"})
	f.repo.Put(domain.Project{ID: "empty", Title: "e", Visibility: domain.VisibilityPublic, OwnerID: "u1"})

	d, err := f.svc.Download(ctx, "", "legacy")
	require.NoError(t, err)
	assert.Equal(t, "<x/>", d.Content)
	assert.Equal(t, "My_old_edit.xml", d.FileName)

	_, err = f.svc.Download(ctx, "u2", "private")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	d, err = f.svc.Download(ctx, "u1", "private")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/p.xml", d.URL)
	assert.Equal(t, "p.xml", d.FileName)

	_, err = f.svc.Download(ctx, "u1", "empty")
	assert.ErrorIs(t, err, domain.ErrNoFile)
}

func TestProjectService_EditXMLReplacesDownload(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	p := createOwned(t, f, "u1")

	d, err := f.svc.Download(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/orig.xml", d.URL)

	_, err = f.svc.Edit(ctx, "u1", p.ID, EditRequest{Title: "new cut", XML: strings.NewReader("<new/>")})
	require.NoError(t, err)

	d, err = f.svc.Download(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.Empty(t, d.URL)
	assert.Equal(t, "<new/>", d.Content)
	assert.Equal(t, "new_cut.xml", d.FileName)

	// A metadata-only edit keeps the replaced content.
	_, err = f.svc.Edit(ctx, "u1", p.ID, EditRequest{Title: "final"})
	require.NoError(t, err)
	d, err = f.svc.Download(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "<new/>", d.Content)
}

func TestProjectService_GetHidesOthersPrivate(t *testing.T) {
	f := newProjectFixture(t)
	f.repo.Put(domain.Project{ID: "private", Title: "p", Visibility: domain.VisibilityPrivate, OwnerID: "u1"})

	_, err := f.svc.Get(context.Background(), "u2", "private")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := f.svc.Get(context.Background(), "u1", "private")
	require.NoError(t, err)
	assert.Equal(t, "p", p.Title)
}

func TestProjectService_PrivateEditLeavesOthersFeed(t *testing.T) {
	f := newProjectFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := NewFeedService(f.repo).Subscribe(ctx, FeedKey{View: domain.ViewFeed, UID: "u2"})
	defer feed.Close()
	waitFor(t, feed.Updates(), func(st FeedState) bool { return !st.Loading })

	p, err := f.svc.Create(ctx, "u1", UploadRequest{
		Title:      "Demo",
		Genre:      "Action",
		Visibility: domain.VisibilityPublic,
		File:       projectFile("demo.xml"),
	})
	require.NoError(t, err)
	waitFor(t, feed.Updates(), func(st FeedState) bool {
		return len(st.Projects) == 1 && st.Projects[0].ID == p.ID
	})

	_, err = f.svc.Edit(ctx, "u1", p.ID, EditRequest{Title: "Demo", Visibility: domain.VisibilityPrivate})
	require.NoError(t, err)
	waitFor(t, feed.Updates(), func(st FeedState) bool { return !st.Loading && len(st.Projects) == 0 })
}
