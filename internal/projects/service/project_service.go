package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alightgram/alightgram-backend/config"
	"github.com/alightgram/alightgram-backend/internal/logging"
	"github.com/alightgram/alightgram-backend/internal/media"
	"github.com/alightgram/alightgram-backend/internal/projects/domain"
	"github.com/alightgram/alightgram-backend/internal/projects/repository"
	usersdomain "github.com/alightgram/alightgram-backend/internal/users/domain"
)

// ProfileSource resolves the profile shown as a project's owner.
type ProfileSource interface {
	CurrentProfile(ctx context.Context, uid string) (*usersdomain.UserProfile, error)
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo     repository.Repository
	uploader media.Uploader
	profiles ProfileSource
	catalog  *config.Catalog
	now      func() time.Time
}

// NewProjectService creates a new project service
func NewProjectService(repo repository.Repository, uploader media.Uploader, profiles ProfileSource, catalog *config.Catalog) *ProjectService {
	return &ProjectService{
		repo:     repo,
		uploader: uploader,
		profiles: profiles,
		catalog:  catalog,
		now:      time.Now,
	}
}

// UploadRequest is a new project with its files still local.
type UploadRequest struct {
	Title       string
	Description string
	Genre       string
	AspectRatio string
	Visibility  domain.Visibility
	File        *media.File
	Video       *media.File
}

// Create hosts the project file and optional preview video, then stores the project owned by
// uid. Nothing is stored if an upload fails.
func (s *ProjectService) Create(ctx context.Context, uid string, req UploadRequest) (*domain.Project, error) {
	if uid == "" {
		return nil, ErrSignInRequired
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidProject)
	}
	if req.File == nil {
		return nil, domain.ErrNoFile
	}
	genre, aspect, err := s.resolveCatalog(req.Genre, req.AspectRatio)
	if err != nil {
		return nil, err
	}
	vis := req.Visibility
	if vis == "" {
		vis = domain.VisibilityPublic
	}

	owner, err := s.profiles.CurrentProfile(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("resolve owner: %w", err)
	}

	fileURL, err := s.uploader.Upload(ctx, *req.File)
	if err != nil {
		return nil, err
	}
	var videoURL string
	if req.Video != nil {
		if videoURL, err = s.uploader.Upload(ctx, *req.Video); err != nil {
			return nil, err
		}
	}

	p := &domain.Project{
		Title:       title,
		Description: req.Description,
		Genre:       genre,
		AspectRatio: aspect,
		FileURL:     fileURL,
		FileName:    req.File.Name,
		VideoURL:    videoURL,
		Visibility:  vis,
		OwnerID:     uid,
		OwnerName:   owner.DisplayName,
		OwnerPhoto:  owner.PhotoURL,
		CreatedAt:   s.now().UnixMilli(),
		Likes:       0,
		LikedBy:     []string{},
	}
	if _, err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("project created",
		zap.String("project_id", p.ID), zap.String("owner_id", uid), zap.String("visibility", string(vis)))
	return p, nil
}

func (s *ProjectService) resolveCatalog(genre, aspect string) (string, string, error) {
	if genre == "" {
		genre = s.catalog.Genres[0]
	}
	if !s.catalog.HasGenre(genre) {
		return "", "", fmt.Errorf("%w: unknown genre %q", domain.ErrInvalidProject, genre)
	}
	if aspect == "" {
		aspect = s.catalog.DefaultAspectRatio
	}
	if !s.catalog.HasAspectRatio(aspect) {
		return "", "", fmt.Errorf("%w: unknown aspect ratio %q", domain.ErrInvalidProject, aspect)
	}
	return genre, aspect, nil
}

// EditRequest is a full edit of a project's metadata plus optional replacement files.
type EditRequest struct {
	Title       string
	Description string
	Genre       string
	AspectRatio string
	Visibility  domain.Visibility
	// XML replaces the project file with inline content when set.
	XML   io.Reader
	Video *media.File
}

// Edit applies req to a project owned by uid.
func (s *ProjectService) Edit(ctx context.Context, uid, id string, req EditRequest) (*domain.Project, error) {
	p, err := s.owned(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidProject)
	}
	genre, aspect := req.Genre, req.AspectRatio
	if genre == "" {
		genre = p.Genre
	}
	if aspect == "" {
		aspect = p.AspectRatio
	}
	genre, aspect, err = s.resolveCatalog(genre, aspect)
	if err != nil {
		return nil, err
	}
	vis := req.Visibility
	if vis == "" {
		vis = p.Visibility
	}

	u := domain.Update{
		Title:       &title,
		Description: &req.Description,
		Genre:       &genre,
		AspectRatio: &aspect,
		Visibility:  &vis,
	}
	if req.XML != nil {
		b, err := io.ReadAll(req.XML)
		if err != nil {
			return nil, fmt.Errorf("read project file: %w", err)
		}
		xml, hosted := string(b), ""
		u.XMLContent = &xml
		u.FileURL, u.FileName = &hosted, &hosted
	}
	if req.Video != nil {
		videoURL, err := s.uploader.Upload(ctx, *req.Video)
		if err != nil {
			return nil, err
		}
		u.VideoURL = &videoURL
	}

	if err := s.repo.Update(ctx, id, u); err != nil {
		return nil, err
	}
	u.Apply(p)
	return p, nil
}

// Delete removes a project owned by uid.
func (s *ProjectService) Delete(ctx context.Context, uid, id string) error {
	if _, err := s.owned(ctx, uid, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("project deleted", zap.String("project_id", id), zap.String("owner_id", uid))
	return nil
}

// Download is where a project file can be fetched from: a hosted URL, or inline XML content
// with the attachment name to serve it under.
type Download struct {
	URL      string
	Content  string
	FileName string
}

// Download resolves the project file for uid. Private projects are only available to their
// owner.
func (s *ProjectService) Download(ctx context.Context, uid, id string) (*Download, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanDownload(uid) {
		return nil, domain.ErrForbidden
	}
	switch {
	case p.FileURL != "":
		name := p.FileName
		if name == "" {
			name = p.DownloadFileName()
		}
		return &Download{URL: p.FileURL, FileName: name}, nil
	case p.XMLContent != "":
		return &Download{Content: p.XMLContent, FileName: p.DownloadFileName()}, nil
	}
	return nil, domain.ErrNoFile
}

// Get returns a project visible to uid.
func (s *ProjectService) Get(ctx context.Context, uid, id string) (*domain.Project, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Visibility != domain.VisibilityPublic && !p.IsOwner(uid) {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *ProjectService) owned(ctx context.Context, uid, id string) (*domain.Project, error) {
	if uid == "" {
		return nil, ErrSignInRequired
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsOwner(uid) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}
