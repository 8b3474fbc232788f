package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/firestore"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/alightgram/alightgram-backend/config"
	httpapi "github.com/alightgram/alightgram-backend/internal/api/http"
	"github.com/alightgram/alightgram-backend/internal/auth"
	authmw "github.com/alightgram/alightgram-backend/internal/auth/middleware"
	authrepo "github.com/alightgram/alightgram-backend/internal/auth/repository"
	authservice "github.com/alightgram/alightgram-backend/internal/auth/service"
	commentsrepo "github.com/alightgram/alightgram-backend/internal/comments/repository"
	commentsservice "github.com/alightgram/alightgram-backend/internal/comments/service"
	"github.com/alightgram/alightgram-backend/internal/media"
	projectsrepo "github.com/alightgram/alightgram-backend/internal/projects/repository"
	projectsservice "github.com/alightgram/alightgram-backend/internal/projects/service"
	usersrepo "github.com/alightgram/alightgram-backend/internal/users/repository"
)

// App holds the process-wide clients and services.
type App struct {
	Verifier authmw.TokenVerifier
	Projects projectsrepo.Repository

	Sessions    *authservice.SessionService
	Feed        *projectsservice.FeedService
	Likes       *projectsservice.LikeService
	ProjectsSvc *projectsservice.ProjectService
	Comments    *commentsservice.CommentService

	Pingers map[string]httpapi.Pinger

	closers []io.Closer
}

// NewApp connects to Firebase, the document store, Redis and the media host and wires the
// services on top of them.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Pingers: map[string]httpapi.Pinger{}}

	fbApp, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
	if err != nil {
		return nil, err
	}
	authClient, err := fbApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	a.Verifier = authClient

	var (
		profiles usersrepo.Repository
		projects projectsrepo.Repository
	)
	switch cfg.App.StoreBackend {
	case "memory":
		log.Warn("using in-memory document store, data is lost on restart")
		profiles = usersrepo.NewMemoryRepository()
		projects = projectsrepo.NewMemoryRepository()
	default:
		fs, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		a.closers = append(a.closers, fs)
		a.Pingers["firestore"] = httpapi.PingFunc(func(ctx context.Context) error {
			return pingFirestore(ctx, fs)
		})
		profiles = usersrepo.NewFirestoreRepository(fs)
		projects = projectsrepo.NewFirestoreRepository(fs)
	}
	a.Projects = projects

	rdb, err := OpenRedis(ctx, &cfg.Redis, RedisOptions{})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.closers = append(a.closers, rdb)
	a.Pingers["redis"] = httpapi.PingFunc(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	uploader, err := newUploader(ctx, &cfg.Media)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	catalog, err := config.LoadCatalog()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	idp := authrepo.NewFirebaseIdentityProvider(authClient, cfg.Firebase.IdentityToolkitURL, cfg.Firebase.APIKey)
	var codes authrepo.CodeExchanger
	if cfg.OAuth.GoogleClientID != "" {
		codes = authrepo.NewGoogleCodeExchanger(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, cfg.OAuth.GoogleRedirectURL)
	}

	a.Sessions = authservice.NewSessionService(idp, codes, profiles, uploader)
	a.Feed = projectsservice.NewFeedService(projects)
	a.Likes = projectsservice.NewLikeService(projects)
	a.ProjectsSvc = projectsservice.NewProjectService(projects, uploader, a.Sessions, catalog)
	a.Comments = commentsservice.NewCommentService(newCommentStore(rdb))

	log.Info("application wired",
		zap.String("store_backend", cfg.App.StoreBackend),
		zap.String("media_backend", cfg.Media.Backend),
		zap.Bool("google_code_exchange", codes != nil))
	return a, nil
}

// Close releases every client NewApp opened.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newUploader(ctx context.Context, cfg *config.MediaConfig) (media.Uploader, error) {
	switch cfg.Backend {
	case "s3":
		return media.NewS3UploaderFromEnv(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicBaseURL)
	case "cloudinary":
		return media.NewCloudinaryUploader(cfg.CloudinaryUploadURL, cfg.CloudinaryPreset, cfg.CloudinaryAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Backend)
	}
}

func newCommentStore(rdb *redis.Client) commentsservice.Store {
	return commentsrepo.NewRedisRepository(rdb)
}

// pingFirestore reads at most one profile document.
func pingFirestore(ctx context.Context, fs *firestore.Client) error {
	it := fs.Collection("users").Limit(1).Documents(ctx)
	defer it.Stop()
	_, err := it.Next()
	if errors.Is(err, iterator.Done) {
		return nil
	}
	return err
}
