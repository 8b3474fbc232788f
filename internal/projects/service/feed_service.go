package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/alightgram/alightgram-backend/internal/live"
	"github.com/alightgram/alightgram-backend/internal/logging"
	"github.com/alightgram/alightgram-backend/internal/projects/domain"
	"github.com/alightgram/alightgram-backend/internal/projects/repository"
)

// FeedState is one rendered state of a live project collection.
type FeedState struct {
	Key      FeedKey          `json:"-"`
	Projects []domain.Project `json:"projects"`
	Loading  bool             `json:"loading"`
	Err      error            `json:"-"`
}

// FeedKey identifies a live project collection.
type FeedKey struct {
	View domain.View
	UID  string
}

// FeedService keeps project collections in sync with the document store.
type FeedService struct {
	repo repository.Repository
}

func NewFeedService(repo repository.Repository) *FeedService {
	return &FeedService{repo: repo}
}

// Subscribe starts a live subscription for key. The first state is a loading state; every
// later state is the full collection, newest first. A listener failure is logged and
// delivered as one empty, non-loading state carrying the error, after which the subscription
// ends. It is never retried.
func (s *FeedService) Subscribe(ctx context.Context, key FeedKey) *live.Subscription[FeedState] {
	return live.Subscribe(ctx, func(ctx context.Context) (live.Listener[FeedState], error) {
		return s.open(ctx, key)
	})
}

// Watcher returns a watcher that re-subscribes only when the (view, uid) key changes.
func (s *FeedService) Watcher(ctx context.Context) *live.Watcher[FeedKey, FeedState] {
	return live.NewWatcher(ctx, s.open)
}

func (s *FeedService) open(ctx context.Context, key FeedKey) (live.Listener[FeedState], error) {
	logger := logging.FromContext(ctx).With(zap.String("view", string(key.View)), zap.String("uid", key.UID))
	inner, err := s.repo.Listen(ctx, domain.QueryFor(key.View, key.UID))
	return &feedListener{ctx: ctx, key: key, inner: inner, openErr: err, logger: logger}, nil
}

type feedListener struct {
	ctx     context.Context
	key     FeedKey
	inner   live.Listener[[]domain.Project]
	openErr error
	logger  *zap.Logger

	started bool
	failed  error
}

func (l *feedListener) Next() (FeedState, error) {
	if !l.started {
		l.started = true
		return FeedState{Key: l.key, Projects: []domain.Project{}, Loading: true}, nil
	}
	if l.failed != nil {
		return FeedState{}, l.failed
	}
	if l.openErr != nil {
		return l.fail(l.openErr), nil
	}

	projects, err := l.inner.Next()
	if err != nil {
		if l.ctx.Err() != nil {
			return FeedState{}, err
		}
		return l.fail(err), nil
	}
	domain.SortNewestFirst(projects)
	return FeedState{Key: l.key, Projects: projects}, nil
}

func (l *feedListener) fail(err error) FeedState {
	l.logger.Error("project subscription failed", zap.Error(err))
	l.failed = err
	return FeedState{Key: l.key, Projects: []domain.Project{}, Err: err}
}

func (l *feedListener) Stop() {
	if l.inner != nil {
		l.inner.Stop()
	}
}
