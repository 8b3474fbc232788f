package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alightgram/alightgram-backend/internal/comments/domain"
	"github.com/alightgram/alightgram-backend/internal/live"
	"github.com/alightgram/alightgram-backend/internal/logging"
)

// Store is the comment thread store.
type Store interface {
	Add(ctx context.Context, projectID string, c *domain.Comment) error
	Listen(ctx context.Context, projectID string) (live.Listener[[]domain.Comment], error)
}

// Thread is one rendered state of a project's comments, newest first.
type Thread struct {
	ProjectID string           `json:"projectId"`
	Comments  []domain.Comment `json:"comments"`
	Loading   bool             `json:"loading"`
	Err       error            `json:"-"`
}

type CommentService struct {
	store Store
	now   func() time.Time
}

func NewCommentService(store Store) *CommentService {
	return &CommentService{store: store, now: time.Now}
}

// Post adds text to the thread of projectID as author. Whitespace-only text is ignored and
// returns a nil comment. Post does not wait for subscribers to observe the write.
func (s *CommentService) Post(ctx context.Context, projectID string, author domain.Author, text string) (*domain.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if author.UID == "" {
		return nil, domain.ErrSignInRequired
	}

	c := &domain.Comment{
		ID:        uuid.NewString(),
		Text:      text,
		UserID:    author.UID,
		UserName:  author.DisplayName,
		UserPhoto: author.PhotoURL,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.store.Add(ctx, projectID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Subscribe starts a live subscription to the thread of projectID. The first state is a
// loading state; every later state is the whole thread, newest first. A listener failure is
// logged and delivered as one empty state carrying the error, after which the subscription
// ends without retrying.
func (s *CommentService) Subscribe(ctx context.Context, projectID string) *live.Subscription[Thread] {
	return live.Subscribe(ctx, func(ctx context.Context) (live.Listener[Thread], error) {
		inner, err := s.store.Listen(ctx, projectID)
		return &threadListener{
			ctx:       ctx,
			projectID: projectID,
			inner:     inner,
			openErr:   err,
			logger:    logging.FromContext(ctx).With(zap.String("project_id", projectID)),
		}, nil
	})
}

type threadListener struct {
	ctx       context.Context
	projectID string
	inner     live.Listener[[]domain.Comment]
	openErr   error
	logger    *zap.Logger

	started bool
	failed  error
}

func (l *threadListener) Next() (Thread, error) {
	if !l.started {
		l.started = true
		return Thread{ProjectID: l.projectID, Comments: []domain.Comment{}, Loading: true}, nil
	}
	if l.failed != nil {
		return Thread{}, l.failed
	}
	if l.openErr != nil {
		return l.fail(l.openErr), nil
	}

	comments, err := l.inner.Next()
	if err != nil {
		if l.ctx.Err() != nil {
			return Thread{}, err
		}
		return l.fail(err), nil
	}
	domain.SortNewestFirst(comments)
	return Thread{ProjectID: l.projectID, Comments: comments}, nil
}

func (l *threadListener) fail(err error) Thread {
	l.logger.Error("comment subscription failed", zap.Error(err))
	l.failed = err
	return Thread{ProjectID: l.projectID, Comments: []domain.Comment{}, Err: err}
}

func (l *threadListener) Stop() {
	if l.inner != nil {
		l.inner.Stop()
	}
}
