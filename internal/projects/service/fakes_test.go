package service

import (
	"context"
	"errors"
	"sync"

	"github.com/alightgram/alightgram-backend/internal/live"
	"github.com/alightgram/alightgram-backend/internal/media"
	"github.com/alightgram/alightgram-backend/internal/projects/domain"
	"github.com/alightgram/alightgram-backend/internal/projects/repository"
	usersdomain "github.com/alightgram/alightgram-backend/internal/users/domain"
)

// failingRepo wraps a memory repository and fails selected operations.
type failingRepo struct {
	*repository.MemoryRepository
	listenErr error
	nextErr   error
	likeErr   error
}

func (r *failingRepo) Listen(ctx context.Context, q domain.Query) (live.Listener[[]domain.Project], error) {
	if r.listenErr != nil {
		return nil, r.listenErr
	}
	if r.nextErr != nil {
		return &errListener{err: r.nextErr}, nil
	}
	return r.MemoryRepository.Listen(ctx, q)
}

func (r *failingRepo) AddLike(ctx context.Context, id, uid string) error {
	if r.likeErr != nil {
		return r.likeErr
	}
	return r.MemoryRepository.AddLike(ctx, id, uid)
}

func (r *failingRepo) RemoveLike(ctx context.Context, id, uid string) error {
	if r.likeErr != nil {
		return r.likeErr
	}
	return r.MemoryRepository.RemoveLike(ctx, id, uid)
}

type errListener struct {
	err     error
	stopped bool
}

func (l *errListener) Next() ([]domain.Project, error) { return nil, l.err }
func (l *errListener) Stop()                           { l.stopped = true }

type fakeUploader struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (u *fakeUploader) Upload(_ context.Context, f media.File) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return "", u.err
	}
	u.names = append(u.names, f.Name)
	return "https://cdn.example.com/" + f.Name, nil
}

type fakeProfiles map[string]*usersdomain.UserProfile

func (f fakeProfiles) CurrentProfile(_ context.Context, uid string) (*usersdomain.UserProfile, error) {
	if p, ok := f[uid]; ok {
		return p, nil
	}
	return nil, errors.New("no identity")
}
