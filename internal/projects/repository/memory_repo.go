package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/alightgram/alightgram-backend/internal/live"
	"github.com/alightgram/alightgram-backend/internal/projects/domain"
	"github.com/alightgram/alightgram-backend/internal/validate"
)

// MemoryRepository is a process-local Repository. Listeners see every write.
type MemoryRepository struct {
	mu        sync.Mutex
	docs      map[string]domain.Project
	order     []string
	listeners map[*memoryListener]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		docs:      make(map[string]domain.Project),
		listeners: make(map[*memoryListener]struct{}),
	}
}

func (r *MemoryRepository) Listen(ctx context.Context, q domain.Query) (live.Listener[[]domain.Project], error) {
	if q.Field == "" {
		return nil, fmt.Errorf("listen: empty query")
	}
	l := &memoryListener{
		ctx:     ctx,
		repo:    r,
		query:   q,
		changed: make(chan struct{}, 1),
		pending: true,
	}
	r.mu.Lock()
	r.listeners[l] = struct{}{}
	r.mu.Unlock()
	return l, nil
}

// Put stores p as-is under p.ID, bypassing validation. Used to seed data.
func (r *MemoryRepository) Put(p domain.Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	r.docs[p.ID] = cloneProject(p)
	r.notifyLocked()
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneProject(p)
	return &out, nil
}

func (r *MemoryRepository) Create(_ context.Context, p *domain.Project) (string, error) {
	if p.LikedBy == nil {
		p.LikedBy = []string{}
	}
	if err := validate.Struct(p); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidProject, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.NewString()
	r.docs[p.ID] = cloneProject(*p)
	r.order = append(r.order, p.ID)
	r.notifyLocked()
	return p.ID, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, u domain.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if u.Empty() {
		return nil
	}
	u.Apply(&p)
	r.docs[id] = p
	r.notifyLocked()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return nil
	}
	delete(r.docs, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	r.notifyLocked()
	return nil
}

func (r *MemoryRepository) AddLike(_ context.Context, id, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Likes++
	if !slices.Contains(p.LikedBy, uid) {
		p.LikedBy = append(p.LikedBy, uid)
	}
	r.docs[id] = p
	r.notifyLocked()
	return nil
}

func (r *MemoryRepository) RemoveLike(_ context.Context, id, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Likes--
	p.LikedBy = slices.DeleteFunc(p.LikedBy, func(s string) bool { return s == uid })
	r.docs[id] = p
	r.notifyLocked()
	return nil
}

func (r *MemoryRepository) ReconcileLikes(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fixed := 0
	for id, p := range r.docs {
		if p.Likes == int64(len(p.LikedBy)) {
			continue
		}
		p.Likes = int64(len(p.LikedBy))
		r.docs[id] = p
		fixed++
	}
	if fixed > 0 {
		r.notifyLocked()
	}
	return fixed, nil
}

func (r *MemoryRepository) snapshot(q domain.Query) []domain.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Project, 0, len(r.order))
	for _, id := range r.order {
		p := r.docs[id]
		if q.Matches(&p) {
			out = append(out, cloneProject(p))
		}
	}
	return out
}

func (r *MemoryRepository) notifyLocked() {
	for l := range r.listeners {
		select {
		case l.changed <- struct{}{}:
		default:
		}
	}
}

func (r *MemoryRepository) removeListener(l *memoryListener) {
	r.mu.Lock()
	delete(r.listeners, l)
	r.mu.Unlock()
}

type memoryListener struct {
	ctx     context.Context
	repo    *MemoryRepository
	query   domain.Query
	changed chan struct{}
	pending bool
}

func (l *memoryListener) Next() ([]domain.Project, error) {
	if l.pending {
		l.pending = false
		return l.repo.snapshot(l.query), nil
	}
	select {
	case <-l.ctx.Done():
		return nil, l.ctx.Err()
	case <-l.changed:
		return l.repo.snapshot(l.query), nil
	}
}

func (l *memoryListener) Stop() { l.repo.removeListener(l) }

func cloneProject(p domain.Project) domain.Project {
	p.LikedBy = slices.Clone(p.LikedBy)
	return p
}
