package repository

import (
	"context"
	"sync"

	"github.com/alightgram/alightgram-backend/internal/users/domain"
	"github.com/alightgram/alightgram-backend/internal/validate"
)

// MemoryRepository keeps profiles in process memory. It backs STORE_BACKEND=memory and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]domain.UserProfile
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{profiles: make(map[string]domain.UserProfile)}
}

func (r *MemoryRepository) Get(_ context.Context, uid string) (*domain.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[uid]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) Create(_ context.Context, p *domain.UserProfile) error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UID] = *p
	return nil
}

func (r *MemoryRepository) Merge(ctx context.Context, p *domain.UserProfile) error {
	return r.Create(ctx, p)
}

func (r *MemoryRepository) Update(_ context.Context, uid string, u domain.ProfileUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[uid]
	if !ok {
		return domain.ErrUserNotFound
	}
	p.DisplayName = u.DisplayName
	p.PhotoURL = u.PhotoURL
	r.profiles[uid] = p
	return nil
}
