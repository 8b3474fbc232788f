package repository

import (
	"context"

	"github.com/alightgram/alightgram-backend/internal/live"
	"github.com/alightgram/alightgram-backend/internal/projects/domain"
)

// Repository is the project document store.
type Repository interface {
	// Listen opens a live query. Each Next returns the full matching set in store order.
	Listen(ctx context.Context, q domain.Query) (live.Listener[[]domain.Project], error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	// Create stores p under a new id and returns it.
	Create(ctx context.Context, p *domain.Project) (string, error)
	Update(ctx context.Context, id string, u domain.Update) error
	Delete(ctx context.Context, id string) error
	// AddLike increments likes and adds uid to likedBy in a single document write.
	AddLike(ctx context.Context, id, uid string) error
	// RemoveLike decrements likes and removes uid from likedBy in a single document write.
	RemoveLike(ctx context.Context, id, uid string) error
	// ReconcileLikes rewrites likes to len(likedBy) wherever they differ and returns how many
	// projects changed.
	ReconcileLikes(ctx context.Context) (int, error)
}
