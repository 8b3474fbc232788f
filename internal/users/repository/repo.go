package repository

import (
	"context"

	"github.com/alightgram/alightgram-backend/internal/users/domain"
)

// Repository is the profile store, keyed by uid.
type Repository interface {
	Get(ctx context.Context, uid string) (*domain.UserProfile, error)
	// Create writes the whole record, replacing any existing one.
	Create(ctx context.Context, p *domain.UserProfile) error
	// Merge writes the record's fields over an existing one, creating it if absent.
	Merge(ctx context.Context, p *domain.UserProfile) error
	// Update changes displayName and photoURL of an existing record.
	Update(ctx context.Context, uid string, u domain.ProfileUpdate) error
}
