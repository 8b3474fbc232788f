package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/alightgram/alightgram-backend/internal/users/domain"
	"github.com/alightgram/alightgram-backend/internal/validate"
)

const usersCollection = "users"

// FirestoreRepository stores profiles in the users collection.
type FirestoreRepository struct {
	client *firestore.Client
}

func NewFirestoreRepository(client *firestore.Client) *FirestoreRepository {
	return &FirestoreRepository{client: client}
}

func (r *FirestoreRepository) Get(ctx context.Context, uid string) (*domain.UserProfile, error) {
	snap, err := r.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var p domain.UserProfile
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", uid, err)
	}
	if p.UID == "" {
		p.UID = uid
	}
	if err := validate.Struct(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *FirestoreRepository) Create(ctx context.Context, p *domain.UserProfile) error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if _, err := r.client.Collection(usersCollection).Doc(p.UID).Set(ctx, p); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *FirestoreRepository) Merge(ctx context.Context, p *domain.UserProfile) error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	data := map[string]interface{}{
		"uid":         p.UID,
		"displayName": p.DisplayName,
		"email":       p.Email,
		"photoURL":    p.PhotoURL,
	}
	if _, err := r.client.Collection(usersCollection).Doc(p.UID).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to merge user: %w", err)
	}
	return nil
}

func (r *FirestoreRepository) Update(ctx context.Context, uid string, u domain.ProfileUpdate) error {
	_, err := r.client.Collection(usersCollection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "displayName", Value: u.DisplayName},
		{Path: "photoURL", Value: u.PhotoURL},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}
