package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/alightgram/alightgram-backend/internal/live"
	"github.com/alightgram/alightgram-backend/internal/logging"
	"github.com/alightgram/alightgram-backend/internal/projects/domain"
	"github.com/alightgram/alightgram-backend/internal/validate"
)

const projectsCollection = "projects"

// FirestoreRepository stores projects in the projects collection.
type FirestoreRepository struct {
	client *firestore.Client
}

func NewFirestoreRepository(client *firestore.Client) *FirestoreRepository {
	return &FirestoreRepository{client: client}
}

func (r *FirestoreRepository) coll() *firestore.CollectionRef {
	return r.client.Collection(projectsCollection)
}

func (r *FirestoreRepository) Listen(ctx context.Context, q domain.Query) (live.Listener[[]domain.Project], error) {
	if q.Field == "" {
		return nil, fmt.Errorf("listen: empty query")
	}
	it := r.coll().Where(q.Field, "==", q.Value).Snapshots(ctx)
	return &snapshotListener{it: it, logger: logging.FromContext(ctx)}, nil
}

type snapshotListener struct {
	it     *firestore.QuerySnapshotIterator
	logger *zap.Logger
}

func (l *snapshotListener) Next() ([]domain.Project, error) {
	snap, err := l.it.Next()
	if err != nil {
		return nil, err
	}
	docs, err := snap.Documents.GetAll()
	if err != nil {
		return nil, fmt.Errorf("read snapshot documents: %w", err)
	}

	out := make([]domain.Project, 0, len(docs))
	for _, d := range docs {
		p, err := decodeProject(d)
		if err != nil {
			l.logger.Warn("dropping malformed project record", zap.String("project_id", d.Ref.ID), zap.Error(err))
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (l *snapshotListener) Stop() { l.it.Stop() }

func decodeProject(d *firestore.DocumentSnapshot) (*domain.Project, error) {
	var p domain.Project
	if err := d.DataTo(&p); err != nil {
		return nil, err
	}
	p.ID = d.Ref.ID
	if p.LikedBy == nil {
		p.LikedBy = []string{}
	}
	if err := validate.Struct(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *FirestoreRepository) Get(ctx context.Context, id string) (*domain.Project, error) {
	snap, err := r.coll().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return decodeProject(snap)
}

func (r *FirestoreRepository) Create(ctx context.Context, p *domain.Project) (string, error) {
	if p.LikedBy == nil {
		p.LikedBy = []string{}
	}
	if err := validate.Struct(p); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidProject, err)
	}
	ref := r.coll().NewDoc()
	if _, err := ref.Create(ctx, p); err != nil {
		return "", fmt.Errorf("failed to create project: %w", err)
	}
	p.ID = ref.ID
	return ref.ID, nil
}

func (r *FirestoreRepository) Update(ctx context.Context, id string, u domain.Update) error {
	if u.Empty() {
		return nil
	}
	updates := toFirestoreUpdates(u)
	_, err := r.coll().Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

func toFirestoreUpdates(u domain.Update) []firestore.Update {
	var out []firestore.Update
	if u.Title != nil {
		out = append(out, firestore.Update{Path: "title", Value: *u.Title})
	}
	if u.Description != nil {
		out = append(out, firestore.Update{Path: "description", Value: *u.Description})
	}
	if u.Genre != nil {
		out = append(out, firestore.Update{Path: "genre", Value: *u.Genre})
	}
	if u.AspectRatio != nil {
		out = append(out, firestore.Update{Path: "aspectRatio", Value: *u.AspectRatio})
	}
	if u.Visibility != nil {
		out = append(out, firestore.Update{Path: "visibility", Value: string(*u.Visibility)})
	}
	if u.XMLContent != nil {
		out = append(out, firestore.Update{Path: "xmlContent", Value: *u.XMLContent})
	}
	if u.FileURL != nil {
		out = append(out, firestore.Update{Path: "fileUrl", Value: *u.FileURL})
	}
	if u.FileName != nil {
		out = append(out, firestore.Update{Path: "fileName", Value: *u.FileName})
	}
	if u.VideoURL != nil {
		out = append(out, firestore.Update{Path: "videoUrl", Value: *u.VideoURL})
	}
	return out
}

func (r *FirestoreRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.coll().Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func (r *FirestoreRepository) AddLike(ctx context.Context, id, uid string) error {
	return r.like(ctx, id, firestore.Increment(1), firestore.ArrayUnion(uid))
}

func (r *FirestoreRepository) RemoveLike(ctx context.Context, id, uid string) error {
	return r.like(ctx, id, firestore.Increment(-1), firestore.ArrayRemove(uid))
}

func (r *FirestoreRepository) like(ctx context.Context, id string, count, members interface{}) error {
	_, err := r.coll().Doc(id).Update(ctx, []firestore.Update{
		{Path: "likes", Value: count},
		{Path: "likedBy", Value: members},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update likes: %w", err)
	}
	return nil
}

func (r *FirestoreRepository) ReconcileLikes(ctx context.Context) (int, error) {
	it := r.coll().Select("likes", "likedBy").Documents(ctx)
	defer it.Stop()

	fixed := 0
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fixed, fmt.Errorf("scan projects: %w", err)
		}

		changed := false
		err = r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			snap, err := tx.Get(doc.Ref)
			if err != nil {
				return err
			}
			var counts struct {
				Likes   int64    `firestore:"likes"`
				LikedBy []string `firestore:"likedBy"`
			}
			if err := snap.DataTo(&counts); err != nil {
				return err
			}
			if counts.Likes == int64(len(counts.LikedBy)) {
				return nil
			}
			changed = true
			return tx.Update(doc.Ref, []firestore.Update{{Path: "likes", Value: len(counts.LikedBy)}})
		})
		if err != nil {
			return fixed, fmt.Errorf("reconcile project %s: %w", doc.Ref.ID, err)
		}
		if changed {
			fixed++
		}
	}
	return fixed, nil
}
