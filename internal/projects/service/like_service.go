package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/alightgram/alightgram-backend/internal/logging"
	"github.com/alightgram/alightgram-backend/internal/projects/domain"
	"github.com/alightgram/alightgram-backend/internal/projects/repository"
)

var ErrSignInRequired = errors.New("sign in required")

// LikeState is the locally displayed like status of one project.
type LikeState struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

// LikeView is the local, optimistically updated like status of one project for one user.
type LikeView struct {
	ProjectID string

	mu    sync.Mutex
	state LikeState
}

// NewLikeView seeds the local status from a project snapshot.
func NewLikeView(p *domain.Project, uid string) *LikeView {
	return &LikeView{
		ProjectID: p.ID,
		state:     LikeState{Liked: uid != "" && p.LikedByUser(uid), Count: p.Likes},
	}
}

func (v *LikeView) State() LikeState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

type LikeService struct {
	repo repository.Repository
}

func NewLikeService(repo repository.Repository) *LikeService {
	return &LikeService{repo: repo}
}

// Toggle flips the liked flag and adjusts the count on v immediately, then writes the change
// to the store. If the write is rejected only the liked flag is reverted; the count keeps the
// optimistic adjustment until the next snapshot replaces it.
func (s *LikeService) Toggle(ctx context.Context, v *LikeView, uid string) (LikeState, error) {
	if uid == "" {
		return v.State(), ErrSignInRequired
	}

	v.mu.Lock()
	wasLiked := v.state.Liked
	v.state.Liked = !wasLiked
	if wasLiked {
		v.state.Count--
	} else {
		v.state.Count++
	}
	v.mu.Unlock()

	var err error
	if wasLiked {
		err = s.repo.RemoveLike(ctx, v.ProjectID, uid)
	} else {
		err = s.repo.AddLike(ctx, v.ProjectID, uid)
	}
	if err != nil {
		logging.FromContext(ctx).Warn("like update rejected",
			zap.String("project_id", v.ProjectID), zap.String("uid", uid), zap.Error(err))
		v.mu.Lock()
		v.state.Liked = wasLiked
		v.mu.Unlock()
		return v.State(), err
	}
	return v.State(), nil
}

// ToggleStored toggles the like status of a stored project as seen by uid.
func (s *LikeService) ToggleStored(ctx context.Context, projectID, uid string) (LikeState, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return LikeState{}, err
	}
	return s.Toggle(ctx, NewLikeView(p, uid), uid)
}
