package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alightgram/alightgram-backend/internal/api/http/sse"
	"github.com/alightgram/alightgram-backend/internal/auth"
	"github.com/alightgram/alightgram-backend/internal/comments/domain"
	"github.com/alightgram/alightgram-backend/internal/comments/service"
	"github.com/alightgram/alightgram-backend/internal/logging"
	usersdomain "github.com/alightgram/alightgram-backend/internal/users/domain"
)

// ProfileSource resolves the profile a new comment is attributed to.
type ProfileSource interface {
	CurrentProfile(ctx context.Context, uid string) (*usersdomain.UserProfile, error)
}

type Handler struct {
	comments *service.CommentService
	profiles ProfileSource
	now      func() time.Time
}

func New(comments *service.CommentService, profiles ProfileSource) *Handler {
	return &Handler{comments: comments, profiles: profiles, now: time.Now}
}

// Register attaches comment routes under a project group.
func (h *Handler) Register(rg *gin.RouterGroup, requireUser gin.HandlerFunc) {
	rg.GET("/:id/comments/stream", h.stream)
	rg.POST("/:id/comments", requireUser, h.post)
}

type postReq struct {
	Text string `json:"text"`
}

// commentView is a comment with its age rendered for display.
type commentView struct {
	domain.Comment
	Age string `json:"age"`
}

type threadPayload struct {
	ProjectID string        `json:"projectId"`
	Loading   bool          `json:"loading"`
	Comments  []commentView `json:"comments"`
}

func (h *Handler) render(th service.Thread) threadPayload {
	now := h.now()
	out := threadPayload{
		ProjectID: th.ProjectID,
		Loading:   th.Loading,
		Comments:  make([]commentView, 0, len(th.Comments)),
	}
	for _, c := range th.Comments {
		out.Comments = append(out.Comments, commentView{Comment: c, Age: domain.RelativeTime(c.Timestamp, now)})
	}
	return out
}

func (h *Handler) post(c *gin.Context) {
	var req postReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	ctx := c.Request.Context()
	profile, err := h.profiles.CurrentProfile(ctx, auth.UserFirebaseUID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	comment, err := h.comments.Post(ctx, c.Param("id"), domain.Author{
		UID:         profile.UID,
		DisplayName: profile.DisplayName,
		PhotoURL:    profile.PhotoURL,
	}, req.Text)
	switch {
	case errors.Is(err, domain.ErrSignInRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	case comment == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true, "comment": nil})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "comment": comment})
}

// stream pushes the comment thread of a project using Server-Sent Events (SSE).
func (h *Handler) stream(c *gin.Context) {
	ctx := c.Request.Context()
	sub := h.comments.Subscribe(ctx, c.Param("id"))
	defer sub.Close()

	s, ok := sse.Start(c)
	if !ok {
		return
	}

	ticker := time.NewTicker(sse.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if err := s.KeepAlive(); err != nil {
				return
			}

		case th, ok := <-sub.Updates():
			if !ok {
				return
			}
			if err := s.Event("snapshot", h.render(th)); err != nil {
				logging.FromContext(ctx).Debug("comment stream write failed", zap.Error(err))
				return
			}
			if th.Err != nil {
				_ = s.Event("error", gin.H{"error": th.Err.Error()})
				return
			}
		}
	}
}
