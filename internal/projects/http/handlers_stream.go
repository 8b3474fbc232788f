package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alightgram/alightgram-backend/internal/api/http/sse"
	"github.com/alightgram/alightgram-backend/internal/auth"
	"github.com/alightgram/alightgram-backend/internal/logging"
	"github.com/alightgram/alightgram-backend/internal/projects/domain"
	"github.com/alightgram/alightgram-backend/internal/projects/service"
)

// stream pushes the filtered project collection for a view using Server-Sent Events (SSE).
// The stream ends after an error event when the subscription fails.
func (h *Handler) stream(c *gin.Context) {
	view, err := domain.ParseView(c.Query("view"))
	if err != nil {
		writeError(c, err)
		return
	}
	uid := auth.UserFirebaseUID(c)
	if view == domain.ViewProfile && uid == "" {
		writeError(c, service.ErrSignInRequired)
		return
	}
	genre := c.DefaultQuery("genre", domain.AllGenres)
	query := c.Query("q")

	ctx := c.Request.Context()
	sub := h.feed.Subscribe(ctx, service.FeedKey{View: view, UID: uid})
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

		case st, ok := <-sub.Updates():
			if !ok {
				return
			}
			if st.Err != nil {
				_ = s.Event("snapshot", renderFeed(view, genre, query, st))
				_ = s.Event("error", gin.H{"error": st.Err.Error()})
				return
			}
			if err := s.Event("snapshot", renderFeed(view, genre, query, st)); err != nil {
				logging.FromContext(ctx).Debug("feed stream write failed", zap.Error(err))
				return
			}
		}
	}
}
