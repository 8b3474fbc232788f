package http

import (
	"github.com/alightgram/alightgram-backend/internal/projects/domain"
	"github.com/alightgram/alightgram-backend/internal/projects/service"
)

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	feed     *service.FeedService
	likes    *service.LikeService
	projects *service.ProjectService
}

func New(feed *service.FeedService, likes *service.LikeService, projects *service.ProjectService) *Handler {
	return &Handler{feed: feed, likes: likes, projects: projects}
}

// feedPayload is one rendered feed state.
type feedPayload struct {
	View       domain.View      `json:"view"`
	Genre      string           `json:"genre"`
	Query      string           `json:"query"`
	Loading    bool             `json:"loading"`
	Projects   []domain.Project `json:"projects"`
	TotalLikes *int64           `json:"totalLikes,omitempty"`
}

func renderFeed(view domain.View, genre, query string, st service.FeedState) feedPayload {
	out := feedPayload{
		View:     view,
		Genre:    genre,
		Query:    query,
		Loading:  st.Loading,
		Projects: domain.Filter(st.Projects, genre, query),
	}
	if view == domain.ViewProfile {
		total := domain.TotalLikes(st.Projects)
		out.TotalLikes = &total
	}
	return out
}
