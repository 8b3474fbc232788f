// Package appstate holds one client's application state: who is signed in, which view,
// genre and search query are selected, and the live project collection. State changes only
// through actions applied by Reduce, and rendered state flows out to subscribers.
package appstate

import (
	"github.com/alightgram/alightgram-backend/internal/projects/domain"
	"github.com/alightgram/alightgram-backend/internal/projects/service"
	usersdomain "github.com/alightgram/alightgram-backend/internal/users/domain"
)

type State struct {
	User     *usersdomain.UserProfile
	View     domain.View
	Genre    string
	Query    string
	Projects []domain.Project
	Loading  bool
	Err      string
}

// Initial is the state of a new client, signed in as user when user is not nil.
func Initial(user *usersdomain.UserProfile) State {
	return State{
		User:     user,
		View:     domain.ViewFeed,
		Genre:    domain.AllGenres,
		Projects: []domain.Project{},
		Loading:  true,
	}
}

// UID is the signed-in user's id, empty when signed out.
func (s State) UID() string {
	if s.User == nil {
		return ""
	}
	return s.User.UID
}

// FeedKey identifies the project collection the current view shows. It changes with the
// view and with the signed-in user.
func (s State) FeedKey() service.FeedKey {
	return service.FeedKey{View: s.View, UID: s.UID()}
}

// Rendered is what a client displays for a state.
type Rendered struct {
	User       *usersdomain.UserProfile `json:"user"`
	View       domain.View              `json:"view"`
	Genre      string                   `json:"genre"`
	Query      string                   `json:"query"`
	Loading    bool                     `json:"loading"`
	Error      string                   `json:"error,omitempty"`
	Projects   []domain.Project         `json:"projects"`
	TotalLikes *int64                   `json:"totalLikes,omitempty"`
}

// Render applies the genre and query filters. The profile view also carries the like total
// over all of the user's projects, filtered or not.
func Render(s State) Rendered {
	r := Rendered{
		User:     s.User,
		View:     s.View,
		Genre:    s.Genre,
		Query:    s.Query,
		Loading:  s.Loading,
		Error:    s.Err,
		Projects: domain.Filter(s.Projects, s.Genre, s.Query),
	}
	if s.View == domain.ViewProfile {
		total := domain.TotalLikes(s.Projects)
		r.TotalLikes = &total
	}
	return r
}
