package appstate

import (
	"github.com/alightgram/alightgram-backend/internal/projects/domain"
	"github.com/alightgram/alightgram-backend/internal/projects/service"
	usersdomain "github.com/alightgram/alightgram-backend/internal/users/domain"
)

// Action is a state change request. Reduce is the only place actions take effect.
type Action interface {
	apply(State) State
}

type SignedIn struct{ User usersdomain.UserProfile }

type SignedOut struct{}

// ProfileUpdated replaces the signed-in user's profile.
type ProfileUpdated struct{ User usersdomain.UserProfile }

type ViewSelected struct{ View domain.View }

type GenreSelected struct{ Genre string }

type QueryChanged struct{ Query string }

// FeedUpdated carries a new state of the live project collection. States of a collection
// other than the current view's are ignored.
type FeedUpdated struct{ Feed service.FeedState }

// UploadSucceeded shows the user's own projects with no genre filter.
type UploadSucceeded struct{}

// Reduce returns the state after a. It never modifies s.
func Reduce(s State, a Action) State {
	return a.apply(s)
}

func (a SignedIn) apply(s State) State {
	if s.UID() != a.User.UID {
		s = s.collectionChanged()
	}
	u := a.User
	s.User = &u
	return s
}

func (SignedOut) apply(s State) State {
	if s.User == nil {
		return s
	}
	s.User = nil
	if s.View == domain.ViewProfile {
		s.View = domain.ViewFeed
	}
	return s.collectionChanged()
}

func (a ProfileUpdated) apply(s State) State {
	if s.User == nil || s.User.UID != a.User.UID {
		return s
	}
	u := a.User
	s.User = &u
	return s
}

func (a ViewSelected) apply(s State) State {
	if a.View == s.View {
		return s
	}
	if a.View == domain.ViewProfile && s.User == nil {
		return s
	}
	s.View = a.View
	return s.collectionChanged()
}

func (a GenreSelected) apply(s State) State {
	if a.Genre == "" {
		a.Genre = domain.AllGenres
	}
	s.Genre = a.Genre
	return s
}

func (a QueryChanged) apply(s State) State {
	s.Query = a.Query
	return s
}

func (a FeedUpdated) apply(s State) State {
	if a.Feed.Key != s.FeedKey() {
		return s
	}
	s.Projects = a.Feed.Projects
	if s.Projects == nil {
		s.Projects = []domain.Project{}
	}
	s.Loading = a.Feed.Loading
	s.Err = ""
	if a.Feed.Err != nil {
		s.Err = a.Feed.Err.Error()
	}
	return s
}

// collectionChanged clears the shown collection until the new one loads.
func (s State) collectionChanged() State {
	s.Projects = []domain.Project{}
	s.Loading = true
	s.Err = ""
	return s
}

func (UploadSucceeded) apply(s State) State {
	s = ViewSelected{View: domain.ViewProfile}.apply(s)
	s.Genre = domain.AllGenres
	return s
}
