package http

import (
	"github.com/alightgram/alightgram-backend/internal/appstate"
	authdomain "github.com/alightgram/alightgram-backend/internal/auth/domain"
	"github.com/alightgram/alightgram-backend/internal/projects/service"
)

// Client message types.
const (
	msgSetView         = "set_view"
	msgSetGenre        = "set_genre"
	msgSetQuery        = "set_query"
	msgUploadSucceeded = "upload_succeeded"
	msgToggleLike      = "toggle_like"
	msgSignIn          = "sign_in"
	msgSignInGoogle    = "sign_in_google"
	msgSignOut         = "sign_out"
)

// Server message types.
const (
	msgState   = "state"
	msgLike    = "like"
	msgSession = "session"
	msgError   = "error"
)

type clientMessage struct {
	Type      string `json:"type"`
	View      string `json:"view,omitempty"`
	Genre     string `json:"genre,omitempty"`
	Query     string `json:"query,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
	Email     string `json:"email,omitempty"`
	Password  string `json:"password,omitempty"`
	IDToken   string `json:"idToken,omitempty"`
	Code      string `json:"code,omitempty"`
}

type serverMessage struct {
	Type      string             `json:"type"`
	State     *appstate.Rendered `json:"state,omitempty"`
	ProjectID string             `json:"projectId,omitempty"`
	Like      *service.LikeState `json:"like,omitempty"`
	Session   *sessionPayload    `json:"session,omitempty"`
	Action    string             `json:"action,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// sessionPayload carries the tokens a client needs for the REST and SSE endpoints.
type sessionPayload struct {
	State        authdomain.State `json:"state"`
	IDToken      string           `json:"idToken,omitempty"`
	RefreshToken string           `json:"refreshToken,omitempty"`
	ExpiresIn    int              `json:"expiresIn,omitempty"`
}

func errorMessage(action string, err error) serverMessage {
	return serverMessage{Type: msgError, Action: action, Error: err.Error()}
}
