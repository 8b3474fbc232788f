package http

import "github.com/alightgram/alightgram-backend/internal/auth/service"

type Handler struct {
	sessions *service.SessionService
}

func New(sessions *service.SessionService) *Handler {
	return &Handler{
		sessions: sessions,
	}
}

type signInReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type googleSignInReq struct {
	IDToken string `json:"idToken"`
	Code    string `json:"code"`
}
