package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alightgram/alightgram-backend/internal/api/http/upload"
	"github.com/alightgram/alightgram-backend/internal/auth"
	"github.com/alightgram/alightgram-backend/internal/auth/domain"
	"github.com/alightgram/alightgram-backend/internal/media"
)

// SignIn signs in with email and password.
func (h *Handler) SignIn(c *gin.Context) {
	var req signInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "email and password are required"})
		return
	}

	res, err := h.sessions.NewSession().SignInWithPassword(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": res})
}

// SignInWithGoogle signs in with a Google ID token or authorization code.
func (h *Handler) SignInWithGoogle(c *gin.Context) {
	var req googleSignInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	res, err := h.sessions.NewSession().SignInWithGoogle(c.Request.Context(), req.IDToken, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": res})
}

// SignUp creates an account from a multipart form with an optional avatar file.
func (h *Handler) SignUp(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	if email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "email and password are required"})
		return
	}

	avatar, closeAvatar, err := upload.FormFile(c, "avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid avatar"})
		return
	}
	defer closeAvatar()

	res, err := h.sessions.NewSession().SignUp(c.Request.Context(), email, password, c.PostForm("displayName"), avatar)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "session": res})
}

// SignOut revokes the caller's refresh tokens.
func (h *Handler) SignOut(c *gin.Context) {
	uid := auth.UserFirebaseUID(c)
	if err := h.sessions.ResumeSession(domain.Identity{UID: uid}).SignOut(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetProfile returns the current user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.sessions.CurrentProfile(c.Request.Context(), auth.UserFirebaseUID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": p})
}

// UpdateProfile changes the display name and optionally the avatar.
func (h *Handler) UpdateProfile(c *gin.Context) {
	avatar, closeAvatar, err := upload.FormFile(c, "avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid avatar"})
		return
	}
	defer closeAvatar()

	uid := auth.UserFirebaseUID(c)
	res, err := h.sessions.ResumeSession(domain.Identity{UID: uid}).UpdateProfile(c.Request.Context(), c.PostForm("displayName"), avatar)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": res.Profile})
}

func writeError(c *gin.Context, err error) {
	var perr *domain.ProviderError
	var upErr *media.UploadError
	switch {
	case errors.As(err, &perr):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": perr.Message})
	case errors.As(err, &upErr):
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": upErr.Message})
	case errors.Is(err, domain.ErrMissingCredential):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}
