package http

import "github.com/gin-gonic/gin"

// Register attaches session and profile routes. requireUser guards the routes that act on
// the signed-in user; uploadLimit guards the routes that accept an avatar.
func (h *Handler) Register(rg *gin.RouterGroup, requireUser, uploadLimit gin.HandlerFunc) {
	rg.POST("/signin", h.SignIn)
	rg.POST("/google", h.SignInWithGoogle)
	rg.POST("/signup", uploadLimit, h.SignUp)
	rg.POST("/signout", requireUser, h.SignOut)
	rg.GET("/profile", requireUser, h.GetProfile)
	rg.PUT("/profile", requireUser, uploadLimit, h.UpdateProfile)
}
