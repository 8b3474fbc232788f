package http

import "github.com/gin-gonic/gin"

// Middlewares are the per-route guards the project routes need.
type Middlewares struct {
	RequireUser  gin.HandlerFunc
	OptionalUser gin.HandlerFunc
	UploadLimit  gin.HandlerFunc
}

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup, mw Middlewares) {
	rg.GET("/stream", mw.OptionalUser, h.stream)
	rg.GET("/:id", mw.OptionalUser, h.get)
	rg.GET("/:id/download", mw.OptionalUser, h.download)

	rg.POST("", mw.RequireUser, mw.UploadLimit, h.create)
	rg.PUT("/:id", mw.RequireUser, mw.UploadLimit, h.edit)
	rg.DELETE("/:id", mw.RequireUser, h.delete)
	rg.POST("/:id/like", mw.RequireUser, h.toggleLike)
}
