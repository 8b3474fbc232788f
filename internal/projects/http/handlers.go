package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alightgram/alightgram-backend/internal/api/http/upload"
	"github.com/alightgram/alightgram-backend/internal/auth"
	"github.com/alightgram/alightgram-backend/internal/media"
	"github.com/alightgram/alightgram-backend/internal/projects/domain"
	"github.com/alightgram/alightgram-backend/internal/projects/service"
)

func (h *Handler) get(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) create(c *gin.Context) {
	vis, ok := parseVisibility(c.PostForm("visibility"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid visibility"})
		return
	}

	file, closeFile, err := upload.FormFile(c, "file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid file"})
		return
	}
	defer closeFile()
	video, closeVideo, err := upload.FormFile(c, "video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid video"})
		return
	}
	defer closeVideo()

	p, err := h.projects.Create(c.Request.Context(), auth.UserFirebaseUID(c), service.UploadRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Genre:       c.PostForm("genre"),
		AspectRatio: c.PostForm("aspectRatio"),
		Visibility:  vis,
		File:        file,
		Video:       video,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) edit(c *gin.Context) {
	vis, ok := parseVisibility(c.PostForm("visibility"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid visibility"})
		return
	}

	xmlFile, closeXML, err := upload.FormFile(c, "file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid file"})
		return
	}
	defer closeXML()
	video, closeVideo, err := upload.FormFile(c, "video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid video"})
		return
	}
	defer closeVideo()

	req := service.EditRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Genre:       c.PostForm("genre"),
		AspectRatio: c.PostForm("aspectRatio"),
		Visibility:  vis,
		Video:       video,
	}
	if xmlFile != nil {
		req.XML = xmlFile.Reader
	}

	p, err := h.projects.Edit(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) toggleLike(c *gin.Context) {
	st, err := h.likes.ToggleStored(c.Request.Context(), c.Param("id"), auth.UserFirebaseUID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "like": st})
}

func (h *Handler) download(c *gin.Context) {
	d, err := h.projects.Download(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if d.URL != "" {
		c.Redirect(http.StatusFound, d.URL)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+d.FileName+`"`)
	c.Data(http.StatusOK, "text/xml", []byte(d.Content))
}

func parseVisibility(s string) (domain.Visibility, bool) {
	if strings.TrimSpace(s) == "" {
		return "", true
	}
	return domain.ParseVisibility(s)
}

func writeError(c *gin.Context, err error) {
	var upErr *media.UploadError
	switch {
	case errors.Is(err, service.ErrSignInRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrInvalidProject), errors.Is(err, domain.ErrInvalidView):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNoFile):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.As(err, &upErr):
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": upErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}
