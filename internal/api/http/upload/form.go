// Package upload reads optional multipart file fields into media files.
package upload

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alightgram/alightgram-backend/internal/media"
)

// FormFile opens the multipart file in field. A missing field, or a request that is not
// multipart, yields a nil file and no error.
// The returned func closes the file and is always safe to call.
func FormFile(c *gin.Context, field string) (*media.File, func(), error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return media.OpenFileHeader(fh)
}
