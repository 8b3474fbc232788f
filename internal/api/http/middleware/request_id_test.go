package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/alightgram/alightgram-backend/internal/logging"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID(zap.NewNop()))
	r.GET("/x", func(c *gin.Context) {
		assert.NotNil(t, logging.FromContext(c.Request.Context()))
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("echoes incoming id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/x", nil)
		req.Header.Set("X-Request-Id", "rid-1")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, "rid-1", rr.Header().Get("X-Request-Id"))
		assert.Equal(t, "rid-1", rr.Body.String())
	})

	t.Run("generates id when missing", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", "/x", nil))
		assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
		assert.Equal(t, rr.Header().Get("X-Request-Id"), rr.Body.String())
	})
}
