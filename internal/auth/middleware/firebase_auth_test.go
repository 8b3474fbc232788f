package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	authctx "github.com/alightgram/alightgram-backend/internal/auth"
)

type fakeVerifier map[string]*auth.Token

func (f fakeVerifier) VerifyIDToken(_ context.Context, token string) (*auth.Token, error) {
	if t, ok := f[token]; ok {
		return t, nil
	}
	return nil, errors.New("bad token")
}

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": authctx.UserFirebaseUID(c), "email": authctx.UserEmail(c)})
	})
	return r
}

var verifier = fakeVerifier{
	"good": {UID: "u1", Claims: map[string]interface{}{"email": "a@b.com"}},
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	r := newRouter(FirebaseAuthMiddleware(verifier))

	tests := []struct {
		name   string
		target string
		header string
		code   int
		body   string
	}{
		{"missing token", "/me", "", http.StatusUnauthorized, `{"error":"missing authorization token","ok":false}`},
		{"invalid token", "/me", "Bearer bad", http.StatusUnauthorized, `{"error":"invalid token","ok":false}`},
		{"bearer token", "/me", "Bearer good", http.StatusOK, `{"email":"a@b.com","uid":"u1"}`},
		{"query token", "/me?access_token=good", "", http.StatusOK, `{"email":"a@b.com","uid":"u1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestOptionalFirebaseAuth(t *testing.T) {
	r := newRouter(OptionalFirebaseAuth(verifier))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":"","email":""}`, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":"","email":""}`, w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"uid":"u1","email":"a@b.com"}`, w.Body.String())
}
