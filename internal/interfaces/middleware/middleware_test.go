package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jroneil/MI-Tool/pkg/auth"
	"github.com/jroneil/MI-Tool/pkg/constants"
	"github.com/stretchr/testify/assert"
)

type stubAuthenticator struct {
	session *auth.UserSession
	err     error
}

func (s stubAuthenticator) Authenticate(string) (*auth.UserSession, error) {
	return s.session, s.err
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	ok := stubAuthenticator{session: &auth.UserSession{ID: 7, Email: "ada@example.com"}}
	bad := stubAuthenticator{err: errors.New("Could not validate credentials")}

	tests := []struct {
		name       string
		authn      Authenticator
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", ok, "", http.StatusUnauthorized, "Not authenticated"},
		{"wrong scheme", ok, "Basic abc", http.StatusUnauthorized, "Invalid authorization header format"},
		{"rejected token", bad, "Bearer abc", http.StatusUnauthorized, "Could not validate credentials"},
		{"valid token", ok, "Bearer abc", http.StatusOK, `{"id":7}`},
		{"lowercase scheme", ok, "bearer abc", http.StatusOK, `{"id":7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(RequireAuth(tt.authn))
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestCors(t *testing.T) {
	r := newRouter(Cors([]string{"http://app.test"}))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://app.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.test", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := newRouter(RequestLogger())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(constants.HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(constants.HeaderRequestID))
}
