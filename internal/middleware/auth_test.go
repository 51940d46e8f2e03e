package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/opsboard/backend/internal/testhelpers"
)

func authTestRouter(validator TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(validator), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.MustGet("user_id"),
			"username": c.GetString("username"),
		})
	})
	return r
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	r := authTestRouter(&testhelpers.StubTokenValidator{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	r := authTestRouter(&testhelpers.StubTokenValidator{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc123")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	r := authTestRouter(&testhelpers.StubTokenValidator{Err: assert.AnError})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	userID := uuid.New()
	r := authTestRouter(&testhelpers.StubTokenValidator{UserID: userID, Username: "jordanb", Role: "staff"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), "jordanb")
}
