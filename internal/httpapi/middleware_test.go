package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whoamiRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(authenticate())
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": currentUser(c)})
	})
	r.GET("/private", requireUser(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	t.Setenv("JWT_SECRET", "middleware_secret")
	r := whoamiRouter()

	get := func(path, authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", path, nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("Bearer token puts the user into the request context", func(t *testing.T) {
		w := get("/whoami", "Bearer "+token(t, 9))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":9}`, w.Body.String())

		assert.Equal(t, http.StatusNoContent, get("/private", "Bearer "+token(t, 9)).Code)
	})

	t.Run("Anonymous and broken tokens pass through without a user", func(t *testing.T) {
		for _, header := range []string{"", "Bearer broken", "Token abc"} {
			w := get("/whoami", header)
			require.Equal(t, http.StatusOK, w.Code, header)
			assert.JSONEq(t, `{"user_id":0}`, w.Body.String())

			assert.Equal(t, http.StatusUnauthorized, get("/private", header).Code, header)
		}
	})

	t.Run("Missing secret is a server error", func(t *testing.T) {
		tok := token(t, 9)
		t.Setenv("JWT_SECRET", "")

		w := get("/whoami", "Bearer "+tok)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "JWT secret not set")
	})
}
