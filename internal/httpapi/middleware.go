package httpapi

import (
	"net/http"

	"github.com/VitaminP8/threadly/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID помечает каждый запрос идентификатором (берет из заголовка или генерирует)
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// authenticate кладет userID из Bearer токена в контекст запроса; без токена пропускает
func authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok, err := auth.UserIDFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if ok {
			c.Request = c.Request.WithContext(auth.WithUserID(c.Request.Context(), userID))
		}
		c.Next()
	}
}

func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := auth.GetUserIDFromContext(c.Request.Context()); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) uint {
	id, _ := auth.GetUserIDFromContext(c.Request.Context())
	return id
}
