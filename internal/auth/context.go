package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const userIDKey = contextKey("userID")

// ErrNoSecret - JWT_SECRET не задан, проверить токен нечем
var ErrNoSecret = errors.New("JWT secret not set")

// Сохраняет userID в контексте
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Достает userID из контекста
func GetUserIDFromContext(ctx context.Context) (uint, error) {
	val := ctx.Value(userIDKey)
	id, ok := val.(uint)
	if !ok {
		return 0, errors.New("user ID not found in context")
	}
	return id, nil
}

// UserIDFromRequest достает userID из Bearer токена.
// ok == false, если токена нет или он невалиден; ошибка только при отсутствии секрета.
func UserIDFromRequest(r *http.Request) (uint, bool, error) {
	tokenStr := extractTokenFromHeader(r.Header.Get("Authorization"))
	if tokenStr == "" {
		return 0, false, nil
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return 0, false, ErrNoSecret
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, false, nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false, nil
	}

	idFloat, ok := claims["user_id"].(float64)
	if !ok || idFloat <= 0 {
		return 0, false, nil
	}
	return uint(idFloat), true, nil
}

func extractTokenFromHeader(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
