package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueToken(t *testing.T) {
	t.Run("Issued token is accepted by the middleware parser", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "issue_secret")

		token, err := IssueToken(42, "alice")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		userID, ok, err := UserIDFromRequest(req)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, uint(42), userID)
	})

	t.Run("No secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := IssueToken(1, "bob")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET is not set")
	})
}
