package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zemo-rentals/service-reservation/internal/auth"
)

func TestJWTManagerVerify(t *testing.T) {
	mgr := auth.NewJWTManager("test-secret", "zemo-identity")
	userID := uuid.New()

	t.Run("round trip", func(t *testing.T) {
		token, err := mgr.Generate(userID, auth.RoleRenter, time.Hour)
		require.NoError(t, err)

		claims, err := mgr.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, auth.RoleRenter, claims.Role)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		other := auth.NewJWTManager("other-secret", "zemo-identity")
		token, err := other.Generate(userID, auth.RoleHost, time.Hour)
		require.NoError(t, err)

		_, err = mgr.Verify(token)
		assert.Error(t, err)
	})

	t.Run("wrong issuer is rejected", func(t *testing.T) {
		other := auth.NewJWTManager("test-secret", "someone-else")
		token, err := other.Generate(userID, auth.RoleHost, time.Hour)
		require.NoError(t, err)

		_, err = mgr.Verify(token)
		assert.Error(t, err)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token, err := mgr.Generate(userID, auth.RoleRenter, -time.Minute)
		require.NoError(t, err)

		_, err = mgr.Verify(token)
		assert.Error(t, err)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := mgr.Verify("not.a.token")
		assert.Error(t, err)
	})
}
