package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-with-enough-length-32"

func TestManagerGenerateValidate(t *testing.T) {
	manager := NewManager(testSecret, "garith", 7*24*time.Hour)

	t.Run("签发后可校验并还原声明", func(t *testing.T) {
		token, err := manager.Generate("user-1", "user@example.com", "user")
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := manager.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "user@example.com", claims.Email)
		assert.Equal(t, "user", claims.Nickname)
		assert.Equal(t, "garith", claims.Issuer)
		assert.Equal(t, "user-1", claims.Subject)
	})

	t.Run("篡改的令牌校验失败", func(t *testing.T) {
		token, err := manager.Generate("user-1", "user@example.com", "user")
		require.NoError(t, err)

		_, err = manager.Validate(token + "x")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("不同密钥签发的令牌校验失败", func(t *testing.T) {
		other := NewManager("another-secret-key-with-enough-length", "garith", time.Hour)
		token, err := other.Generate("user-1", "user@example.com", "user")
		require.NoError(t, err)

		_, err = manager.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("过期令牌校验失败", func(t *testing.T) {
		expired := NewManager(testSecret, "garith", -time.Minute)
		token, err := expired.Generate("user-1", "user@example.com", "user")
		require.NoError(t, err)

		_, err = manager.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("非法格式的令牌校验失败", func(t *testing.T) {
		_, err := manager.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestManagerExpiry(t *testing.T) {
	manager := NewManager(testSecret, "garith", 168*time.Hour)
	assert.Equal(t, 168*time.Hour, manager.Expiry())
}
