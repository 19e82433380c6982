package registrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateToken()
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.NotContains(t, token, "/", "token must be URL-safe")
		assert.NotContains(t, token, "+", "token must be URL-safe")
		assert.NotContains(t, token, "=", "token carries no padding")
		assert.False(t, seen[token], "tokens must not repeat")
		seen[token] = true
	}
}
