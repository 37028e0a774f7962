package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKey_Format(t *testing.T) {
	fullKey, prefix, keyHash, err := GenerateAPIKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(fullKey, "nh_"))
	assert.Len(t, fullKey, 35)
	assert.True(t, LooksLikeAPIKey(fullKey))
	assert.Equal(t, fullKey[:11]+"...", prefix)
	assert.Equal(t, HashAPIKey(fullKey), keyHash)
	assert.Len(t, keyHash, 64)
}

func TestHashAPIKey_Stable(t *testing.T) {
	assert.Equal(t, HashAPIKey("nh_abc"), HashAPIKey("nh_abc"))
	assert.NotEqual(t, HashAPIKey("nh_abc"), HashAPIKey("nh_abd"))
}

func TestGenerateAPIKey_Distinct(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		_, _, keyHash, err := GenerateAPIKey()
		require.NoError(t, err)
		_, dup := seen[keyHash]
		require.False(t, dup, "duplicate hash generated")
		seen[keyHash] = struct{}{}
	}
}

func TestLooksLikeAPIKey(t *testing.T) {
	cases := map[string]bool{
		"":                                     false,
		"nh_":                                  false,
		"sk_abcdefghijklmnopqrstuvwxyz012345":  false,
		"nh_ABCDEFGHIJKLMNOPQRSTUVWXYZ012345":  false,
		"nh_abcdefghijklmnopqrstuvwxyz012345":  true,
		"nh_abcdefghijklmnopqrstuvwxyz0123456": false,
	}
	for in, want := range cases {
		assert.Equal(t, want, LooksLikeAPIKey(in), in)
	}
}

func TestCentsToDollars(t *testing.T) {
	assert.Equal(t, "0.50", CentsToDollars(50))
	assert.Equal(t, "5.00", CentsToDollars(500))
	assert.Equal(t, "0.00", CentsToDollars(0))
	assert.Equal(t, "12.34", CentsToDollars(1234))
}
