package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/makkenzo/niches-hunter-api/internal/domain/apikey"
)

func generateRandomString(length int, alphabet string) (string, error) {
	base := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}

// GenerateAPIKey returns a new raw key, its display prefix and its hash.
// The raw key is shown to the owner once and never stored.
func GenerateAPIKey() (fullKey string, displayPrefix string, keyHash string, err error) {
	secret, err := generateRandomString(apikey.APIKeySecretLength, apikey.APIKeyAlphabet)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to generate secret: %w", err)
	}

	fullKey = apikey.APIKeyPrefix + secret

	return fullKey, DisplayPrefix(fullKey), HashAPIKey(fullKey), nil
}

func HashAPIKey(fullKey string) string {
	hashBytes := sha256.Sum256([]byte(fullKey))
	return hex.EncodeToString(hashBytes[:])
}

func DisplayPrefix(fullKey string) string {
	if len(fullKey) <= apikey.DisplayPrefixLength {
		return fullKey
	}
	return fullKey[:apikey.DisplayPrefixLength] + "..."
}

// LooksLikeAPIKey checks the fixed key format before any lookup is made.
func LooksLikeAPIKey(s string) bool {
	if len(s) != len(apikey.APIKeyPrefix)+apikey.APIKeySecretLength {
		return false
	}
	if s[:len(apikey.APIKeyPrefix)] != apikey.APIKeyPrefix {
		return false
	}
	for _, r := range s[len(apikey.APIKeyPrefix):] {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// GenerateToken returns a random hex token and its sha256 hash.
func GenerateToken(nBytes int) (token string, tokenHash string, err error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(b)
	return token, HashAPIKey(token), nil
}
