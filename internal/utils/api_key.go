package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashAPIKey hashes a plaintext API key using bcrypt. Used to produce the
// API_KEY_HASH configuration value; the key itself is never stored.
func HashAPIKey(apiKey string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckAPIKeyHash compares a plaintext API key with a bcrypt hash.
func CheckAPIKeyHash(apiKey, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey)) == nil
}
