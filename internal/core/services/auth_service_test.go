package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbots/cost_of_sales_app/internal/apperrors"
	"github.com/ledgerbots/cost_of_sales_app/internal/platform/config"
	"github.com/ledgerbots/cost_of_sales_app/internal/utils"
)

func authTestConfig(t *testing.T, apiKey string) *config.Config {
	t.Helper()
	hash, err := utils.HashAPIKey(apiKey)
	require.NoError(t, err)
	return &config.Config{
		JWTSecret:         "test-secret",
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "cost-of-sales-app",
		APIKeyHash:        hash,
	}
}

func TestIssueToken_ValidKey(t *testing.T) {
	svc := NewAuthService(authTestConfig(t, "super-secret-key"))

	token, expiresAt, err := svc.IssueToken(context.Background(), "super-secret-key")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := utils.ParseAndValidateJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "cogs-bot", claims.Subject)
	assert.Equal(t, "cost-of-sales-app", claims.Issuer)
}

func TestIssueToken_InvalidKey(t *testing.T) {
	svc := NewAuthService(authTestConfig(t, "super-secret-key"))

	_, _, err := svc.IssueToken(context.Background(), "wrong-key")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestIssueToken_NoHashConfigured(t *testing.T) {
	svc := NewAuthService(&config.Config{JWTSecret: "test-secret", JWTExpiryDuration: time.Hour})

	_, _, err := svc.IssueToken(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
