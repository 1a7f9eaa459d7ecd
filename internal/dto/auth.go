package dto

import "time"

// TokenRequest exchanges the bot API key for a bearer token.
type TokenRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
