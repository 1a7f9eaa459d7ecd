package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerbots/cost_of_sales_app/internal/apperrors"
	portssvc "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/services"
	"github.com/ledgerbots/cost_of_sales_app/internal/platform/config"
	"github.com/ledgerbots/cost_of_sales_app/internal/utils"
)

// tokenSubject identifies the bot principal in issued tokens. There are no
// user accounts; the API key is the only credential.
const tokenSubject = "cogs-bot"

type authService struct {
	cfg *config.Config
}

// NewAuthService creates the token-issuing service.
func NewAuthService(cfg *config.Config) portssvc.AuthSvc {
	return &authService{cfg: cfg}
}

var _ portssvc.AuthSvc = (*authService)(nil)

// IssueToken exchanges the bot API key for a short-lived JWT.
func (s *authService) IssueToken(_ context.Context, apiKey string) (string, time.Time, error) {
	if s.cfg.APIKeyHash == "" || !utils.CheckAPIKeyHash(apiKey, s.cfg.APIKeyHash) {
		return "", time.Time{}, fmt.Errorf("%w: invalid api key", apperrors.ErrUnauthorized)
	}

	expiresAt := time.Now().Add(s.cfg.JWTExpiryDuration)
	token, err := utils.GenerateJWT(tokenSubject, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}
