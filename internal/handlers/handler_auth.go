package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ledgerbots/cost_of_sales_app/internal/apperrors"
	portssvc "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/services"
	"github.com/ledgerbots/cost_of_sales_app/internal/dto"
	"github.com/ledgerbots/cost_of_sales_app/internal/middleware"
	"github.com/ledgerbots/cost_of_sales_app/internal/platform/config"
)

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	authService portssvc.AuthSvc
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as portssvc.AuthSvc) *AuthHandler {
	return &AuthHandler{authService: as}
}

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// registerAuthRoutes sets up the token exchange route.
func registerAuthRoutes(rg *gin.Engine, _ *config.Config, services *portssvc.ServiceContainer) {
	h := NewAuthHandler(services.Auth)

	// Rate limit: 5 requests per minute per IP
	rate, _ := limiter.NewRateFromFormatted("5-M")
	ipLimiter := limiter.New(memory.NewStore(), rate)

	auth := rg.Group("/api/v1/auth")
	{
		auth.POST("/token", middleware.RateLimit(ipLimiter), h.IssueToken)
	}
}

// IssueToken godoc
// @Summary Exchange the bot API key for a bearer token
// @Description Verifies the API key and returns a short-lived JWT.
// @Tags auth
// @Accept json
// @Produce json
// @Param token body dto.TokenRequest true "API Key"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	token, expiresAt, err := h.authService.IssueToken(c.Request.Context(), req.APIKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid API key"})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to issue token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{Token: token, ExpiresAt: expiresAt})
}
