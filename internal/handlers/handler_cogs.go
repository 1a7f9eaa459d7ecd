package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ledgerbots/cost_of_sales_app/internal/apperrors"
	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
	portssvc "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/services"
	"github.com/ledgerbots/cost_of_sales_app/internal/dto"
	"github.com/ledgerbots/cost_of_sales_app/internal/middleware"
)

// cogsHandler handles HTTP requests for cost of sales calculations.
type cogsHandler struct {
	cogsService portssvc.CostOfSalesSvc
}

func newCOGSHandler(cogsService portssvc.CostOfSalesSvc) *cogsHandler {
	return &cogsHandler{cogsService: cogsService}
}

// registerCOGSRoutes sets up the calculation and validation routes.
// Calculation runs are expensive, so the endpoint is rate limited per IP.
func registerCOGSRoutes(rg *gin.RouterGroup, cogsService portssvc.CostOfSalesSvc) {
	h := newCOGSHandler(cogsService)

	rate, _ := limiter.NewRateFromFormatted("30-M")
	calcLimiter := limiter.New(memory.NewStore(), rate)

	books := rg.Group("/books/:bookID")
	{
		books.POST("/accounts/:accountID/cogs", middleware.RateLimit(calcLimiter), h.calculateCostOfSales)
		books.POST("/validate", h.validate)
	}
}

// calculateCostOfSales godoc
// @Summary Calculate cost of sales for a good account
// @Description Runs FIFO matching of unchecked sales against purchases on the inventory book and posts cost-of-sale records into the matching financial book.
// @Tags cogs
// @Accept json
// @Produce json
// @Param bookID path string true "Inventory book ID"
// @Param accountID path string true "Good account ID"
// @Param request body dto.CalculateCOGSRequest false "Optional cut-off date"
// @Success 200 {object} dto.SummaryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} dto.SummaryResponse "A record was locked by a concurrent process"
// @Failure 422 {object} dto.SummaryResponse "Sale quantity exceeds purchase quantity"
// @Failure 502 {object} ErrorResponse "Record store failure"
// @Router /books/{bookID}/accounts/{accountID}/cogs [post]
func (h *cogsHandler) calculateCostOfSales(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	bookID := c.Param("bookID")
	accountID := c.Param("accountID")

	var req dto.CalculateCOGSRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for calculateCostOfSales", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
			return
		}
	}

	summary, err := h.cogsService.CalculateCostOfSales(c.Request.Context(), bookID, accountID, req.ToDateValue())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to calculate cost of sales")
		return
	}

	status := http.StatusOK
	switch summary.Result {
	case domain.SummaryLockError:
		status = http.StatusConflict
	case domain.SummaryQuantityError:
		status = http.StatusUnprocessableEntity
	}

	logger.Info("Cost of sales calculation finished",
		slog.String("book_id", bookID),
		slog.String("account_id", accountID),
		slog.String("result", string(summary.Result)),
	)
	c.JSON(status, dto.ToSummaryResponse(summary))
}

// validate godoc
// @Summary Check a book is ready for calculation
// @Description Fails while the inventory book still has pending background tasks.
// @Tags cogs
// @Produce json
// @Param bookID path string true "Inventory book ID"
// @Success 200 {object} dto.ValidateResponse
// @Failure 400 {object} ErrorResponse "Book still has pending tasks"
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /books/{bookID}/validate [post]
func (h *cogsHandler) validate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	bookID := c.Param("bookID")

	if err := h.cogsService.Validate(c.Request.Context(), bookID); err != nil {
		respondServiceError(c, logger, err, "Validation failed")
		return
	}

	c.JSON(http.StatusOK, dto.ValidateResponse{BookID: bookID, Status: "ready"})
}

// respondServiceError maps service-layer errors to HTTP statuses.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrRemote):
		logger.Error("Record store failure", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Record store operation failed"})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}
