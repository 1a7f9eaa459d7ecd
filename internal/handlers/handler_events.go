package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/services"
	"github.com/ledgerbots/cost_of_sales_app/internal/dto"
	"github.com/ledgerbots/cost_of_sales_app/internal/middleware"
)

// eventHandler handles ledger webhook events.
type eventHandler struct {
	eventService portssvc.EventSvc
}

func newEventHandler(eventService portssvc.EventSvc) *eventHandler {
	return &eventHandler{eventService: eventService}
}

// registerEventRoutes sets up the webhook route.
func registerEventRoutes(rg *gin.RouterGroup, eventService portssvc.EventSvc) {
	h := newEventHandler(eventService)
	rg.POST("/events", h.handleEvent)
}

// handleEvent godoc
// @Summary Process a ledger webhook event
// @Description Replicates checked financial purchases and sales of goods into the inventory book and flags accounts for rebuild when history changes.
// @Tags events
// @Accept json
// @Produce json
// @Param event body dto.EventRequest true "Webhook event"
// @Success 200 {object} dto.EventResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /events [post]
func (h *eventHandler) handleEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for handleEvent", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	action, err := h.eventService.HandleEvent(c.Request.Context(), req.ToDomainEvent())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to process event")
		return
	}

	if action == "" {
		c.JSON(http.StatusOK, dto.EventResponse{Processed: false})
		return
	}

	logger.Info("Event processed",
		slog.String("type", req.Type),
		slog.String("record_id", req.Record.RecordID),
		slog.String("action", action),
	)
	c.JSON(http.StatusOK, dto.EventResponse{Processed: true, Action: action})
}
