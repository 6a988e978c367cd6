package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/saferoute-service/internal/delivery/http/middleware"
	"github.com/saferoute-service/internal/pkg/utils"
	"github.com/saferoute-service/internal/pkg/validator"
	"github.com/saferoute-service/internal/usecase"
	"github.com/saferoute-service/internal/usecase/dto"
	"go.uber.org/zap"
)

type RouteHandler struct {
	routeUC *usecase.RouteUseCase
	logger  *zap.Logger
}

func NewRouteHandler(routeUC *usecase.RouteUseCase, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{
		routeUC: routeUC,
		logger:  logger,
	}
}

// ComputeRoute godoc
// @Summary Compute a crime-aware walking route
// @Description Computes a walking route between two points that trades a small detour for lower crime exposure, alongside the plain shortest route and a comparison of the two
// @Tags Routes
// @Accept json
// @Produce json
// @Param request body dto.ComputeRouteRequest true "Route request"
// @Success 200 {object} utils.SuccessResponse{data=dto.ComputeRouteResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/routes/compute [post]
func (h *RouteHandler) ComputeRoute(c *fiber.Ctx) error {
	var req dto.ComputeRouteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	start := time.Now()
	result, err := h.routeUC.ComputeRoute(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	return utils.SendSuccess(c, result, &utils.Meta{
		RequestID: requestID,
		TimeMSec:  float64(time.Since(start).Microseconds()) / 1000.0,
	})
}

// GetHealth godoc
// @Summary Service health
// @Description Reports service status and the size of the loaded incident dataset
// @Tags Health
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.HealthResponse}
// @Router /api/v1/health [get]
func (h *RouteHandler) GetHealth(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.routeUC.GetHealth(c.Context()), nil)
}
