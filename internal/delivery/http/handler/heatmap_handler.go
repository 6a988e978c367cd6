package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/saferoute-service/internal/pkg/utils"
	"github.com/saferoute-service/internal/pkg/validator"
	"github.com/saferoute-service/internal/usecase"
	"github.com/saferoute-service/internal/usecase/dto"
	"go.uber.org/zap"
)

type HeatmapHandler struct {
	heatmapUC *usecase.HeatmapUseCase
	logger    *zap.Logger
}

func NewHeatmapHandler(heatmapUC *usecase.HeatmapUseCase, logger *zap.Logger) *HeatmapHandler {
	return &HeatmapHandler{
		heatmapUC: heatmapUC,
		logger:    logger,
	}
}

// GetHeatmap godoc
// @Summary Sample the crime density surface
// @Description Samples the smooth crime density surface over a bounding box as a row-major grid for map overlays
// @Tags Risk
// @Accept json
// @Produce json
// @Param request body dto.HeatmapRequest true "Heatmap request"
// @Success 200 {object} utils.SuccessResponse{data=dto.HeatmapResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/risk/heatmap [post]
func (h *HeatmapHandler) GetHeatmap(c *fiber.Ctx) error {
	var req dto.HeatmapRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.heatmapUC.GetHeatmap(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}
