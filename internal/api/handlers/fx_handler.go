package handlers

import (
	"finsync/internal/dto"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type FXHandler struct {
	fx     FXSyncer
	logger *zap.Logger
}

func NewFXHandler(fx FXSyncer, logger *zap.Logger) *FXHandler {
	return &FXHandler{
		fx:     fx,
		logger: logger,
	}
}

// SyncCNB godoc
// @Summary Sync CNB exchange rates
// @Tags fx
// @Produce json
// @Success 200 {object} dto.FXSyncResult
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/fx/cnb/sync [post]
func (h *FXHandler) SyncCNB(c *fiber.Ctx) error {
	result, err := h.fx.SyncCNB(c.Context())
	if err != nil {
		h.logger.Error("CNB sync failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(result)
}

// Latest godoc
// @Summary Latest stored exchange rates
// @Tags fx
// @Produce json
// @Success 200 {object} dto.FXLatestResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/fx/latest [get]
func (h *FXHandler) Latest(c *fiber.Ctx) error {
	rates, err := h.fx.Latest(c.Context())
	if err != nil {
		h.logger.Error("Failed to load latest rates", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	resp := dto.FXLatestResponse{Rates: rates}
	if len(rates) > 0 {
		resp.Date = &rates[0].Date
	}
	return c.JSON(resp)
}
