package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CronHandler struct {
	nightly NightlyRunner
	logger  *zap.Logger
}

func NewCronHandler(nightly NightlyRunner, logger *zap.Logger) *CronHandler {
	return &CronHandler{
		nightly: nightly,
		logger:  logger,
	}
}

// Nightly godoc
// @Summary Run the nightly job
// @Description FX rates, Trading 212 and every bank connection. Stage failures are reported, not fatal.
// @Tags cron
// @Produce json
// @Param token query string false "Cron secret (alternative to the x-cron-secret header)"
// @Success 200 {object} dto.NightlyResult
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/cron/nightly [get]
func (h *CronHandler) Nightly(c *fiber.Ctx) error {
	h.logger.Info("Nightly job triggered", zap.String("ip", c.IP()))
	return c.JSON(h.nightly.Run(c.Context()))
}
