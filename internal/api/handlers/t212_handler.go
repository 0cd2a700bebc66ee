package handlers

import (
	"errors"
	"fmt"

	"finsync/internal/clients/trading212"
	"finsync/internal/dto"
	"finsync/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type T212Handler struct {
	t212   T212Syncer
	logger *zap.Logger
}

func NewT212Handler(t212 T212Syncer, logger *zap.Logger) *T212Handler {
	return &T212Handler{
		t212:   t212,
		logger: logger,
	}
}

// Sync godoc
// @Summary Sync the Trading 212 portfolio
// @Description Store positions, cash and today's snapshot
// @Tags trading212
// @Produce json
// @Success 200 {object} dto.T212SyncResult
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/integrations/t212/sync [post]
func (h *T212Handler) Sync(c *fiber.Ctx) error {
	total, err := h.t212.Sync(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.T212SyncResult{OK: true, Total: total})
}

// Portfolio godoc
// @Summary Live Trading 212 positions
// @Tags trading212
// @Produce json
// @Success 200 {array} trading212.Position
// @Failure 500 {object} dto.ErrorResponse
// @Failure 502 {object} dto.T212ErrorResponse
// @Router /api/v1/integrations/t212/portfolio [get]
func (h *T212Handler) Portfolio(c *fiber.Ctx) error {
	positions, err := h.t212.CachedPortfolio(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(positions)
}

// Cash godoc
// @Summary Live Trading 212 cash
// @Tags trading212
// @Produce json
// @Success 200 {object} trading212.Cash
// @Failure 500 {object} dto.ErrorResponse
// @Failure 502 {object} dto.T212ErrorResponse
// @Router /api/v1/integrations/t212/cash [get]
func (h *T212Handler) Cash(c *fiber.Ctx) error {
	cash, err := h.t212.CachedCash(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(cash)
}

// Transactions godoc
// @Summary Trading 212 transaction history
// @Description One page of the account history, passed through as returned by Trading 212
// @Tags trading212
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Param time query string false "Page start time from nextPagePath"
// @Param cursor query string false "Page cursor from nextPagePath"
// @Success 200 {object} object
// @Failure 500 {object} dto.ErrorResponse
// @Failure 502 {object} dto.T212ErrorResponse
// @Router /api/v1/integrations/t212/transactions [get]
func (h *T212Handler) Transactions(c *fiber.Ctx) error {
	page, err := h.t212.History(c.Context(), trading212.HistoryQuery{
		Limit:  c.QueryInt("limit", trading212.DefaultHistoryLimit),
		Time:   c.Query("time"),
		Cursor: c.Query("cursor"),
	})
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(page)
}

// StoredCash godoc
// @Summary Last synced Trading 212 cash
// @Description Empty object before the first sync
// @Tags trading212
// @Produce json
// @Success 200 {object} models.T212Cash
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/integrations/t212/db/cash [get]
func (h *T212Handler) StoredCash(c *fiber.Ctx) error {
	cash, err := h.t212.StoredCash(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	if cash == nil {
		return c.JSON(fiber.Map{})
	}
	return c.JSON(cash)
}

// Snapshots godoc
// @Summary Daily Trading 212 totals
// @Tags trading212
// @Produce json
// @Success 200 {array} models.T212Snapshot
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/integrations/t212/db/snapshots [get]
func (h *T212Handler) Snapshots(c *fiber.Ctx) error {
	snapshots, err := h.t212.Snapshots(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snapshots)
}

func (h *T212Handler) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrT212NotConfigured) {
		return errorJSON(c, fiber.StatusInternalServerError, "Missing T212_API_KEY")
	}

	var apiErr *trading212.APIError
	if errors.As(err, &apiErr) {
		h.logger.Warn("Trading 212 upstream error", zap.Int("status", apiErr.StatusCode), zap.String("path", apiErr.Path))
		return c.Status(fiber.StatusBadGateway).JSON(dto.T212ErrorResponse{
			Error:   fmt.Sprintf("T212 error %d", apiErr.StatusCode),
			Details: apiErr.Body,
		})
	}

	h.logger.Error("Trading 212 request failed", zap.Error(err))
	return errorJSON(c, fiber.StatusInternalServerError, err.Error())
}
