package handlers

import (
	"errors"

	"finsync/internal/dto"
	"finsync/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SyncHandler struct {
	syncer    BankSyncer
	transfers TransferDetector
	logger    *zap.Logger
}

func NewSyncHandler(syncer BankSyncer, transfers TransferDetector, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		syncer:    syncer,
		transfers: transfers,
		logger:    logger,
	}
}

// Sync godoc
// @Summary Sync bank connections
// @Description Sync one requisition, or every stored connection when syncAll is set. Transfer detection runs afterwards.
// @Tags sync
// @Accept json
// @Produce json
// @Param request body dto.SyncRequest true "Requisition id or syncAll"
// @Success 200 {object} dto.SyncResult
// @Success 200 {object} dto.SyncAllResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/sync/gc [post]
func (h *SyncHandler) Sync(c *fiber.Ctx) error {
	var req dto.SyncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	if req.SyncAll {
		results, err := h.syncer.RunAll(c.Context())
		if err != nil {
			h.logger.Error("Sync-all failed", zap.Error(err))
			return errorJSON(c, fiber.StatusInternalServerError, "Internal Server Error")
		}
		return c.JSON(syncAllResponse(results))
	}

	if req.RequisitionID == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Missing requisitionId")
	}

	result, err := h.syncer.Run(c.Context(), req.RequisitionID)
	if err != nil {
		if errors.Is(err, service.ErrMissingConnectionID) {
			return errorJSON(c, fiber.StatusBadRequest, "Missing requisitionId")
		}
		h.logger.Error("Sync failed", zap.String("requisition_id", req.RequisitionID), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Internal Server Error")
	}
	return c.JSON(result)
}

// CronSync godoc
// @Summary Scheduled sync of every connection
// @Tags sync
// @Produce json
// @Param cron query string false "Must be true to run the sync"
// @Param token query string false "Cron secret (alternative to the x-cron-secret header)"
// @Success 200 {object} dto.CronSyncResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/sync/gc [get]
func (h *SyncHandler) CronSync(c *fiber.Ctx) error {
	if c.Query("cron") != "true" {
		return c.JSON(fiber.Map{"ok": true})
	}

	results, err := h.syncer.RunAll(c.Context())
	if err != nil {
		h.logger.Error("Cron sync failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Internal Server Error")
	}
	// synced counts attempted connections; per-connection outcomes are in the logs.
	return c.JSON(dto.CronSyncResponse{OK: true, Synced: len(results)})
}

// DetectTransfers godoc
// @Summary Detect internal transfers
// @Description Pair opposite movements of equal amount on the same day across accounts and mark them with the Transfer category
// @Tags transfers
// @Produce json
// @Success 200 {object} dto.DetectTransfersResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/transfers/detect [post]
func (h *SyncHandler) DetectTransfers(c *fiber.Ctx) error {
	marked, err := h.transfers.DetectAndMark(c.Context())
	if err != nil {
		h.logger.Error("Transfer detection failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Internal Server Error")
	}
	return c.JSON(dto.DetectTransfersResponse{OK: true, Marked: marked})
}

func syncAllResponse(results []dto.ConnectionSyncResult) dto.SyncAllResponse {
	resp := dto.SyncAllResponse{OK: true, Results: results}
	for _, r := range results {
		if r.OK {
			resp.Synced++
		}
	}
	if resp.Results == nil {
		resp.Results = []dto.ConnectionSyncResult{}
	}
	return resp
}
