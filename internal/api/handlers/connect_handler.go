package handlers

import (
	"errors"
	"net/url"

	"finsync/internal/dto"
	"finsync/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ConnectHandler serves the institution list and the consent flow of a new bank connection.
type ConnectHandler struct {
	connections ConnectionManager
	logger      *zap.Logger
}

func NewConnectHandler(connections ConnectionManager, logger *zap.Logger) *ConnectHandler {
	return &ConnectHandler{
		connections: connections,
		logger:      logger,
	}
}

// ListInstitutions godoc
// @Summary List aggregator institutions
// @Description Fetch institutions for the configured country and store them
// @Tags institutions
// @Produce json
// @Success 200 {array} dto.InstitutionResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/institutions [get]
func (h *ConnectHandler) ListInstitutions(c *fiber.Ctx) error {
	institutions, err := h.connections.ListInstitutions(c.Context())
	if err != nil {
		h.logger.Error("Failed to list institutions", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	resp := make([]dto.InstitutionResponse, 0, len(institutions))
	for _, inst := range institutions {
		resp = append(resp, dto.InstitutionResponse{
			ID:      inst.ID,
			Name:    inst.Name,
			Country: inst.CountryCode(),
			Logo:    inst.Logo,
			Website: inst.Website,
		})
	}
	return c.JSON(resp)
}

// StoredInstitutions godoc
// @Summary List stored institutions
// @Tags institutions
// @Produce json
// @Success 200 {array} models.Institution
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/institutions/db [get]
func (h *ConnectHandler) StoredInstitutions(c *fiber.Ctx) error {
	institutions, err := h.connections.StoredInstitutions(c.Context())
	if err != nil {
		h.logger.Error("Failed to load institutions", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Internal Server Error")
	}
	return c.JSON(institutions)
}

// Start godoc
// @Summary Start a bank connection
// @Description Create a requisition and return the consent redirect
// @Tags connect
// @Accept json
// @Produce json
// @Param request body dto.StartConnectionRequest true "Institution and redirect URL"
// @Success 200 {object} dto.StartConnectionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/connect/gc/start [post]
func (h *ConnectHandler) Start(c *fiber.Ctx) error {
	var req dto.StartConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	started, err := h.connections.StartConnection(c.Context(), req.InstitutionID, req.RedirectURL)
	if err != nil {
		if errors.Is(err, service.ErrMissingStartArgs) {
			return errorJSON(c, fiber.StatusBadRequest, "Missing institutionId or redirectUrl")
		}
		h.logger.Error("Failed to start connection", zap.String("institution_id", req.InstitutionID), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(dto.StartConnectionResponse{
		Redirect:      started.Redirect,
		RequisitionID: started.ConnectionID,
	})
}

// Callback godoc
// @Summary Consent callback
// @Description Finalize the requisition and redirect back to the bank settings page
// @Tags connect
// @Param requisition_id query string false "Requisition id"
// @Param ref query string false "Requisition reference (aggregator redirect)"
// @Success 302
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/connect/gc/callback [get]
func (h *ConnectHandler) Callback(c *fiber.Ctx) error {
	requisitionID := c.Query("requisition_id")
	if requisitionID == "" {
		requisitionID = c.Query("requisitionId")
	}
	if requisitionID == "" {
		requisitionID = c.Query("ref")
	}
	if requisitionID == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Missing requisitionId")
	}

	if _, err := h.connections.FinalizeConnection(c.Context(), requisitionID); err != nil {
		h.logger.Error("Failed to finalize connection", zap.String("requisition_id", requisitionID), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	query := url.Values{}
	query.Set("requisition_id", requisitionID)
	query.Set("tab", "bank")
	return c.Redirect("/settings?"+query.Encode(), fiber.StatusFound)
}
