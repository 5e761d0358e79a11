package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/biztracker/internal/application/analytics"
	"github.com/jhoicas/biztracker/internal/application/dto"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen de inventario, compras y ventas
// @Description  lowStockThreshold reemplaza el umbral de cantidad configurado (0 usa el del servidor).
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        lowStockThreshold  query  number  false  "Umbral de stock bajo por cantidad"
// @Success      200  {object}  dto.Envelope[dto.DashboardSummaryDTO]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	threshold := c.QueryFloat("lowStockThreshold", 0)
	if threshold < 0 {
		return badRequest(c, "INVALID_PARAMS", "lowStockThreshold no puede ser negativo")
	}
	summary, err := h.uc.GetSummary(c.Context(), threshold)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DataEnvelope(summary))
}
