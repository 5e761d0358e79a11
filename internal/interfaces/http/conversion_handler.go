package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/application/relationship"
	"github.com/jhoicas/biztracker/internal/domain/entity"
)

// ConversionHandler expone la migración de referencias legadas a relaciones.
// Estas rutas responden el objeto sin sobre {status, data}.
type ConversionHandler struct {
	converter *relationship.Converter
	jobs      *relationship.JobRunner
}

// NewConversionHandler construye el handler.
func NewConversionHandler(converter *relationship.Converter, jobs *relationship.JobRunner) *ConversionHandler {
	return &ConversionHandler{converter: converter, jobs: jobs}
}

// ConvertEntity godoc
// @Summary      Convertir referencias legadas de una entidad
// @Tags         conversion
// @Security     Bearer
// @Produce      json
// @Param        entityType  path  string  true  "Item | Purchase | Sale | Asset"
// @Param        entityId    path  string  true  "ID de la entidad"
// @Success      200  {object}  dto.ConversionResult
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/relationships/convert/{entityType}/{entityId} [post]
func (h *ConversionHandler) ConvertEntity(c *fiber.Ctx) error {
	et, err := entity.ParseEntityType(c.Params("entityType"))
	if err != nil {
		return respondError(c, err)
	}
	res, err := h.converter.ConvertEntity(c.Context(), et, c.Params("entityId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// ConvertAll godoc
// @Summary      Iniciar la conversión masiva (solo owner)
// @Description  Devuelve 202 con el ID del trabajo; el avance se consulta en /jobs/{jobId}.
// @Tags         conversion
// @Security     Bearer
// @Produce      json
// @Success      202  {object}  dto.ConvertAllResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/relationships/convert-all [post]
func (h *ConversionHandler) ConvertAll(c *fiber.Ctx) error {
	id, err := h.jobs.StartConvertAll(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ConvertAllResponse{JobID: id})
}

// JobStatus godoc
// @Summary      Estado de un trabajo de conversión
// @Tags         conversion
// @Security     Bearer
// @Produce      json
// @Param        jobId  path  string  true  "ID del trabajo"
// @Success      200  {object}  dto.JobStatusResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/relationships/jobs/{jobId} [get]
func (h *ConversionHandler) JobStatus(c *fiber.Ctx) error {
	job, err := h.jobs.Status(c.Context(), c.Params("jobId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToJobStatusResponse(job))
}
