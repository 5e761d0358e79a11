package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

// errorMapping status HTTP y código por error de dominio; el primero que coincida gana.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDerivedSourceExists, fiber.StatusConflict, "DERIVED_SOURCE_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrInvalidRelationship, fiber.StatusBadRequest, "INVALID_RELATIONSHIP"},
	{domain.ErrAttributesMismatch, fiber.StatusBadRequest, "ATTRIBUTES_MISMATCH"},
	{domain.ErrUnsupportedEntity, fiber.StatusBadRequest, "UNSUPPORTED_ENTITY"},
	{measurement.ErrUnitMismatch, fiber.StatusBadRequest, "UNIT_MISMATCH"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// respondError traduce err al cuerpo {status:"error", code, message}.
// Los errores no mapeados se registran y se responden como 500 sin detalles internos.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(errorBody(m.code, err.Error()))
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(errorBody("INTERNAL", "error interno del servidor"))
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorBody(code, message))
}
