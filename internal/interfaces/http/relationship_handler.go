package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/application/relationship"
	"github.com/jhoicas/biztracker/internal/domain/entity"
)

// RelationshipHandler maneja las peticiones HTTP del grafo de relaciones (protegido).
type RelationshipHandler struct {
	store *relationship.Store
}

// NewRelationshipHandler construye el handler.
func NewRelationshipHandler(store *relationship.Store) *RelationshipHandler {
	return &RelationshipHandler{store: store}
}

// List godoc
// @Summary      Listar relaciones
// @Tags         relationships
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(50)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.Envelope[[]entity.Relationship]
// @Router       /api/relationships [get]
func (h *RelationshipHandler) List(c *fiber.Ctx) error {
	page, ok, err := parsePage(c)
	if !ok {
		return err
	}
	list, err := h.store.List(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ListEnvelope(list))
}

// Create godoc
// @Summary      Crear relación
// @Tags         relationships
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRelationshipRequest  true  "Borrador de relación"
// @Success      201   {object}  dto.Envelope[entity.Relationship]
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/relationships [post]
func (h *RelationshipHandler) Create(c *fiber.Ctx) error {
	in, ok, err := parseBody[dto.CreateRelationshipRequest](c)
	if !ok {
		return err
	}
	rel, err := h.store.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DataEnvelope(rel))
}

// GetByID godoc
// @Summary      Obtener relación por ID
// @Tags         relationships
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la relación"
// @Success      200  {object}  dto.Envelope[entity.Relationship]
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/relationships/{id} [get]
func (h *RelationshipHandler) GetByID(c *fiber.Ctx) error {
	rel, err := h.store.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DataEnvelope(rel))
}

// Update godoc
// @Summary      Actualizar relación (medida, atributos, notas)
// @Tags         relationships
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la relación"
// @Param        body  body  dto.UpdateRelationshipRequest  true  "Cambios"
// @Success      200   {object}  dto.Envelope[entity.Relationship]
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/relationships/{id} [patch]
func (h *RelationshipHandler) Update(c *fiber.Ctx) error {
	in, ok, err := parseBody[dto.UpdateRelationshipRequest](c)
	if !ok {
		return err
	}
	rel, err := h.store.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DataEnvelope(rel))
}

// Delete godoc
// @Summary      Eliminar relación
// @Tags         relationships
// @Security     Bearer
// @Param        id   path  string  true  "ID de la relación"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/relationships/{id} [delete]
func (h *RelationshipHandler) Delete(c *fiber.Ctx) error {
	if err := h.store.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ByPrimary godoc
// @Summary      Relaciones donde la entidad es el extremo primario
// @Tags         relationships
// @Security     Bearer
// @Produce      json
// @Param        id                path   string  true   "ID de la entidad"
// @Param        type              path   string  true   "Item | Purchase | Sale | Asset"
// @Param        relationshipType  query  string  false  "Filtro por tipo de relación"
// @Success      200  {object}  dto.Envelope[[]entity.Relationship]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/relationships/primary/{id}/{type} [get]
func (h *RelationshipHandler) ByPrimary(c *fiber.Ctx) error {
	et, err := entity.ParseEntityType(c.Params("type"))
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.store.ByPrimary(c.Context(), c.Params("id"), et, entity.RelationshipType(c.Query("relationshipType")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ListEnvelope(list))
}

// BySecondary godoc
// @Summary      Relaciones donde la entidad es el extremo secundario
// @Tags         relationships
// @Security     Bearer
// @Produce      json
// @Param        id                path   string  true   "ID de la entidad"
// @Param        type              path   string  true   "Item | Purchase | Sale | Asset"
// @Param        relationshipType  query  string  false  "Filtro por tipo de relación"
// @Success      200  {object}  dto.Envelope[[]entity.Relationship]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/relationships/secondary/{id}/{type} [get]
func (h *RelationshipHandler) BySecondary(c *fiber.Ctx) error {
	et, err := entity.ParseEntityType(c.Params("type"))
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.store.BySecondary(c.Context(), c.Params("id"), et, entity.RelationshipType(c.Query("relationshipType")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ListEnvelope(list))
}

// LinkProductMaterial godoc
// @Summary      Enlazar producto con material
// @Tags         relationships
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId   path  string  true  "ID del producto"
// @Param        materialId  path  string  true  "ID del material"
// @Param        body        body  dto.LinkRequest  false  "Medida y notas"
// @Success      201  {object}  dto.Envelope[entity.Relationship]
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/relationships/product-material/{productId}/{materialId} [post]
func (h *RelationshipHandler) LinkProductMaterial(c *fiber.Ctx) error {
	return h.link(c, "productId", "materialId", h.store.LinkProductMaterial)
}

// LinkPurchaseItem godoc
// @Summary      Enlazar compra con ítem
// @Tags         relationships
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        purchaseId  path  string  true  "ID de la compra"
// @Param        itemId      path  string  true  "ID del ítem"
// @Param        body        body  dto.LinkRequest  false  "Medida, costos y notas"
// @Success      201  {object}  dto.Envelope[entity.Relationship]
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/relationships/purchase-item/{purchaseId}/{itemId} [post]
func (h *RelationshipHandler) LinkPurchaseItem(c *fiber.Ctx) error {
	return h.link(c, "purchaseId", "itemId", h.store.LinkPurchaseItem)
}

// LinkSaleItem godoc
// @Summary      Enlazar venta con ítem
// @Tags         relationships
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        saleId  path  string  true  "ID de la venta"
// @Param        itemId  path  string  true  "ID del ítem"
// @Param        body    body  dto.LinkRequest  false  "Medida, precios y notas"
// @Success      201  {object}  dto.Envelope[entity.Relationship]
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/relationships/sale-item/{saleId}/{itemId} [post]
func (h *RelationshipHandler) LinkSaleItem(c *fiber.Ctx) error {
	return h.link(c, "saleId", "itemId", h.store.LinkSaleItem)
}

type linkFunc func(ctx context.Context, primaryID, secondaryID string, in dto.LinkRequest) (*entity.Relationship, error)

func (h *RelationshipHandler) link(c *fiber.Ctx, primaryParam, secondaryParam string, fn linkFunc) error {
	var in dto.LinkRequest
	if len(c.Body()) > 0 {
		var ok bool
		var err error
		if in, ok, err = parseBody[dto.LinkRequest](c); !ok {
			return err
		}
	}
	rel, err := fn(c.Context(), c.Params(primaryParam), c.Params(secondaryParam), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DataEnvelope(rel))
}
