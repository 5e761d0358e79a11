package client

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/domain/entity"
)

const relationshipsPath = "/relationships"

// Create publica un borrador de relación y devuelve la relación creada.
func (c *Client) Create(ctx context.Context, draft dto.CreateRelationshipRequest) (*entity.Relationship, error) {
	raw, err := c.do(ctx, http.MethodPost, relationshipsPath, draft)
	if err != nil {
		return nil, err
	}
	rel, err := unwrapOne[entity.Relationship](raw)
	if err != nil {
		return nil, newAPIError(0, nil, err)
	}
	c.afterMutation(&rel)
	return &rel, nil
}

// Update aplica un cambio parcial. Un id desconocido es un *APIError 404.
func (c *Client) Update(ctx context.Context, id string, patch dto.UpdateRelationshipRequest) (*entity.Relationship, error) {
	raw, err := c.do(ctx, http.MethodPatch, relationshipsPath+"/"+url.PathEscape(id), patch)
	if err != nil {
		return nil, err
	}
	rel, err := unwrapOne[entity.Relationship](raw)
	if err != nil {
		return nil, newAPIError(0, nil, err)
	}
	c.afterMutation(&rel)
	return &rel, nil
}

// Remove borra la relación id. Si la relación estaba en caché se invalidan también sus extremos.
func (c *Client) Remove(ctx context.Context, id string) (bool, error) {
	if _, err := c.do(ctx, http.MethodDelete, relationshipsPath+"/"+url.PathEscape(id), nil); err != nil {
		return false, err
	}
	detail := entityDetailKey("relationship", id)
	if cached, ok := c.cache.Get(detail); ok {
		if rel, ok := cached.(*entity.Relationship); ok {
			c.afterMutation(rel)
		}
	}
	c.cache.Invalidate(keyRelationships, detail)
	return true, nil
}

// Get lee una relación. Un id desconocido es un *APIError 404.
func (c *Client) Get(ctx context.Context, id string) (*entity.Relationship, error) {
	raw, err := c.do(ctx, http.MethodGet, relationshipsPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	rel, err := unwrapOne[entity.Relationship](raw)
	if err != nil {
		return nil, newAPIError(0, nil, err)
	}
	c.cache.Set(entityDetailKey("relationship", rel.ID), &rel)
	return &rel, nil
}

// GetByPrimary relaciones que salen de la entidad. Nunca devuelve error:
// ante fallos de transporte o de forma registra y devuelve un slice vacío.
func (c *Client) GetByPrimary(ctx context.Context, id string, t entity.EntityType, relType entity.RelationshipType) []entity.Relationship {
	return c.lookup(ctx, "primary", id, t, relType)
}

// GetBySecondary relaciones que llegan a la entidad. Mismo contrato que GetByPrimary.
func (c *Client) GetBySecondary(ctx context.Context, id string, t entity.EntityType, relType entity.RelationshipType) []entity.Relationship {
	return c.lookup(ctx, "secondary", id, t, relType)
}

func (c *Client) lookup(ctx context.Context, direction, id string, t entity.EntityType, relType entity.RelationshipType) []entity.Relationship {
	key := lookupKey(direction, id, string(t), string(relType))
	if cached, ok := c.cache.Get(key); ok {
		if rels, ok := cached.([]entity.Relationship); ok {
			return slices.Clone(rels)
		}
	}

	path := relationshipsPath + "/" + direction + "/" + url.PathEscape(id) + "/" + url.PathEscape(string(t))
	if relType != "" {
		path += "?relationshipType=" + url.QueryEscape(string(relType))
	}
	raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		c.log.Warn().Err(err).Str("direction", direction).Str("id", id).Str("type", string(t)).
			Msg("consulta de relaciones fallida")
		return []entity.Relationship{}
	}
	rels, err := unwrapList[entity.Relationship](raw)
	if err != nil {
		c.log.Warn().Err(err).Str("direction", direction).Str("id", id).Str("type", string(t)).
			Msg("respuesta de relaciones inesperada")
		return []entity.Relationship{}
	}
	c.cache.Set(key, slices.Clone(rels))
	return rels
}

// afterMutation invalida las consultas de relaciones y los listados y detalles de ambos extremos.
func (c *Client) afterMutation(rel *entity.Relationship) {
	keys := []string{keyRelationships}
	if rel != nil {
		keys = append(keys,
			entityListKey(string(rel.PrimaryType)),
			entityDetailKey(string(rel.PrimaryType), rel.PrimaryID),
			entityListKey(string(rel.SecondaryType)),
			entityDetailKey(string(rel.SecondaryType), rel.SecondaryID),
		)
	}
	c.cache.Invalidate(keys...)
	if rel != nil && rel.ID != "" {
		c.cache.Set(entityDetailKey("relationship", rel.ID), rel)
	}
}

// invalidateEntity invalida las consultas de relaciones de una entidad y su listado y detalle.
func (c *Client) invalidateEntity(id string, t entity.EntityType) {
	c.cache.Invalidate(
		keyRelationships,
		entityListKey(string(t)),
		entityDetailKey(string(t), id),
	)
}

// GetProductComponents materiales que usa el producto.
func (c *Client) GetProductComponents(ctx context.Context, productID string) []entity.Relationship {
	return c.GetByPrimary(ctx, productID, entity.EntityItem, entity.RelProductMaterial)
}

// GetProductsUsingMaterial productos que usan el material.
func (c *Client) GetProductsUsingMaterial(ctx context.Context, materialID string) []entity.Relationship {
	return c.GetBySecondary(ctx, materialID, entity.EntityItem, entity.RelProductMaterial)
}

// GetDerivedItems ítems derivados del ítem fuente.
func (c *Client) GetDerivedItems(ctx context.Context, sourceID string) []entity.Relationship {
	return c.GetByPrimary(ctx, sourceID, entity.EntityItem, entity.RelDerived)
}

// GetSourceForDerivedItem relación con la fuente del ítem derivado, o nil.
func (c *Client) GetSourceForDerivedItem(ctx context.Context, derivedID string) *entity.Relationship {
	rels := c.GetBySecondary(ctx, derivedID, entity.EntityItem, entity.RelDerived)
	if len(rels) == 0 {
		return nil
	}
	return &rels[0]
}

// GetPurchaseItems líneas de la compra.
func (c *Client) GetPurchaseItems(ctx context.Context, purchaseID string) []entity.Relationship {
	return c.GetByPrimary(ctx, purchaseID, entity.EntityPurchase, entity.RelPurchaseItem)
}

// GetItemPurchases compras en las que aparece el ítem.
func (c *Client) GetItemPurchases(ctx context.Context, itemID string) []entity.Relationship {
	return c.GetBySecondary(ctx, itemID, entity.EntityItem, entity.RelPurchaseItem)
}

// GetSaleItems líneas de la venta.
func (c *Client) GetSaleItems(ctx context.Context, saleID string) []entity.Relationship {
	return c.GetByPrimary(ctx, saleID, entity.EntitySale, entity.RelSaleItem)
}

// GetItemSales ventas en las que aparece el ítem.
func (c *Client) GetItemSales(ctx context.Context, itemID string) []entity.Relationship {
	return c.GetBySecondary(ctx, itemID, entity.EntityItem, entity.RelSaleItem)
}

// LinkProductMaterial crea la relación producto → material.
func (c *Client) LinkProductMaterial(ctx context.Context, productID, materialID string, in dto.LinkRequest) (*entity.Relationship, error) {
	return c.link(ctx, "product-material", productID, materialID, in)
}

// LinkPurchaseItem crea la relación compra → ítem.
func (c *Client) LinkPurchaseItem(ctx context.Context, purchaseID, itemID string, in dto.LinkRequest) (*entity.Relationship, error) {
	return c.link(ctx, "purchase-item", purchaseID, itemID, in)
}

// LinkSaleItem crea la relación venta → ítem.
func (c *Client) LinkSaleItem(ctx context.Context, saleID, itemID string, in dto.LinkRequest) (*entity.Relationship, error) {
	return c.link(ctx, "sale-item", saleID, itemID, in)
}

func (c *Client) link(ctx context.Context, shortcut, primaryID, secondaryID string, in dto.LinkRequest) (*entity.Relationship, error) {
	path := relationshipsPath + "/" + shortcut + "/" + url.PathEscape(primaryID) + "/" + url.PathEscape(secondaryID)
	raw, err := c.do(ctx, http.MethodPost, path, in)
	if err != nil {
		return nil, err
	}
	rel, err := unwrapOne[entity.Relationship](raw)
	if err != nil {
		return nil, newAPIError(0, nil, err)
	}
	c.afterMutation(&rel)
	return &rel, nil
}
