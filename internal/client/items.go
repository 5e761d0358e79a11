package client

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/jhoicas/biztracker/internal/application/dto"
)

// itemsPageSize coincide con el máximo que acepta el servidor por página.
const itemsPageSize = 500

// maxItemPages corta el paginado si el servidor ignora offset.
const maxItemPages = 200

// ListItems inventario completo, recorriendo todas las páginas. Como toda consulta
// de listas, nunca devuelve error: ante un fallo registra y devuelve un slice vacío.
func (c *Client) ListItems(ctx context.Context) []dto.ItemResponse {
	key := entityListKey("item")
	if cached, ok := c.cache.Get(key); ok {
		if items, ok := cached.([]dto.ItemResponse); ok {
			return slices.Clone(items)
		}
	}

	items := []dto.ItemResponse{}
	for page := 0; ; page++ {
		if page == maxItemPages {
			c.log.Warn().Int("items", len(items)).Msg("listado de ítems truncado")
			break
		}
		path := fmt.Sprintf("/items?limit=%d&offset=%d", itemsPageSize, page*itemsPageSize)
		raw, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			c.log.Warn().Err(err).Int("offset", page*itemsPageSize).Msg("listado de ítems fallido")
			return []dto.ItemResponse{}
		}
		batch, err := unwrapList[dto.ItemResponse](raw)
		if err != nil {
			c.log.Warn().Err(err).Msg("respuesta de ítems inesperada")
			return []dto.ItemResponse{}
		}
		items = append(items, batch...)
		if len(batch) < itemsPageSize {
			break
		}
	}
	c.cache.Set(key, slices.Clone(items))
	return items
}
