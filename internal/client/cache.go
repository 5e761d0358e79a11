package client

import (
	"strings"
	"sync"
)

// Cache caché de consultas por clave. Las entradas viven hasta que una mutación las invalida.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewCache crea una caché vacía.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]any)}
}

// Get devuelve el valor de key.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Set guarda v bajo key.
func (c *Cache) Set(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

// Invalidate borra cada clave y todas las que empiezan por ella seguida de ":".
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		for _, prefix := range keys {
			if k == prefix || strings.HasPrefix(k, prefix+":") {
				delete(c.entries, k)
				break
			}
		}
	}
}

// Len número de entradas.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Claves de la caché.
const keyRelationships = "relationships"

func lookupKey(direction, id, entityType, relType string) string {
	return strings.Join([]string{keyRelationships, direction, entityType, id, relType}, ":")
}

// entityListKey clave del listado de un tipo de entidad ("items", "purchases", ...).
func entityListKey(entityType string) string {
	return strings.ToLower(entityType) + "s"
}

// entityDetailKey clave del detalle de una entidad.
func entityDetailKey(entityType, id string) string {
	return strings.ToLower(entityType) + ":" + id
}
