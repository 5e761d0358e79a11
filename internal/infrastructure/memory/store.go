// Package memory implementa los puertos de persistencia sobre mapas en memoria.
// Se usa en pruebas y con STORE_DRIVER=memory para desarrollo local; no persiste entre reinicios.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/biztracker/internal/application/ports"
	"github.com/jhoicas/biztracker/internal/domain/entity"
)

type state struct {
	items         map[string]entity.Item
	purchases     map[string]entity.Purchase
	sales         map[string]entity.Sale
	assets        map[string]entity.Asset
	relationships map[string]entity.Relationship
	jobs          map[string]entity.ConversionJob
}

func newState() state {
	return state{
		items:         map[string]entity.Item{},
		purchases:     map[string]entity.Purchase{},
		sales:         map[string]entity.Sale{},
		assets:        map[string]entity.Asset{},
		relationships: map[string]entity.Relationship{},
		jobs:          map[string]entity.ConversionJob{},
	}
}

func (s state) clone() state {
	out := newState()
	for k, v := range s.items {
		out.items[k] = cloneItem(v)
	}
	for k, v := range s.purchases {
		out.purchases[k] = clonePurchase(v)
	}
	for k, v := range s.sales {
		out.sales[k] = cloneSale(v)
	}
	for k, v := range s.assets {
		out.assets[k] = v
	}
	for k, v := range s.relationships {
		out.relationships[k] = cloneRelationship(v)
	}
	for k, v := range s.jobs {
		out.jobs[k] = cloneJob(v)
	}
	return out
}

// Store estado compartido por todos los repositorios en memoria.
// Las escrituras y las transacciones se serializan; las lecturas son concurrentes.
type Store struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state state
	now   func() time.Time
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{state: newState(), now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.state)
}

func (s *Store) write(fn func(st *state) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.state)
}

// Items repositorio de ítems.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

// Purchases repositorio de compras.
func (s *Store) Purchases() *PurchaseRepo { return &PurchaseRepo{s: s} }

// Sales repositorio de ventas.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{s: s} }

// Assets repositorio de activos.
func (s *Store) Assets() *AssetRepo { return &AssetRepo{s: s} }

// Relationships repositorio de relaciones.
func (s *Store) Relationships() *RelationshipRepo { return &RelationshipRepo{s: s} }

// Jobs repositorio de trabajos de conversión.
func (s *Store) Jobs() *ConversionJobRepo { return &ConversionJobRepo{s: s} }

// Repositories agrupa los repositorios del store.
func (s *Store) Repositories() ports.Repositories {
	return ports.Repositories{
		Items:         s.Items(),
		Purchases:     s.Purchases(),
		Sales:         s.Sales(),
		Assets:        s.Assets(),
		Relationships: s.Relationships(),
	}
}

var _ ports.TxRunner = (*Store)(nil)

// Run ejecuta fn sobre una copia del estado y la publica solo si fn no devuelve error.
func (s *Store) Run(ctx context.Context, fn func(repos ports.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	tx := &Store{state: s.state.clone(), now: s.now}
	s.mu.RUnlock()

	if err := fn(tx.Repositories()); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = tx.state
	s.mu.Unlock()
	return nil
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

func sortByCreated[T any](list []*T, created func(*T) time.Time, id func(*T) string) {
	sort.Slice(list, func(i, j int) bool {
		ci, cj := created(list[i]), created(list[j])
		if ci.Equal(cj) {
			return id(list[i]) < id(list[j])
		}
		return ci.Before(cj)
	})
}
