// Package relationship contiene los casos de uso del grafo de relaciones entre entidades:
// creación validada, consultas por extremo, atajos de enlace y conversión de referencias legacy.
package relationship

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/application/ports"
	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

// Store casos de uso CRUD y de consulta sobre relaciones.
type Store struct {
	repos ports.Repositories
	log   zerolog.Logger
}

// NewStore construye el caso de uso.
func NewStore(repos ports.Repositories, log zerolog.Logger) *Store {
	return &Store{repos: repos, log: log.With().Str("component", "relationships").Logger()}
}

// Create valida el borrador y graba la relación.
func (s *Store) Create(ctx context.Context, in dto.CreateRelationshipRequest) (*entity.Relationship, error) {
	attrs, err := attributesFor(in.RelationshipType, in.PurchaseItemAttributes, in.SaleItemAttributes)
	if err != nil {
		return nil, err
	}
	rel := &entity.Relationship{
		PrimaryID:     in.PrimaryID,
		PrimaryType:   in.PrimaryType,
		SecondaryID:   in.SecondaryID,
		SecondaryType: in.SecondaryType,
		Type:          in.RelationshipType,
		Measurements:  in.Measurements,
		Attributes:    attrs,
		Notes:         in.Notes,
	}
	if err := Insert(ctx, s.repos, rel); err != nil {
		return nil, err
	}
	s.log.Info().Str("id", rel.ID).Str("type", string(rel.Type)).
		Str("primary", rel.PrimaryID).Str("secondary", rel.SecondaryID).Msg("relación creada")
	return rel, nil
}

// Insert valida rel, comprueba que ambos extremos existan y la graba con repos.
// Puede ejecutarse dentro de una transacción pasando los repositorios atados a ella.
func Insert(ctx context.Context, repos ports.Repositories, rel *entity.Relationship) error {
	if err := rel.Validate(); err != nil {
		return err
	}
	if err := entityExists(ctx, repos, rel.PrimaryID, rel.PrimaryType); err != nil {
		return err
	}
	if err := entityExists(ctx, repos, rel.SecondaryID, rel.SecondaryType); err != nil {
		return err
	}
	if rel.Type == entity.RelDerived {
		existing, err := repos.Relationships.ListBySecondary(ctx, rel.SecondaryID, entity.EntityItem, entity.RelDerived)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if e.PrimaryID == rel.PrimaryID {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("%w: %s ya deriva de %s", domain.ErrDerivedSourceExists, rel.SecondaryID, e.PrimaryID)
		}
	}
	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}
	return repos.Relationships.Create(ctx, rel)
}

// Update aplica un parche sobre medida, atributos y notas.
func (s *Store) Update(ctx context.Context, id string, in dto.UpdateRelationshipRequest) (*entity.Relationship, error) {
	rel, err := s.repos.Relationships.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, domain.ErrNotFound
	}
	if in.Measurements != nil {
		m := *in.Measurements
		rel.Measurements = &m
	}
	if in.PurchaseItemAttributes != nil || in.SaleItemAttributes != nil {
		attrs, err := attributesFor(rel.Type, in.PurchaseItemAttributes, in.SaleItemAttributes)
		if err != nil {
			return nil, err
		}
		rel.Attributes = attrs
	}
	if in.Notes != nil {
		rel.Notes = *in.Notes
	}
	if err := rel.Validate(); err != nil {
		return nil, err
	}
	if err := s.repos.Relationships.Update(ctx, rel); err != nil {
		return nil, err
	}
	return rel, nil
}

// Delete elimina una relación; domain.ErrNotFound si no existe.
func (s *Store) Delete(ctx context.Context, id string) error {
	found, err := s.repos.Relationships.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

// Get devuelve una relación; domain.ErrNotFound si no existe.
func (s *Store) Get(ctx context.Context, id string) (*entity.Relationship, error) {
	rel, err := s.repos.Relationships.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, domain.ErrNotFound
	}
	return rel, nil
}

// List lista relaciones paginadas.
func (s *Store) List(ctx context.Context, page dto.PageRequest) ([]*entity.Relationship, error) {
	page.DefaultPage()
	return s.repos.Relationships.List(ctx, page.Limit, page.Offset)
}

// ByPrimary relaciones cuyo extremo primario es (id, et); relType vacío = todas.
func (s *Store) ByPrimary(ctx context.Context, id string, et entity.EntityType, relType entity.RelationshipType) ([]*entity.Relationship, error) {
	if relType != "" && !relType.Valid() {
		return nil, fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, relType)
	}
	return s.repos.Relationships.ListByPrimary(ctx, id, et, relType)
}

// BySecondary relaciones cuyo extremo secundario es (id, et); relType vacío = todas.
func (s *Store) BySecondary(ctx context.Context, id string, et entity.EntityType, relType entity.RelationshipType) ([]*entity.Relationship, error) {
	if relType != "" && !relType.Valid() {
		return nil, fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, relType)
	}
	return s.repos.Relationships.ListBySecondary(ctx, id, et, relType)
}

// LinkProductMaterial enlaza un producto con uno de sus materiales.
func (s *Store) LinkProductMaterial(ctx context.Context, productID, materialID string, in dto.LinkRequest) (*entity.Relationship, error) {
	return s.Create(ctx, linkRequest(entity.RelProductMaterial, productID, materialID, in))
}

// LinkPurchaseItem enlaza una compra con un ítem comprado.
func (s *Store) LinkPurchaseItem(ctx context.Context, purchaseID, itemID string, in dto.LinkRequest) (*entity.Relationship, error) {
	return s.Create(ctx, linkRequest(entity.RelPurchaseItem, purchaseID, itemID, in))
}

// LinkSaleItem enlaza una venta con un ítem vendido.
func (s *Store) LinkSaleItem(ctx context.Context, saleID, itemID string, in dto.LinkRequest) (*entity.Relationship, error) {
	return s.Create(ctx, linkRequest(entity.RelSaleItem, saleID, itemID, in))
}

func linkRequest(rt entity.RelationshipType, primaryID, secondaryID string, in dto.LinkRequest) dto.CreateRelationshipRequest {
	primary, secondary, _ := rt.Endpoints()
	return dto.CreateRelationshipRequest{
		PrimaryID:              primaryID,
		PrimaryType:            primary,
		SecondaryID:            secondaryID,
		SecondaryType:          secondary,
		RelationshipType:       rt,
		Measurements:           in.Measurements,
		PurchaseItemAttributes: in.PurchaseItemAttributes,
		SaleItemAttributes:     in.SaleItemAttributes,
		Notes:                  in.Notes,
	}
}

// attributesFor elige la bolsa que corresponde a rt; una bolsa ajena es error.
func attributesFor(rt entity.RelationshipType, pia *entity.PurchaseItemAttributes, sia *entity.SaleItemAttributes) (entity.Attributes, error) {
	switch rt {
	case entity.RelPurchaseItem:
		if sia != nil {
			return nil, domain.ErrAttributesMismatch
		}
		if pia == nil {
			return nil, nil
		}
		c := *pia
		return &c, nil
	case entity.RelSaleItem:
		if pia != nil {
			return nil, domain.ErrAttributesMismatch
		}
		if sia == nil {
			return nil, nil
		}
		c := *sia
		return &c, nil
	default:
		if pia != nil || sia != nil {
			return nil, domain.ErrAttributesMismatch
		}
		return nil, nil
	}
}

func entityExists(ctx context.Context, repos ports.Repositories, id string, et entity.EntityType) error {
	var found bool
	switch et {
	case entity.EntityItem:
		v, err := repos.Items.GetByID(ctx, id)
		if err != nil {
			return err
		}
		found = v != nil
	case entity.EntityPurchase:
		v, err := repos.Purchases.GetByID(ctx, id)
		if err != nil {
			return err
		}
		found = v != nil
	case entity.EntitySale:
		v, err := repos.Sales.GetByID(ctx, id)
		if err != nil {
			return err
		}
		found = v != nil
	case entity.EntityAsset:
		v, err := repos.Assets.GetByID(ctx, id)
		if err != nil {
			return err
		}
		found = v != nil
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedEntity, et)
	}
	if !found {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, et, id)
	}
	return nil
}

func measurementPtr(d measurement.Descriptor) *measurement.Descriptor {
	if d.IsZero() {
		return nil
	}
	return &d
}
