package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

// EntityType tipo de entidad de negocio en un extremo de una relación.
type EntityType string

const (
	EntityItem     EntityType = "Item"
	EntityPurchase EntityType = "Purchase"
	EntitySale     EntityType = "Sale"
	EntityAsset    EntityType = "Asset"
)

// ParseEntityType acepta el nombre exacto o en minúsculas/plural ("items", "purchase").
func ParseEntityType(s string) (EntityType, error) {
	switch s {
	case "Item", "item", "items":
		return EntityItem, nil
	case "Purchase", "purchase", "purchases":
		return EntityPurchase, nil
	case "Sale", "sale", "sales":
		return EntitySale, nil
	case "Asset", "asset", "assets":
		return EntityAsset, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedEntity, s)
}

// RelationshipType tipo de arista dirigida entre entidades.
type RelationshipType string

const (
	RelDerived         RelationshipType = "derived"
	RelProductMaterial RelationshipType = "product_material"
	RelPurchaseItem    RelationshipType = "purchase_item"
	RelPurchaseAsset   RelationshipType = "purchase_asset"
	RelSaleItem        RelationshipType = "sale_item"
)

// endpoints tipos (primario, secundario) permitidos por tipo de relación.
var endpoints = map[RelationshipType][2]EntityType{
	RelDerived:         {EntityItem, EntityItem},
	RelProductMaterial: {EntityItem, EntityItem},
	RelPurchaseItem:    {EntityPurchase, EntityItem},
	RelPurchaseAsset:   {EntityPurchase, EntityAsset},
	RelSaleItem:        {EntitySale, EntityItem},
}

// Endpoints devuelve los tipos de entidad primario y secundario de rt.
func (rt RelationshipType) Endpoints() (primary, secondary EntityType, ok bool) {
	e, ok := endpoints[rt]
	return e[0], e[1], ok
}

// Valid indica si rt es un tipo conocido.
func (rt RelationshipType) Valid() bool {
	_, ok := endpoints[rt]
	return ok
}

// Attributes bolsa de atributos propia de un tipo de relación (unión cerrada).
type Attributes interface {
	RelationshipType() RelationshipType
}

// PurchaseItemAttributes costos de una línea de compra.
type PurchaseItemAttributes struct {
	CostPerUnit  decimal.Decimal `json:"costPerUnit"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	OriginalCost decimal.Decimal `json:"originalCost"`
	Discount     decimal.Decimal `json:"discount"`
}

func (PurchaseItemAttributes) RelationshipType() RelationshipType { return RelPurchaseItem }

// SaleItemAttributes precios de una línea de venta.
type SaleItemAttributes struct {
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Discount   decimal.Decimal `json:"discount"`
}

func (SaleItemAttributes) RelationshipType() RelationshipType { return RelSaleItem }

// Relationship arista dirigida y tipada entre dos entidades de negocio.
// Attributes es *PurchaseItemAttributes para purchase_item, *SaleItemAttributes para sale_item
// y nil en cualquier otro caso.
type Relationship struct {
	ID            string
	PrimaryID     string
	PrimaryType   EntityType
	SecondaryID   string
	SecondaryType EntityType
	Type          RelationshipType
	Measurements  *measurement.Descriptor
	Attributes    Attributes
	IsLegacy      bool
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EdgeKey identidad lógica de una arista.
type EdgeKey struct {
	PrimaryID     string
	PrimaryType   EntityType
	SecondaryID   string
	SecondaryType EntityType
	Type          RelationshipType
}

// Key devuelve la identidad lógica de r.
func (r *Relationship) Key() EdgeKey {
	return EdgeKey{r.PrimaryID, r.PrimaryType, r.SecondaryID, r.SecondaryType, r.Type}
}

// PurchaseItem devuelve los atributos de compra si r es purchase_item.
func (r *Relationship) PurchaseItem() (*PurchaseItemAttributes, bool) {
	a, ok := r.Attributes.(*PurchaseItemAttributes)
	return a, ok && a != nil
}

// SaleItem devuelve los atributos de venta si r es sale_item.
func (r *Relationship) SaleItem() (*SaleItemAttributes, bool) {
	a, ok := r.Attributes.(*SaleItemAttributes)
	return a, ok && a != nil
}

// Validate comprueba tipo, extremos, atributos y medida.
func (r *Relationship) Validate() error {
	primary, secondary, ok := r.Type.Endpoints()
	if !ok {
		return fmt.Errorf("%w: tipo %q", domain.ErrInvalidRelationship, r.Type)
	}
	if r.PrimaryID == "" || r.SecondaryID == "" {
		return fmt.Errorf("%w: primaryId y secondaryId son requeridos", domain.ErrInvalidInput)
	}
	if r.PrimaryType != primary || r.SecondaryType != secondary {
		return fmt.Errorf("%w: %s requiere %s -> %s", domain.ErrInvalidRelationship, r.Type, primary, secondary)
	}
	if r.Type == RelDerived || r.Type == RelProductMaterial {
		if r.PrimaryID == r.SecondaryID {
			return fmt.Errorf("%w: un ítem no puede relacionarse consigo mismo", domain.ErrInvalidRelationship)
		}
	}
	if r.Attributes != nil && r.Attributes.RelationshipType() != r.Type {
		return domain.ErrAttributesMismatch
	}
	if r.Measurements != nil {
		if err := r.Measurements.Validate(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	}
	return nil
}

// relationshipJSON forma en el cable (camelCase, contrato del frontend).
type relationshipJSON struct {
	ID                     string                  `json:"id,omitempty"`
	LegacyID               string                  `json:"_id,omitempty"`
	PrimaryID              string                  `json:"primaryId"`
	PrimaryType            EntityType              `json:"primaryType"`
	SecondaryID            string                  `json:"secondaryId"`
	SecondaryType          EntityType              `json:"secondaryType"`
	RelationshipType       RelationshipType        `json:"relationshipType"`
	Measurements           *measurement.Descriptor `json:"measurements,omitempty"`
	PurchaseItemAttributes *PurchaseItemAttributes `json:"purchaseItemAttributes,omitempty"`
	SaleItemAttributes     *SaleItemAttributes     `json:"saleItemAttributes,omitempty"`
	IsLegacy               bool                    `json:"isLegacy"`
	Notes                  string                  `json:"notes,omitempty"`
	CreatedAt              *time.Time              `json:"createdAt,omitempty"`
	UpdatedAt              *time.Time              `json:"updatedAt,omitempty"`
}

// MarshalJSON serializa solo la bolsa de atributos del tipo de la relación.
func (r Relationship) MarshalJSON() ([]byte, error) {
	out := relationshipJSON{
		ID:               r.ID,
		PrimaryID:        r.PrimaryID,
		PrimaryType:      r.PrimaryType,
		SecondaryID:      r.SecondaryID,
		SecondaryType:    r.SecondaryType,
		RelationshipType: r.Type,
		Measurements:     r.Measurements,
		IsLegacy:         r.IsLegacy,
		Notes:            r.Notes,
	}
	if a, ok := r.PurchaseItem(); ok && r.Type == RelPurchaseItem {
		out.PurchaseItemAttributes = a
	}
	if a, ok := r.SaleItem(); ok && r.Type == RelSaleItem {
		out.SaleItemAttributes = a
	}
	if !r.CreatedAt.IsZero() {
		out.CreatedAt = &r.CreatedAt
	}
	if !r.UpdatedAt.IsZero() {
		out.UpdatedAt = &r.UpdatedAt
	}
	return json.Marshal(out)
}

// UnmarshalJSON ignora cualquier bolsa de atributos ajena al tipo declarado.
func (r *Relationship) UnmarshalJSON(data []byte) error {
	var in relationshipJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Relationship{
		ID:            in.ID,
		PrimaryID:     in.PrimaryID,
		PrimaryType:   in.PrimaryType,
		SecondaryID:   in.SecondaryID,
		SecondaryType: in.SecondaryType,
		Type:          in.RelationshipType,
		Measurements:  in.Measurements,
		IsLegacy:      in.IsLegacy,
		Notes:         in.Notes,
	}
	if r.ID == "" {
		r.ID = in.LegacyID
	}
	switch in.RelationshipType {
	case RelPurchaseItem:
		if in.PurchaseItemAttributes != nil {
			r.Attributes = in.PurchaseItemAttributes
		}
	case RelSaleItem:
		if in.SaleItemAttributes != nil {
			r.Attributes = in.SaleItemAttributes
		}
	}
	if in.CreatedAt != nil {
		r.CreatedAt = *in.CreatedAt
	}
	if in.UpdatedAt != nil {
		r.UpdatedAt = *in.UpdatedAt
	}
	return nil
}
