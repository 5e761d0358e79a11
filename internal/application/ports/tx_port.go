package ports

import (
	"context"

	"github.com/jhoicas/biztracker/internal/domain/repository"
)

// Repositories repositorios atados a una misma transacción.
type Repositories struct {
	Items         repository.ItemRepository
	Purchases     repository.PurchaseRepository
	Sales         repository.SaleRepository
	Assets        repository.AssetRepository
	Relationships repository.RelationshipRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que una compra/venta y sus relaciones se graben (o borren) juntas.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
}
