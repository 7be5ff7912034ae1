package stock

import (
	"context"
	"time"

	"github.com/tu-usuario/inventario-pos/internal/domain/repository"
)

// Clock provee la hora actual. Inyectable para tests deterministas.
type Clock func() time.Time

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios
// atados a esa transacción. Garantiza que la mutación del producto y el append
// al ledger se confirmen (o reviertan) juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		products repository.ProductRepository,
		history repository.StockHistoryRepository,
	) error) error
}
