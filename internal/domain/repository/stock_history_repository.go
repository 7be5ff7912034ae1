package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/inventario-pos/internal/domain/entity"
)

// HistoryFilter filtros explícitos para consultar el ledger. Campos vacíos o
// nil no filtran; From/To son inclusivos en ambos extremos.
type HistoryFilter struct {
	ProductID   string
	ProductName string // substring, case-insensitive
	Type        string
	From        *time.Time
	To          *time.Time
}

// TypeStat resultado crudo de la agregación del ledger por tipo de movimiento.
type TypeStat struct {
	Type     string
	Count    int64
	Quantity int64 // suma de Quantity de las entradas del tipo
}

// StockHistoryRepository define el puerto del ledger append-only (DIP).
// Las entradas nunca se actualizan ni se borran; los listados devuelven
// siempre orden CreatedAt descendente (más reciente primero).
type StockHistoryRepository interface {
	Create(ctx context.Context, entry *entity.StockHistoryEntry) error
	List(ctx context.Context, filter HistoryFilter, limit, offset int) ([]*entity.StockHistoryEntry, error)
	Count(ctx context.Context, filter HistoryFilter) (int64, error)
	StatsByType(ctx context.Context, from, to *time.Time) ([]TypeStat, error)
}
