package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-pos/internal/domain/entity"
)

// ProductSearch filtros explícitos para listar el catálogo.
type ProductSearch struct {
	Name      string // substring, case-insensitive
	IsActive  *bool  // nil = sin filtro
	SortBy    string // created_at | name | price | stock | sold
	SortOrder string // asc | desc
}

// DashboardTotals agregados sobre todos los productos para el dashboard.
// LowStockProducts cuenta activos con stock bajo el umbral fijo del dashboard,
// distinto del umbral configurable de ListLowStock.
type DashboardTotals struct {
	TotalProducts    int64
	ActiveProducts   int64
	LowStockProducts int64
	TotalRevenue     decimal.Decimal
	TotalStock       int64
	TotalSold        int64
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE). Usar solo
	// dentro de una transacción: serializa las mutaciones sobre el mismo producto.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, search ProductSearch, limit, offset int) ([]*entity.Product, error)
	Count(ctx context.Context, search ProductSearch) (int64, error)
	Delete(ctx context.Context, id string) error

	// Consultas de agregación para stats (solo lectura).
	ListLowStock(ctx context.Context, threshold int64) ([]*entity.Product, error)
	TopBySold(ctx context.Context, limit int) ([]*entity.Product, error)
	DashboardTotals(ctx context.Context) (*DashboardTotals, error)
}
