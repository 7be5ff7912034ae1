package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxProductNameLength límite de caracteres del nombre de producto.
const MaxProductNameLength = 200

// Product representa un producto del catálogo (una sola bodega).
// Stock es el valor cacheado del StockAfter de la entrada más reciente del
// ledger: solo se modifica vía las tres mutaciones sancionadas del motor
// (restock, venta, ajuste). Sold y TotalRevenue son acumulados monótonos.
type Product struct {
	ID              string
	Name            string
	Price           decimal.Decimal // precio de venta, >= 0
	Stock           int64           // unidades en mano, nunca negativo
	Sold            int64           // unidades vendidas acumuladas
	TotalRevenue    decimal.Decimal // ingresos acumulados (qty * precio al momento de la venta)
	ImageURL        string          // metadatos de imagen; la subida/liberación del asset es externa
	ImagePublicID   string
	IsActive        bool // soft-delete: inactivo pero conserva historial
	LastRestockedAt *time.Time
	LastSoldAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
