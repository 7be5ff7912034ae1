package entity

import "time"

// Tipos de movimiento del ledger de stock.
const (
	MovementRestock    = "restock"    // entrada de mercadería, suma stock
	MovementSale       = "sale"       // venta, resta stock y acumula sold/revenue
	MovementAdjustment = "adjustment" // corrección manual a un valor objetivo
)

// ValidMovementType reporta si t es uno de los tres tipos de movimiento.
func ValidMovementType(t string) bool {
	return t == MovementRestock || t == MovementSale || t == MovementAdjustment
}

// StockHistoryEntry entrada inmutable del ledger append-only de stock.
// Es la fuente de verdad para auditoría: cada mutación de un producto produce
// exactamente una entrada y (StockBefore, StockAfter) refleja la transición
// real. Quantity es magnitud positiva para restock y sale; para adjustment es
// el delta firmado (StockAfter - StockBefore) y puede ser negativo.
type StockHistoryEntry struct {
	ID          string
	ProductID   string // referencia débil: la entrada sobrevive al hard-delete del producto
	ProductName string // denormalizado al momento del movimiento, sobrevive renombres
	Type        string
	Quantity    int64
	StockBefore int64
	StockAfter  int64
	Notes       string // solo significativo en adjustment
	CreatedAt   time.Time
}
