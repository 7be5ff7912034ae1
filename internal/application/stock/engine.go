package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-pos/internal/domain"
	"github.com/tu-usuario/inventario-pos/internal/domain/entity"
	"github.com/tu-usuario/inventario-pos/internal/domain/repository"
)

// maxTxRetries reintentos ante conflictos de serialización antes de rendirse.
const maxTxRetries = 3

// Engine aplica las tres mutaciones sancionadas de stock (restock, venta,
// ajuste) de forma transaccional: bloquea la fila del producto
// (SELECT FOR UPDATE), valida, muta y agrega exactamente una entrada al
// ledger dentro de la misma transacción. Mutaciones concurrentes sobre el
// mismo producto serializan en el lock de fila; productos distintos no se
// bloquean entre sí.
type Engine struct {
	txRunner TxRunner
	clock    Clock
}

// NewEngine construye el motor. clock nil usa time.Now.
func NewEngine(txRunner TxRunner, clock Clock) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{txRunner: txRunner, clock: clock}
}

// Restock suma quantity (> 0) al stock del producto y registra la entrada
// {restock, quantity, stockBefore, stockAfter}. Devuelve el producto actualizado.
func (e *Engine) Restock(ctx context.Context, productID string, quantity int64) (*entity.Product, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return e.mutate(ctx, productID, func(p *entity.Product, now time.Time) (*entity.StockHistoryEntry, error) {
		before := p.Stock
		p.Stock += quantity
		p.LastRestockedAt = &now
		return newEntry(p, entity.MovementRestock, quantity, before, now, ""), nil
	})
}

// RecordSale registra una venta: resta quantity (> 0) del stock, acumula Sold
// y TotalRevenue (quantity * precio vigente) y agrega la entrada de ledger.
// Falla con ErrProductInactive sobre productos desactivados y con
// ErrInsufficientStock si quantity excede el stock actual.
func (e *Engine) RecordSale(ctx context.Context, productID string, quantity int64) (*entity.Product, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return e.mutate(ctx, productID, func(p *entity.Product, now time.Time) (*entity.StockHistoryEntry, error) {
		if !p.IsActive {
			return nil, domain.ErrProductInactive
		}
		if p.Stock < quantity {
			return nil, domain.ErrInsufficientStock
		}
		before := p.Stock
		p.Stock -= quantity
		p.Sold += quantity
		p.TotalRevenue = p.TotalRevenue.Add(p.Price.Mul(decimal.NewFromInt(quantity)))
		p.LastSoldAt = &now
		// La cantidad de venta se registra como magnitud positiva; la
		// dirección la da el tipo de movimiento.
		return newEntry(p, entity.MovementSale, quantity, before, now, ""), nil
	})
}

// AdjustStock fija el stock a newStock (>= 0) como corrección manual. No toca
// Sold ni TotalRevenue. La entrada registra el delta firmado
// (newStock - stockBefore), que puede ser negativo, junto con las notas.
func (e *Engine) AdjustStock(ctx context.Context, productID string, newStock int64, notes string) (*entity.Product, error) {
	if newStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	return e.mutate(ctx, productID, func(p *entity.Product, now time.Time) (*entity.StockHistoryEntry, error) {
		before := p.Stock
		p.Stock = newStock
		return newEntry(p, entity.MovementAdjustment, newStock-before, before, now, notes), nil
	})
}

// mutationFn muta el producto ya bloqueado y devuelve la entrada de ledger a
// agregar. Los timestamps del producto corren con el mismo now de la entrada.
type mutationFn func(p *entity.Product, now time.Time) (*entity.StockHistoryEntry, error)

// mutate carga el producto con lock de fila, aplica fn y persiste producto +
// entrada de ledger en la misma transacción. Si el append al ledger falla, la
// transacción revierte la mutación del producto y el error se reporta como
// ErrInconsistentLedger para que la capa superior lo haga visible.
func (e *Engine) mutate(ctx context.Context, productID string, fn mutationFn) (*entity.Product, error) {
	var updated *entity.Product
	err := e.runSerialized(ctx, func(
		products repository.ProductRepository,
		history repository.StockHistoryRepository,
	) error {
		p, err := products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		now := e.clock()
		entry, err := fn(p, now)
		if err != nil {
			return err
		}
		p.UpdatedAt = now
		if err := products.Update(ctx, p); err != nil {
			return err
		}
		if err := history.Create(ctx, entry); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInconsistentLedger, err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// runSerialized ejecuta la transacción con reintentos acotados ante conflictos
// de serialización; agotados los reintentos el conflicto se reporta como
// error de almacenamiento.
func (e *Engine) runSerialized(ctx context.Context, fn func(
	products repository.ProductRepository,
	history repository.StockHistoryRepository,
) error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = e.txRunner.Run(ctx, fn)
		if !errors.Is(err, domain.ErrTxConflict) {
			return err
		}
	}
	return fmt.Errorf("%w: conflicto de transacción tras %d intentos: %v", domain.ErrStorage, maxTxRetries, err)
}

func newEntry(p *entity.Product, movType string, quantity, before int64, now time.Time, notes string) *entity.StockHistoryEntry {
	return &entity.StockHistoryEntry{
		ID:          uuid.New().String(),
		ProductID:   p.ID,
		ProductName: p.Name,
		Type:        movType,
		Quantity:    quantity,
		StockBefore: before,
		StockAfter:  p.Stock,
		Notes:       notes,
		CreatedAt:   now,
	}
}
