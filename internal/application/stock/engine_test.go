package stock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/inventario-pos/internal/application/stock"
	"github.com/tu-usuario/inventario-pos/internal/domain"
	"github.com/tu-usuario/inventario-pos/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del motor de mutaciones de stock: las tres operaciones sancionadas
// (restock, venta, ajuste), sus validaciones, la atomicidad producto+ledger y
// los reintentos ante conflictos de serialización.
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

func seedProduct(r *fakeProductRepo, stock int64, price string, active bool) *entity.Product {
	p := &entity.Product{
		ID:           "prod-1",
		Name:         "Café de Colombia 500g",
		Price:        decimal.RequireFromString(price),
		Stock:        stock,
		Sold:         0,
		TotalRevenue: decimal.Zero,
		IsActive:     active,
		CreatedAt:    testNow.Add(-24 * time.Hour),
		UpdatedAt:    testNow.Add(-24 * time.Hour),
	}
	r.put(p)
	return p
}

func TestRestock_SumaStockYRegistraEntrada(t *testing.T) {
	engine, products, history, _ := newEngineFixture(testNow)
	seedProduct(products, 10, "2.50", true)

	updated, err := engine.Restock(context.Background(), "prod-1", 5)
	require.NoError(t, err)

	assert.Equal(t, int64(15), updated.Stock, "el restock debe sumar la cantidad al stock")
	require.NotNil(t, updated.LastRestockedAt)
	assert.True(t, updated.LastRestockedAt.Equal(testNow))
	assert.True(t, updated.UpdatedAt.Equal(testNow))

	entries := history.snapshot()
	require.Len(t, entries, 1, "cada mutación agrega exactamente una entrada al ledger")
	e := entries[0]
	assert.Equal(t, entity.MovementRestock, e.Type)
	assert.Equal(t, int64(5), e.Quantity)
	assert.Equal(t, int64(10), e.StockBefore)
	assert.Equal(t, int64(15), e.StockAfter)
	assert.Equal(t, "prod-1", e.ProductID)
	assert.Equal(t, "Café de Colombia 500g", e.ProductName)
	assert.NotEmpty(t, e.ID)
}

func TestRestock_CantidadInvalidaNoTocaNada(t *testing.T) {
	engine, products, history, runner := newEngineFixture(testNow)
	seedProduct(products, 10, "2.50", true)

	for _, qty := range []int64{0, -3} {
		_, err := engine.Restock(context.Background(), "prod-1", qty)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
	assert.Equal(t, int64(10), products.get("prod-1").Stock, "el stock no debe cambiar")
	assert.Empty(t, history.snapshot(), "no debe haber entradas de ledger")
	assert.Zero(t, runner.runs, "la validación ocurre antes de abrir transacción")
}

func TestRestock_ProductoInexistente(t *testing.T) {
	engine, _, history, _ := newEngineFixture(testNow)

	_, err := engine.Restock(context.Background(), "no-existe", 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, history.snapshot())
}

func TestRecordSale_DescuentaStockYAcumulaVentas(t *testing.T) {
	engine, products, history, _ := newEngineFixture(testNow)
	seedProduct(products, 15, "2.50", true)

	updated, err := engine.RecordSale(context.Background(), "prod-1", 4)
	require.NoError(t, err)

	assert.Equal(t, int64(11), updated.Stock)
	assert.Equal(t, int64(4), updated.Sold)
	assert.True(t, updated.TotalRevenue.Equal(decimal.RequireFromString("10.00")),
		"el revenue acumula cantidad * precio vigente (4 * 2.50)")
	require.NotNil(t, updated.LastSoldAt)
	assert.True(t, updated.LastSoldAt.Equal(testNow))

	entries := history.snapshot()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, entity.MovementSale, e.Type)
	assert.Equal(t, int64(4), e.Quantity, "la venta registra magnitud positiva")
	assert.Equal(t, int64(15), e.StockBefore)
	assert.Equal(t, int64(11), e.StockAfter)
}

func TestRecordSale_ProductoInactivo(t *testing.T) {
	engine, products, history, _ := newEngineFixture(testNow)
	seedProduct(products, 15, "2.50", false)

	_, err := engine.RecordSale(context.Background(), "prod-1", 1)
	assert.ErrorIs(t, err, domain.ErrProductInactive)

	p := products.get("prod-1")
	assert.Equal(t, int64(15), p.Stock, "la venta rechazada no muta el producto")
	assert.Zero(t, p.Sold)
	assert.Empty(t, history.snapshot())
}

func TestRecordSale_StockInsuficiente(t *testing.T) {
	engine, products, history, _ := newEngineFixture(testNow)
	seedProduct(products, 3, "2.50", true)

	_, err := engine.RecordSale(context.Background(), "prod-1", 4)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	p := products.get("prod-1")
	assert.Equal(t, int64(3), p.Stock)
	assert.Zero(t, p.Sold)
	assert.True(t, p.TotalRevenue.IsZero())
	assert.Empty(t, history.snapshot())
}

func TestRecordSale_VenderTodoElStockEsValido(t *testing.T) {
	engine, products, _, _ := newEngineFixture(testNow)
	seedProduct(products, 4, "1.00", true)

	updated, err := engine.RecordSale(context.Background(), "prod-1", 4)
	require.NoError(t, err)
	assert.Zero(t, updated.Stock, "vender exactamente el stock disponible deja el producto en cero")
}

func TestAdjustStock_RegistraDeltaFirmado(t *testing.T) {
	engine, products, history, _ := newEngineFixture(testNow)
	seedProduct(products, 11, "2.50", true)

	updated, err := engine.AdjustStock(context.Background(), "prod-1", 8, "merma por inventario físico")
	require.NoError(t, err)

	assert.Equal(t, int64(8), updated.Stock)
	assert.Zero(t, updated.Sold, "el ajuste no toca las ventas")
	assert.True(t, updated.TotalRevenue.IsZero(), "el ajuste no toca el revenue")

	entries := history.snapshot()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, entity.MovementAdjustment, e.Type)
	assert.Equal(t, int64(-3), e.Quantity, "el ajuste registra el delta firmado (8 - 11)")
	assert.Equal(t, int64(11), e.StockBefore)
	assert.Equal(t, int64(8), e.StockAfter)
	assert.Equal(t, "merma por inventario físico", e.Notes)
}

func TestAdjustStock_ACeroEsValido(t *testing.T) {
	engine, products, history, _ := newEngineFixture(testNow)
	seedProduct(products, 7, "2.50", true)

	updated, err := engine.AdjustStock(context.Background(), "prod-1", 0, "")
	require.NoError(t, err)
	assert.Zero(t, updated.Stock)

	entries := history.snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(-7), entries[0].Quantity)
}

func TestAdjustStock_NegativoRechazado(t *testing.T) {
	engine, products, history, _ := newEngineFixture(testNow)
	seedProduct(products, 7, "2.50", true)

	_, err := engine.AdjustStock(context.Background(), "prod-1", -1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(7), products.get("prod-1").Stock)
	assert.Empty(t, history.snapshot())
}

func TestAdjustStock_SobreProductoInactivoEsValido(t *testing.T) {
	// A diferencia de la venta, la corrección manual aplica también a
	// productos desactivados.
	engine, products, _, _ := newEngineFixture(testNow)
	seedProduct(products, 7, "2.50", false)

	updated, err := engine.AdjustStock(context.Background(), "prod-1", 12, "recuento")
	require.NoError(t, err)
	assert.Equal(t, int64(12), updated.Stock)
}

// TestEngine_SecuenciaCompleta reproduce la secuencia restock → venta → ajuste
// y verifica que el ledger queda encadenado: el StockAfter de cada entrada
// coincide con el StockBefore de la siguiente.
func TestEngine_SecuenciaCompleta(t *testing.T) {
	products := newFakeProductRepo()
	history := newFakeHistoryRepo()
	runner := &fakeTxRunner{products: products, history: history}

	// Reloj que avanza un minuto por mutación para que el orden descendente
	// del ledger sea observable.
	current := testNow
	clock := func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
	engine := stock.NewEngine(runner, clock)
	seedProduct(products, 10, "2.50", true)

	ctx := context.Background()
	_, err := engine.Restock(ctx, "prod-1", 5)
	require.NoError(t, err)
	_, err = engine.RecordSale(ctx, "prod-1", 4)
	require.NoError(t, err)
	final, err := engine.AdjustStock(ctx, "prod-1", 8, "merma")
	require.NoError(t, err)

	assert.Equal(t, int64(8), final.Stock)
	assert.Equal(t, int64(4), final.Sold)
	assert.True(t, final.TotalRevenue.Equal(decimal.RequireFromString("10.00")))

	// snapshot() devuelve en orden de inserción (ascendente).
	entries := history.snapshot()
	require.Len(t, entries, 3)

	assert.Equal(t, entity.MovementRestock, entries[0].Type)
	assert.Equal(t, int64(10), entries[0].StockBefore)
	assert.Equal(t, int64(15), entries[0].StockAfter)

	assert.Equal(t, entity.MovementSale, entries[1].Type)
	assert.Equal(t, int64(15), entries[1].StockBefore)
	assert.Equal(t, int64(11), entries[1].StockAfter)

	assert.Equal(t, entity.MovementAdjustment, entries[2].Type)
	assert.Equal(t, int64(11), entries[2].StockBefore)
	assert.Equal(t, int64(8), entries[2].StockAfter)

	for i := 1; i < len(entries); i++ {
		assert.Equal(t, entries[i-1].StockAfter, entries[i].StockBefore,
			"el ledger debe quedar encadenado entrada a entrada")
	}
}

func TestEngine_ReintentaAnteConflictoDeSerializacion(t *testing.T) {
	engine, products, history, runner := newEngineFixture(testNow)
	seedProduct(products, 10, "2.50", true)
	runner.conflicts = 2 // los dos primeros intentos fallan

	updated, err := engine.Restock(context.Background(), "prod-1", 5)
	require.NoError(t, err, "el tercer intento debe tener éxito")
	assert.Equal(t, int64(15), updated.Stock)
	assert.Equal(t, 3, runner.runs)
	assert.Len(t, history.snapshot(), 1, "los intentos fallidos no dejan entradas")
}

func TestEngine_ConflictosAgotadosReportanErrorDeAlmacenamiento(t *testing.T) {
	engine, products, history, runner := newEngineFixture(testNow)
	seedProduct(products, 10, "2.50", true)
	runner.conflicts = 99 // nunca deja de fallar

	_, err := engine.Restock(context.Background(), "prod-1", 5)
	assert.ErrorIs(t, err, domain.ErrStorage,
		"agotados los reintentos el conflicto se reporta como error de almacenamiento")
	assert.Equal(t, 3, runner.runs, "los reintentos están acotados")
	assert.Equal(t, int64(10), products.get("prod-1").Stock)
	assert.Empty(t, history.snapshot())
}

func TestEngine_FalloDelLedgerRevierteLaMutacion(t *testing.T) {
	engine, products, history, _ := newEngineFixture(testNow)
	seedProduct(products, 10, "2.50", true)
	history.createErr = errors.New("disco lleno")

	_, err := engine.Restock(context.Background(), "prod-1", 5)
	assert.ErrorIs(t, err, domain.ErrInconsistentLedger)

	assert.Equal(t, int64(10), products.get("prod-1").Stock,
		"si el append al ledger falla la mutación del producto debe revertirse")
	assert.Empty(t, history.snapshot())
}

func TestEngine_ProductosDistintosNoInterfieren(t *testing.T) {
	engine, products, history, _ := newEngineFixture(testNow)
	seedProduct(products, 10, "2.50", true)
	b := &entity.Product{
		ID:       "prod-2",
		Name:     "Panela x6",
		Price:    decimal.RequireFromString("4.00"),
		Stock:    20,
		IsActive: true,
	}
	products.put(b)

	_, err := engine.RecordSale(context.Background(), "prod-1", 2)
	require.NoError(t, err)

	assert.Equal(t, int64(20), products.get("prod-2").Stock,
		"mutar un producto no toca el resto del catálogo")
	require.Len(t, history.snapshot(), 1)
	assert.Equal(t, "prod-1", history.snapshot()[0].ProductID)
}
