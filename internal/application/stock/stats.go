package stock

import (
	"context"
	"time"

	"github.com/tu-usuario/inventario-pos/internal/application/dto"
	"github.com/tu-usuario/inventario-pos/internal/domain/entity"
	"github.com/tu-usuario/inventario-pos/internal/domain/repository"
)

const (
	// defaultLowStockThreshold umbral de la consulta dedicada de stock bajo
	// cuando el caller no envía uno.
	defaultLowStockThreshold = 5
	// dashboardTopProducts productos en el widget top del dashboard.
	dashboardTopProducts = 5
)

// Stats agregaciones de solo lectura sobre el ledger y el catálogo.
type Stats struct {
	history  repository.StockHistoryRepository
	products repository.ProductRepository
	clock    Clock
}

// NewStats construye el agregador. clock nil usa time.Now.
func NewStats(history repository.StockHistoryRepository, products repository.ProductRepository, clock Clock) *Stats {
	if clock == nil {
		clock = time.Now
	}
	return &Stats{history: history, products: products, clock: clock}
}

// StatsRequest ventana de fechas para HistoryStats. Today anula el rango,
// con la misma semántica que en las consultas de historial.
type StatsRequest struct {
	StartDate *time.Time
	EndDate   *time.Time
	Today     bool
}

// HistoryStats agrupa el ledger por tipo de movimiento en la ventana dada y
// devuelve conteos más cantidades. Las ventas se almacenan con magnitud
// positiva, así que la suma directa ya es el total de unidades vendidas.
func (s *Stats) HistoryStats(ctx context.Context, req StatsRequest) (*dto.HistoryStatsResponse, error) {
	from, to := dateWindow(s.clock, req.StartDate, req.EndDate, req.Today)
	rows, err := s.history.StatsByType(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := &dto.HistoryStatsResponse{}
	for _, row := range rows {
		switch row.Type {
		case entity.MovementRestock:
			out.TotalRestock = row.Count
			out.QuantityRestocked = row.Quantity
		case entity.MovementSale:
			out.TotalSale = row.Count
			out.QuantitySold = row.Quantity
		case entity.MovementAdjustment:
			out.TotalAdjustment = row.Count
		}
	}
	return out, nil
}

// Dashboard calcula los agregados del catálogo y el top de más vendidos.
// Las dos consultas son independientes y corren en paralelo.
func (s *Stats) Dashboard(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	type totalsResult struct {
		totals *repository.DashboardTotals
		err    error
	}
	type topResult struct {
		products []*entity.Product
		err      error
	}

	totalsCh := make(chan totalsResult, 1)
	topCh := make(chan topResult, 1)

	go func() {
		t, err := s.products.DashboardTotals(ctx)
		totalsCh <- totalsResult{t, err}
	}()
	go func() {
		p, err := s.products.TopBySold(ctx, dashboardTopProducts)
		topCh <- topResult{p, err}
	}()

	totals := <-totalsCh
	top := <-topCh
	if totals.err != nil {
		return nil, totals.err
	}
	if top.err != nil {
		return nil, top.err
	}

	out := &dto.DashboardStatsResponse{
		TotalProducts:    totals.totals.TotalProducts,
		ActiveProducts:   totals.totals.ActiveProducts,
		LowStockProducts: totals.totals.LowStockProducts,
		TotalRevenue:     totals.totals.TotalRevenue,
		TotalStock:       totals.totals.TotalStock,
		TotalSold:        totals.totals.TotalSold,
		TopProducts:      make([]dto.TopProductDTO, 0, len(top.products)),
	}
	for _, p := range top.products {
		out.TopProducts = append(out.TopProducts, dto.TopProductDTO{
			ID:           p.ID,
			Name:         p.Name,
			Sold:         p.Sold,
			TotalRevenue: p.TotalRevenue,
			Price:        p.Price,
			ImageURL:     p.ImageURL,
		})
	}
	return out, nil
}

// LowStock productos activos con stock bajo el umbral, ascendente por stock.
// threshold <= 0 usa el default (distinto del umbral fijo del dashboard).
func (s *Stats) LowStock(ctx context.Context, threshold int64) ([]*entity.Product, error) {
	if threshold <= 0 {
		threshold = defaultLowStockThreshold
	}
	return s.products.ListLowStock(ctx, threshold)
}
