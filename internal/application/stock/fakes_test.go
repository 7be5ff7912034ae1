package stock_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tu-usuario/inventario-pos/internal/application/stock"
	"github.com/tu-usuario/inventario-pos/internal/domain"
	"github.com/tu-usuario/inventario-pos/internal/domain/entity"
	"github.com/tu-usuario/inventario-pos/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria de los repositorios y del TxRunner, con la misma semántica
// observable que la implementación PostgreSQL: copias defensivas en lecturas,
// orden CreatedAt descendente en el ledger y rollback del estado si el callback
// transaccional falla.
// ──────────────────────────────────────────────────────────────────────────────

// fakeProductRepo repositorio de productos en memoria.
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*entity.Product

	updateErr error // error a inyectar en Update
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*entity.Product)}
}

func (r *fakeProductRepo) put(p *entity.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
}

func (r *fakeProductRepo) get(id string) *entity.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (r *fakeProductRepo) snapshot() map[string]*entity.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[string]*entity.Product, len(r.products))
	for id, p := range r.products {
		cp := *p
		snap[id] = &cp
	}
	return snap
}

func (r *fakeProductRepo) restore(snap map[string]*entity.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = snap
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.put(p)
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.get(id), nil
}

func (r *fakeProductRepo) GetForUpdate(_ context.Context, id string) (*entity.Product, error) {
	return r.get(id), nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) List(_ context.Context, _ repository.ProductSearch, _, _ int) ([]*entity.Product, error) {
	return r.all(), nil
}

func (r *fakeProductRepo) Count(_ context.Context, _ repository.ProductSearch) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) ListLowStock(_ context.Context, threshold int64) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.all() {
		if p.IsActive && p.Stock < threshold {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out, nil
}

func (r *fakeProductRepo) TopBySold(_ context.Context, limit int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.all() {
		if p.IsActive && p.Sold > 0 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sold > out[j].Sold })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeProductRepo) DashboardTotals(_ context.Context) (*repository.DashboardTotals, error) {
	totals := &repository.DashboardTotals{}
	for _, p := range r.all() {
		totals.TotalProducts++
		if p.IsActive {
			totals.ActiveProducts++
			if p.Stock < 10 {
				totals.LowStockProducts++
			}
		}
		totals.TotalRevenue = totals.TotalRevenue.Add(p.TotalRevenue)
		totals.TotalStock += p.Stock
		totals.TotalSold += p.Sold
	}
	return totals, nil
}

func (r *fakeProductRepo) all() []*entity.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Product, 0, len(r.products))
	for _, p := range r.products {
		cp := *p
		out = append(out, &cp)
	}
	return out
}

// fakeHistoryRepo ledger append-only en memoria.
type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []*entity.StockHistoryEntry

	createErr error // error a inyectar en Create
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
}

func (r *fakeHistoryRepo) snapshot() []*entity.StockHistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make([]*entity.StockHistoryEntry, len(r.entries))
	copy(snap, r.entries)
	return snap
}

func (r *fakeHistoryRepo) restore(snap []*entity.StockHistoryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = snap
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *entity.StockHistoryEntry) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeHistoryRepo) List(_ context.Context, filter repository.HistoryFilter, limit, offset int) ([]*entity.StockHistoryEntry, error) {
	matched := r.filtered(filter)
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeHistoryRepo) Count(_ context.Context, filter repository.HistoryFilter) (int64, error) {
	return int64(len(r.filtered(filter))), nil
}

func (r *fakeHistoryRepo) StatsByType(_ context.Context, from, to *time.Time) ([]repository.TypeStat, error) {
	byType := make(map[string]*repository.TypeStat)
	for _, e := range r.filtered(repository.HistoryFilter{From: from, To: to}) {
		stat, ok := byType[e.Type]
		if !ok {
			stat = &repository.TypeStat{Type: e.Type}
			byType[e.Type] = stat
		}
		stat.Count++
		stat.Quantity += e.Quantity
	}
	out := make([]repository.TypeStat, 0, len(byType))
	for _, stat := range byType {
		out = append(out, *stat)
	}
	return out, nil
}

// filtered aplica el filtro y devuelve copias en orden CreatedAt descendente.
func (r *fakeHistoryRepo) filtered(filter repository.HistoryFilter) []*entity.StockHistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.StockHistoryEntry
	for _, e := range r.entries {
		if filter.ProductID != "" && e.ProductID != filter.ProductID {
			continue
		}
		if filter.ProductName != "" &&
			!strings.Contains(strings.ToLower(e.ProductName), strings.ToLower(filter.ProductName)) {
			continue
		}
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if filter.From != nil && e.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.CreatedAt.After(*filter.To) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// fakeTxRunner ejecuta el callback contra los repos en memoria y restaura el
// estado previo si falla, imitando el rollback de la transacción real.
// conflicts > 0 hace que los primeros Run devuelvan ErrTxConflict sin ejecutar
// el callback, para ejercitar los reintentos.
type fakeTxRunner struct {
	products *fakeProductRepo
	history  *fakeHistoryRepo

	conflicts int
	runs      int // invocaciones totales de Run
}

var _ stock.TxRunner = (*fakeTxRunner)(nil)

func (r *fakeTxRunner) Run(_ context.Context, fn func(
	products repository.ProductRepository,
	history repository.StockHistoryRepository,
) error) error {
	r.runs++
	if r.conflicts > 0 {
		r.conflicts--
		return domain.ErrTxConflict
	}
	productSnap := r.products.snapshot()
	historySnap := r.history.snapshot()
	if err := fn(r.products, r.history); err != nil {
		r.products.restore(productSnap)
		r.history.restore(historySnap)
		return err
	}
	return nil
}

// newEngineFixture motor cableado con repos en memoria y reloj fijo.
func newEngineFixture(now time.Time) (*stock.Engine, *fakeProductRepo, *fakeHistoryRepo, *fakeTxRunner) {
	products := newFakeProductRepo()
	history := newFakeHistoryRepo()
	runner := &fakeTxRunner{products: products, history: history}
	engine := stock.NewEngine(runner, func() time.Time { return now })
	return engine, products, history, runner
}
