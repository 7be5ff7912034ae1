package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/inventario-pos/internal/domain/entity"
	"github.com/tu-usuario/inventario-pos/internal/domain/repository"
)

var _ repository.StockHistoryRepository = (*StockHistoryRepo)(nil)

const historyColumns = `id, product_id, product_name, type, quantity, stock_before, stock_after, notes, created_at`

// StockHistoryRepo implementación del ledger append-only sobre PostgreSQL
// (usable con pool o tx). Solo inserta y lee: nunca UPDATE ni DELETE.
type StockHistoryRepo struct {
	q Querier
}

// NewStockHistoryRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewStockHistoryRepository(q Querier) *StockHistoryRepo {
	return &StockHistoryRepo{q: q}
}

// Create agrega una entrada al ledger.
func (r *StockHistoryRepo) Create(ctx context.Context, e *entity.StockHistoryEntry) error {
	query := `
		INSERT INTO stock_history (id, product_id, product_name, type, quantity, stock_before, stock_after, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	notes := (*string)(nil)
	if e.Notes != "" {
		notes = &e.Notes
	}
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ProductID, e.ProductName, e.Type,
		e.Quantity, e.StockBefore, e.StockAfter, notes, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock history: %w", err)
	}
	return nil
}

// List devuelve una página del ledger, más reciente primero.
func (r *StockHistoryRepo) List(ctx context.Context, filter repository.HistoryFilter, limit, offset int) ([]*entity.StockHistoryEntry, error) {
	where, args := historyWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM stock_history%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		historyColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock history: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockHistoryEntry
	for rows.Next() {
		var e entity.StockHistoryEntry
		var notes *string
		if err := rows.Scan(
			&e.ID, &e.ProductID, &e.ProductName, &e.Type,
			&e.Quantity, &e.StockBefore, &e.StockAfter, &notes, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock history: %w", err)
		}
		if notes != nil {
			e.Notes = *notes
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// Count cuenta las entradas que satisfacen el filtro.
func (r *StockHistoryRepo) Count(ctx context.Context, filter repository.HistoryFilter) (int64, error) {
	where, args := historyWhere(filter)
	var total int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_history`+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count stock history: %w", err)
	}
	return total, nil
}

// StatsByType agrupa el ledger por tipo de movimiento en la ventana dada,
// devolviendo conteo y suma de cantidades por tipo.
func (r *StockHistoryRepo) StatsByType(ctx context.Context, from, to *time.Time) ([]repository.TypeStat, error) {
	where, args := historyWhere(repository.HistoryFilter{From: from, To: to})
	query := `SELECT type, COUNT(*), COALESCE(SUM(quantity), 0) FROM stock_history` + where + ` GROUP BY type`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("stats by type: %w", err)
	}
	defer rows.Close()

	var stats []repository.TypeStat
	for rows.Next() {
		var s repository.TypeStat
		if err := rows.Scan(&s.Type, &s.Count, &s.Quantity); err != nil {
			return nil, fmt.Errorf("scan type stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// historyWhere arma el WHERE dinámico compartido por List, Count y StatsByType.
func historyWhere(filter repository.HistoryFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.ProductID != "" {
		args = append(args, filter.ProductID)
		conds = append(conds, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if filter.ProductName != "" {
		args = append(args, "%"+filter.ProductName+"%")
		conds = append(conds, fmt.Sprintf("product_name ILIKE $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	where := " WHERE " + conds[0]
	for _, c := range conds[1:] {
		where += " AND " + c
	}
	return where, args
}
