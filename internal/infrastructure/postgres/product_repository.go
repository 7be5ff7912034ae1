package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/inventario-pos/internal/domain"
	"github.com/tu-usuario/inventario-pos/internal/domain/entity"
	"github.com/tu-usuario/inventario-pos/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, price, stock, sold, total_revenue, image_url, image_public_id,
		is_active, last_restocked_at, last_sold_at, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL
// (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, name, price, stock, sold, total_revenue, image_url, image_public_id,
			is_active, last_restocked_at, last_sold_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Price, p.Stock, p.Sold, p.TotalRevenue,
		nullIfEmpty(p.ImageURL), nullIfEmpty(p.ImagePublicID),
		p.IsActive, p.LastRestockedAt, p.LastSoldAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID. Devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get product")
}

// GetForUpdate obtiene el producto bloqueando su fila (SELECT FOR UPDATE).
// Serializa las mutaciones concurrentes sobre el mismo producto; usar solo
// dentro de una transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get product for update")
}

// Update actualiza la fila completa del producto (metadatos y contadores de stock).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET name = $2, price = $3, stock = $4, sold = $5, total_revenue = $6,
			image_url = $7, image_public_id = $8, is_active = $9,
			last_restocked_at = $10, last_sold_at = $11, updated_at = $12
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Price, p.Stock, p.Sold, p.TotalRevenue,
		nullIfEmpty(p.ImageURL), nullIfEmpty(p.ImagePublicID),
		p.IsActive, p.LastRestockedAt, p.LastSoldAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List pagina el catálogo según los filtros de búsqueda.
func (r *ProductRepo) List(ctx context.Context, search repository.ProductSearch, limit, offset int) ([]*entity.Product, error) {
	where, args := productWhere(search)
	orderBy := search.SortBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	dir := "DESC"
	if search.SortOrder == "asc" {
		dir = "ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		productColumns, where, orderBy, dir, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// Count cuenta los productos que satisfacen los filtros de búsqueda.
func (r *ProductRepo) Count(ctx context.Context, search repository.ProductSearch) (int64, error) {
	where, args := productWhere(search)
	var total int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// Delete elimina el registro de forma permanente. El historial del producto
// queda huérfano a propósito: el ledger conserva la pista de auditoría.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// ListLowStock productos activos con stock bajo el umbral, ascendente por stock.
func (r *ProductRepo) ListLowStock(ctx context.Context, threshold int64) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products WHERE is_active AND stock < $1 ORDER BY stock ASC`
	rows, err := r.q.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// TopBySold productos activos con ventas, ordenados por sold descendente.
// Empates se resuelven por el orden natural de almacenamiento.
func (r *ProductRepo) TopBySold(ctx context.Context, limit int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products WHERE is_active AND sold > 0 ORDER BY sold DESC LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// DashboardTotals agregados del catálogo en una sola pasada. El umbral de
// stock bajo del dashboard es fijo (10), distinto del de ListLowStock.
func (r *ProductRepo) DashboardTotals(ctx context.Context) (*repository.DashboardTotals, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE is_active AND stock < 10),
			COALESCE(SUM(total_revenue), 0),
			COALESCE(SUM(stock), 0),
			COALESCE(SUM(sold), 0)
		FROM products`
	var t repository.DashboardTotals
	err := r.q.QueryRow(ctx, query).Scan(
		&t.TotalProducts, &t.ActiveProducts, &t.LowStockProducts,
		&t.TotalRevenue, &t.TotalStock, &t.TotalSold,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard totals: %w", err)
	}
	return &t, nil
}

// productWhere arma el WHERE dinámico compartido por List y Count.
func productWhere(search repository.ProductSearch) (string, []any) {
	var conds []string
	var args []any
	if search.Name != "" {
		args = append(args, "%"+search.Name+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if search.IsActive != nil {
		args = append(args, *search.IsActive)
		conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
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

func (r *ProductRepo) scanOne(row pgx.Row, op string) (*entity.Product, error) {
	var p entity.Product
	var imageURL, imagePublicID *string
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.Stock, &p.Sold, &p.TotalRevenue,
		&imageURL, &imagePublicID, &p.IsActive,
		&p.LastRestockedAt, &p.LastSoldAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if imageURL != nil {
		p.ImageURL = *imageURL
	}
	if imagePublicID != nil {
		p.ImagePublicID = *imagePublicID
	}
	return &p, nil
}

func (r *ProductRepo) scanMany(rows pgx.Rows) ([]*entity.Product, error) {
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		var imageURL, imagePublicID *string
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Price, &p.Stock, &p.Sold, &p.TotalRevenue,
			&imageURL, &imagePublicID, &p.IsActive,
			&p.LastRestockedAt, &p.LastSoldAt, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if imageURL != nil {
			p.ImageURL = *imageURL
		}
		if imagePublicID != nil {
			p.ImagePublicID = *imagePublicID
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
