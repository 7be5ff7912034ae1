package stock

import (
	"context"
	"time"

	"github.com/tu-usuario/inventario-pos/internal/application/dto"
	"github.com/tu-usuario/inventario-pos/internal/domain"
	"github.com/tu-usuario/inventario-pos/internal/domain/entity"
	"github.com/tu-usuario/inventario-pos/internal/domain/repository"
)

// Defaults de paginación de historial.
const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HistoryQuery consultas de solo lectura sobre el ledger, con filtros
// explícitos y paginación. El orden es siempre CreatedAt descendente.
type HistoryQuery struct {
	history repository.StockHistoryRepository
	clock   Clock
}

// NewHistoryQuery construye el servicio de consultas. clock nil usa time.Now.
func NewHistoryQuery(history repository.StockHistoryRepository, clock Clock) *HistoryQuery {
	if clock == nil {
		clock = time.Now
	}
	return &HistoryQuery{history: history, clock: clock}
}

// HistoryRequest filtros reconocidos para listar el ledger. Today tiene
// prioridad sobre StartDate/EndDate y restringe al día actual en hora local
// del servidor. Campos no listados aquí se ignoran de forma determinista.
type HistoryRequest struct {
	Page        int
	Limit       int
	ProductName string
	Type        string
	StartDate   *time.Time
	EndDate     *time.Time
	Today       bool
}

// HistoryPage página de entradas más pagination metadata.
type HistoryPage struct {
	Entries    []*entity.StockHistoryEntry
	Pagination dto.Pagination
}

// List devuelve una página del ledger completo aplicando los filtros.
func (q *HistoryQuery) List(ctx context.Context, req HistoryRequest) (*HistoryPage, error) {
	return q.list(ctx, "", req, true)
}

// ListByProduct devuelve una página del ledger de un solo producto.
// El filtro por nombre no aplica en este modo.
func (q *HistoryQuery) ListByProduct(ctx context.Context, productID string, req HistoryRequest) (*HistoryPage, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return q.list(ctx, productID, req, false)
}

func (q *HistoryQuery) list(ctx context.Context, productID string, req HistoryRequest, byName bool) (*HistoryPage, error) {
	if req.Type != "" && !entity.ValidMovementType(req.Type) {
		return nil, domain.ErrInvalidInput
	}
	page, limit := normalizePage(req.Page, req.Limit)
	from, to := dateWindow(q.clock, req.StartDate, req.EndDate, req.Today)

	filter := repository.HistoryFilter{
		ProductID: productID,
		Type:      req.Type,
		From:      from,
		To:        to,
	}
	if byName {
		filter.ProductName = req.ProductName
	}

	entries, err := q.history.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	total, err := q.history.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &HistoryPage{
		Entries:    entries,
		Pagination: newPagination(page, limit, total),
	}, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return page, limit
}

func newPagination(page, limit int, total int64) dto.Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return dto.Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// dateWindow resuelve la ventana de fechas inclusiva de una consulta.
// today anula el rango y cubre [00:00:00, 23:59:59.999…] del día actual;
// endDate se extiende al final de su día para que el rango sea inclusivo en
// ambos extremos.
func dateWindow(clock Clock, start, end *time.Time, today bool) (*time.Time, *time.Time) {
	if today {
		now := clock()
		from := startOfDay(now)
		to := from.Add(24*time.Hour - time.Nanosecond)
		return &from, &to
	}
	var from, to *time.Time
	if start != nil {
		f := *start
		from = &f
	}
	if end != nil {
		t := startOfDay(*end).Add(24*time.Hour - time.Nanosecond)
		to = &t
	}
	return from, to
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
