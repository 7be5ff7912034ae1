package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/inventario-pos/internal/application/dto"
	"github.com/tu-usuario/inventario-pos/internal/application/stock"
	"github.com/tu-usuario/inventario-pos/internal/domain/entity"
)

// HistoryHandler maneja las consultas del ledger de stock (protegido, solo lectura).
type HistoryHandler struct {
	query *stock.HistoryQuery
	stats *stock.Stats
}

// NewHistoryHandler construye el handler.
func NewHistoryHandler(query *stock.HistoryQuery, stats *stock.Stats) *HistoryHandler {
	return &HistoryHandler{query: query, stats: stats}
}

// List godoc
// @Summary      Listar historial de stock
// @Description  Página del ledger más reciente primero. today=true anula startDate/endDate.
// @Tags         history
// @Security     Bearer
// @Produce      json
// @Param        page         query  int     false  "Página (default 1)"
// @Param        limit        query  int     false  "Tamaño de página (default 20)"
// @Param        product_name query  string  false  "Substring del nombre de producto"
// @Param        type         query  string  false  "restock|sale|adjustment"
// @Param        start_date   query  string  false  "YYYY-MM-DD, inclusivo"
// @Param        end_date     query  string  false  "YYYY-MM-DD, inclusivo hasta fin de día"
// @Param        today        query  bool    false  "Restringir al día actual"
// @Success      200  {object}  dto.HistoryListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/history [get]
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if err != nil {
		return respondDomainError(c, err)
	}
	page, err := h.query.List(c.Context(), *req)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toHistoryListResponse(page))
}

// ListByProduct godoc
// @Summary      Historial de stock de un producto
// @Tags         history
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        page       query  int     false  "Página (default 1)"
// @Param        limit      query  int     false  "Tamaño de página (default 20)"
// @Param        type       query  string  false  "restock|sale|adjustment"
// @Param        start_date query  string  false  "YYYY-MM-DD, inclusivo"
// @Param        end_date   query  string  false  "YYYY-MM-DD, inclusivo hasta fin de día"
// @Success      200  {object}  dto.HistoryListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/history/product/{productId} [get]
func (h *HistoryHandler) ListByProduct(c *fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if err != nil {
		return respondDomainError(c, err)
	}
	page, err := h.query.ListByProduct(c.Context(), c.Params("productId"), *req)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toHistoryListResponse(page))
}

// Stats godoc
// @Summary      Estadísticas del historial por tipo de movimiento
// @Tags         history
// @Security     Bearer
// @Produce      json
// @Param        start_date query  string  false  "YYYY-MM-DD, inclusivo"
// @Param        end_date   query  string  false  "YYYY-MM-DD, inclusivo hasta fin de día"
// @Param        today      query  bool    false  "Restringir al día actual"
// @Success      200  {object}  dto.HistoryStatsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/history/stats [get]
func (h *HistoryHandler) Stats(c *fiber.Ctx) error {
	start, err := parseDateQuery(c.Query("start_date"))
	if err != nil {
		return respondDomainError(c, err)
	}
	end, err := parseDateQuery(c.Query("end_date"))
	if err != nil {
		return respondDomainError(c, err)
	}
	out, err := h.stats.HistoryStats(c.Context(), stock.StatsRequest{
		StartDate: start,
		EndDate:   end,
		Today:     c.QueryBool("today", false),
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(out)
}

func (h *HistoryHandler) parseRequest(c *fiber.Ctx) (*stock.HistoryRequest, error) {
	start, err := parseDateQuery(c.Query("start_date"))
	if err != nil {
		return nil, err
	}
	end, err := parseDateQuery(c.Query("end_date"))
	if err != nil {
		return nil, err
	}
	return &stock.HistoryRequest{
		Page:        c.QueryInt("page", 1),
		Limit:       c.QueryInt("limit", 0),
		ProductName: c.Query("product_name"),
		Type:        c.Query("type"),
		StartDate:   start,
		EndDate:     end,
		Today:       c.QueryBool("today", false),
	}, nil
}

func toHistoryListResponse(page *stock.HistoryPage) dto.HistoryListResponse {
	out := dto.HistoryListResponse{
		History:    make([]dto.HistoryEntryResponse, 0, len(page.Entries)),
		Pagination: page.Pagination,
	}
	for _, e := range page.Entries {
		out.History = append(out.History, toHistoryEntryResponse(e))
	}
	return out
}

func toHistoryEntryResponse(e *entity.StockHistoryEntry) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		ID:          e.ID,
		ProductID:   e.ProductID,
		ProductName: e.ProductName,
		Type:        e.Type,
		Quantity:    e.Quantity,
		StockBefore: e.StockBefore,
		StockAfter:  e.StockAfter,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
	}
}
