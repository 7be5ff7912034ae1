package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/inventario-pos/internal/application/dto"
	"github.com/tu-usuario/inventario-pos/internal/application/stock"
	"github.com/tu-usuario/inventario-pos/internal/application/usecase"
	"github.com/tu-usuario/inventario-pos/internal/domain/entity"
)

// ProductHandler maneja las peticiones HTTP del catálogo y de las mutaciones
// de stock (protegido).
type ProductHandler struct {
	uc     *usecase.ProductUseCase
	engine *stock.Engine
	stats  *stock.Stats
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, engine *stock.Engine, stats *stock.Stats) *ProductHandler {
	return &ProductHandler{uc: uc, engine: engine, stats: stats}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "name, price, stock inicial opcional, imagen opcional"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	product, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        page       query  int     false  "Página (default 1)"
// @Param        limit      query  int     false  "Tamaño de página (default 10)"
// @Param        search     query  string  false  "Substring del nombre"
// @Param        is_active  query  bool    false  "Filtrar por estado"
// @Param        sort_by    query  string  false  "created_at|name|price|stock|sold"
// @Param        sort_order query  string  false  "asc|desc"
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var in dto.ListProductsRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query params inválidos"})
	}
	out, err := h.uc.List(c.Context(), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	product, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(product)
}

// Update godoc
// @Summary      Actualizar metadatos del producto (nombre, precio, imagen)
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "campos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	product, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(product)
}

// SoftDelete godoc
// @Summary      Desactivar producto (soft-delete, conserva historial)
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) SoftDelete(c *fiber.Ctx) error {
	if err := h.uc.SoftDelete(c.Context(), c.Params("id")); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "producto desactivado"})
}

// HardDelete godoc
// @Summary      Eliminar producto permanentemente (solo admin)
// @Description  El historial del producto se conserva huérfano como auditoría.
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/permanent [delete]
func (h *ProductHandler) HardDelete(c *fiber.Ctx) error {
	if err := h.uc.HardDelete(c.Context(), c.Params("id")); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "producto eliminado permanentemente"})
}

// Restock godoc
// @Summary      Registrar entrada de stock
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del producto"
// @Param        body  body  dto.RestockRequest  true  "quantity > 0"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/restock [post]
func (h *ProductHandler) Restock(c *fiber.Ctx) error {
	var in dto.RestockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	product, err := h.engine.Restock(c.Context(), c.Params("id"), in.Quantity)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toProductResponse(product))
}

// Sale godoc
// @Summary      Registrar venta
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID del producto"
// @Param        body  body  dto.SaleRequest  true  "quantity > 0"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/sale [post]
func (h *ProductHandler) Sale(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	product, err := h.engine.RecordSale(c.Context(), c.Params("id"), in.Quantity)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toProductResponse(product))
}

// Adjust godoc
// @Summary      Ajustar stock a un valor objetivo (corrección manual)
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del producto"
// @Param        body  body  dto.AdjustStockRequest  true  "new_stock >= 0, notes opcional"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/adjust [post]
func (h *ProductHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	product, err := h.engine.AdjustStock(c.Context(), c.Params("id"), in.NewStock, in.Notes)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toProductResponse(product))
}

// Dashboard godoc
// @Summary      Estadísticas del dashboard
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardStatsResponse
// @Router       /api/products/stats [get]
func (h *ProductHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.stats.Dashboard(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos activos con stock bajo
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  int  false  "Umbral (default 5)"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/products/low-stock [get]
func (h *ProductHandler) LowStock(c *fiber.Ctx) error {
	threshold := int64(c.QueryInt("threshold", 0))
	products, err := h.stats.LowStock(c.Context(), threshold)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]fiber.Map, 0, len(products))
	for _, p := range products {
		out = append(out, fiber.Map{
			"id":    p.ID,
			"name":  p.Name,
			"stock": p.Stock,
			"price": p.Price,
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "products": out})
}

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Price:           p.Price,
		Stock:           p.Stock,
		Sold:            p.Sold,
		TotalRevenue:    p.TotalRevenue,
		ImageURL:        p.ImageURL,
		ImagePublicID:   p.ImagePublicID,
		IsActive:        p.IsActive,
		LastRestockedAt: p.LastRestockedAt,
		LastSoldAt:      p.LastSoldAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
