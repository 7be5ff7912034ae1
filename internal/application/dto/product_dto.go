package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products.
// Stock inicial opcional (>= 0); no genera entrada en el ledger.
type CreateProductRequest struct {
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Stock         int64           `json:"stock"`
	ImageURL      string          `json:"image_url,omitempty"`
	ImagePublicID string          `json:"image_public_id,omitempty"`
}

// UpdateProductRequest body para PUT /api/products/:id. Solo metadatos:
// el stock se modifica únicamente vía restock/sale/adjust.
type UpdateProductRequest struct {
	Name          *string          `json:"name,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	ImageURL      *string          `json:"image_url,omitempty"`
	ImagePublicID *string          `json:"image_public_id,omitempty"`
}

// ListProductsRequest query params para GET /api/products.
type ListProductsRequest struct {
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
	Search    string `query:"search"`
	IsActive  *bool  `query:"is_active"`
	SortBy    string `query:"sort_by"`
	SortOrder string `query:"sort_order"`
}

// RestockRequest body para POST /api/products/:id/restock.
type RestockRequest struct {
	Quantity int64 `json:"quantity"`
}

// SaleRequest body para POST /api/products/:id/sale.
type SaleRequest struct {
	Quantity int64 `json:"quantity"`
}

// AdjustStockRequest body para POST /api/products/:id/adjust.
type AdjustStockRequest struct {
	NewStock int64  `json:"new_stock"`
	Notes    string `json:"notes,omitempty"`
}

// ProductResponse representación HTTP de un producto.
type ProductResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	Stock           int64           `json:"stock"`
	Sold            int64           `json:"sold"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	ImageURL        string          `json:"image_url,omitempty"`
	ImagePublicID   string          `json:"image_public_id,omitempty"`
	IsActive        bool            `json:"is_active"`
	LastRestockedAt *time.Time      `json:"last_restocked_at,omitempty"`
	LastSoldAt      *time.Time      `json:"last_sold_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductListResponse página de productos.
type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	Pagination Pagination        `json:"pagination"`
}

// TopProductDTO resumen de un producto para el widget top-5 del dashboard.
type TopProductDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Sold         int64           `json:"sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     string          `json:"image_url,omitempty"`
}

// DashboardStatsResponse respuesta de GET /api/products/stats.
type DashboardStatsResponse struct {
	TotalProducts    int64           `json:"total_products"`
	ActiveProducts   int64           `json:"active_products"`
	LowStockProducts int64           `json:"low_stock_products"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalStock       int64           `json:"total_stock"`
	TotalSold        int64           `json:"total_sold"`
	TopProducts      []TopProductDTO `json:"top_products"`
}
