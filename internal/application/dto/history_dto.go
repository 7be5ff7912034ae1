package dto

import "time"

// HistoryEntryResponse representación HTTP de una entrada del ledger.
type HistoryEntryResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Type        string    `json:"type"`
	Quantity    int64     `json:"quantity"`
	StockBefore int64     `json:"stock_before"`
	StockAfter  int64     `json:"stock_after"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// HistoryListResponse página del ledger, más reciente primero.
type HistoryListResponse struct {
	History    []HistoryEntryResponse `json:"history"`
	Pagination Pagination             `json:"pagination"`
}

// HistoryStatsResponse conteos y cantidades por tipo de movimiento en la
// ventana consultada. Las cantidades de venta se almacenan como magnitud
// positiva, así que QuantitySold es directamente la suma.
type HistoryStatsResponse struct {
	TotalRestock      int64 `json:"total_restock"`
	TotalSale         int64 `json:"total_sale"`
	TotalAdjustment   int64 `json:"total_adjustment"`
	QuantityRestocked int64 `json:"quantity_restocked"`
	QuantitySold      int64 `json:"quantity_sold"`
}
