package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-pos/internal/application/dto"
	"github.com/tu-usuario/inventario-pos/internal/domain"
	"github.com/tu-usuario/inventario-pos/internal/domain/entity"
	"github.com/tu-usuario/inventario-pos/internal/domain/repository"
)

// Defaults de paginación del catálogo.
const (
	defaultProductLimit = 10
	maxProductLimit     = 100
)

// ProductUseCase CRUD del catálogo. El stock, sold y revenue se modifican
// únicamente vía el motor de mutaciones; aquí solo metadatos y ciclo de vida
// (activo → soft-delete → hard-delete).
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un producto. Nombre obligatorio (máx. 200), precio y stock
// inicial no negativos. El stock inicial no genera entrada en el ledger.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > entity.MaxProductNameLength {
		return nil, domain.ErrInvalidInput
	}
	if in.Price.LessThan(decimal.Zero) || in.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Name:          name,
		Price:         in.Price,
		Stock:         in.Stock,
		Sold:          0,
		TotalRevenue:  decimal.Zero,
		ImageURL:      in.ImageURL,
		ImagePublicID: in.ImagePublicID,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto (activo o no).
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// List pagina el catálogo con búsqueda por nombre, filtro de estado y orden.
// SortBy fuera de la lista blanca cae en created_at.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ListProductsRequest) (*dto.ProductListResponse, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultProductLimit
	}
	if limit > maxProductLimit {
		limit = maxProductLimit
	}

	search := repository.ProductSearch{
		Name:      strings.TrimSpace(in.Search),
		IsActive:  in.IsActive,
		SortBy:    normalizeSortBy(in.SortBy),
		SortOrder: normalizeSortOrder(in.SortOrder),
	}

	products, err := uc.repo.List(ctx, search, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx, search)
	if err != nil {
		return nil, err
	}

	out := &dto.ProductListResponse{
		Products: make([]dto.ProductResponse, 0, len(products)),
		Pagination: dto.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}
	for _, p := range products {
		out.Products = append(out.Products, *toProductResponse(p))
	}
	return out, nil
}

// Update modifica solo metadatos (nombre, precio, imagen). Campos nil no cambian.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || len(name) > entity.MaxProductNameLength {
			return nil, domain.ErrInvalidInput
		}
		product.Name = name
	}
	if in.Price != nil {
		if in.Price.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if in.ImageURL != nil {
		product.ImageURL = *in.ImageURL
	}
	if in.ImagePublicID != nil {
		product.ImagePublicID = *in.ImagePublicID
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// SoftDelete desactiva el producto: conserva historial y metadatos, queda
// excluido de ventas y de los agregados de activos.
func (uc *ProductUseCase) SoftDelete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	product.IsActive = false
	product.UpdatedAt = time.Now()
	return uc.repo.Update(ctx, product)
}

// HardDelete elimina el registro de forma irreversible. Las entradas del
// ledger quedan huérfanas pero se conservan como pista de auditoría. Liberar
// el asset de imagen (ImagePublicID) es responsabilidad del caller, antes de
// invocar esto.
func (uc *ProductUseCase) HardDelete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

func normalizeSortBy(sortBy string) string {
	switch sortBy {
	case "name", "price", "stock", "sold", "created_at":
		return sortBy
	default:
		return "created_at"
	}
}

func normalizeSortOrder(order string) string {
	if strings.EqualFold(order, "asc") {
		return "asc"
	}
	return "desc"
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
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
