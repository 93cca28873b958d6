package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/shared"
)

// DefaultSearchLimit caps catalog search results
const DefaultSearchLimit = 25

// Service handles catalog business operations
type Service struct {
	productRepo catalog.ProductRepository
}

// NewService creates a new catalog Service
func NewService(productRepo catalog.ProductRepository) *Service {
	return &Service{productRepo: productRepo}
}

// Create creates a new product. The SKU is normalized before the uniqueness
// check, so "abc12" and "ABC12" collide.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.SKU, req.Name, req.UnitPrice, req.InitialStock)
	if err != nil {
		return nil, err
	}

	exists, err := s.productRepo.ExistsBySKU(ctx, product.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrAlreadyExists
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Update changes a product's name or unit price
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := product.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.UnitPrice != nil {
		if err := product.SetUnitPrice(*req.UnitPrice); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Get retrieves a product by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetBySKU retrieves a product by its SKU, normalizing the input first
func (s *Service) GetBySKU(ctx context.Context, sku string) (*ProductResponse, error) {
	normalized, err := catalog.NormalizeSKU(sku)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindBySKU(ctx, normalized)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List returns the catalog sorted by name, or a capped case-insensitive
// search when a query is given
func (s *Service) List(ctx context.Context, query string) ([]ProductResponse, error) {
	if query != "" {
		found, err := s.productRepo.Search(ctx, query, DefaultSearchLimit)
		if err != nil {
			return nil, err
		}
		return ToProductResponses(found), nil
	}

	all, err := s.productRepo.FindAllOrderedByName(ctx)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(all), nil
}

// Delete removes a product from the catalog
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}
