package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rxkart/pharmacy-backend/internal/cache"
	"github.com/rxkart/pharmacy-backend/internal/errors"
	"github.com/rxkart/pharmacy-backend/internal/models"
	repository "github.com/rxkart/pharmacy-backend/internal/repositories"
)

const productCacheTTL = 10 * time.Minute

// ProductService is the catalog the order assembler resolves cart lines
// against. Reads go through the redis cache; a cache failure falls through
// to the database and is only logged.
type ProductService struct {
	repo  repository.ProductRepository
	cache cache.Cache
}

func NewProductService(repo repository.ProductRepository, productCache cache.Cache) *ProductService {
	return &ProductService{repo: repo, cache: productCache}
}

func (s *ProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	product := &models.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		RequiresRx:  req.RequiresRx,
		Variants:    req.Variants,
		Status:      "active",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := validateVariants(product.Variants); err != nil {
		return nil, err
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, errors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

func (s *ProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {

	key := cache.Key(cache.ProductKeyPrefix, id.String())

	var cached models.Product

	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		slog.Warn("Product cache read failed", slog.String("error", err.Error()))
	}

	if found {
		return &cached, nil
	}

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to retrieve product").WithError(err)
	}

	if err := s.cache.Set(ctx, key, product, productCacheTTL); err != nil {
		slog.Warn("Product cache write failed", slog.String("error", err.Error()))
	}

	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {

	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}

	if req.Description != nil {
		product.Description = *req.Description
	}

	if req.Category != nil {
		product.Category = *req.Category
	}

	if req.RequiresRx != nil {
		product.RequiresRx = *req.RequiresRx
	}

	if req.Variants != nil {
		if err := validateVariants(req.Variants); err != nil {
			return nil, err
		}

		product.Variants = req.Variants
	}

	if req.Status != nil {
		product.Status = *req.Status
	}

	product.UpdatedAt = time.Now()

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, errors.DatabaseError("Failed to update product").WithError(err)
	}

	// Stale catalog entries must not survive an admin edit.
	if err := s.cache.Delete(ctx, cache.Key(cache.ProductKeyPrefix, id.String())); err != nil {
		slog.Warn("Product cache invalidation failed", slog.String("error", err.Error()))
	}

	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, page, size int) ([]models.Product, int, error) {

	if page < 1 {
		page = 1
	}

	if size < 1 || size > 100 {
		size = 20
	}

	products, total, err := s.repo.ListProducts(ctx, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return products, total, nil
}

// validateVariants rejects duplicate size labels; the cart addresses
// variants by size, so the label must be unique within a product.
func validateVariants(variants []models.Variant) error {

	seen := make(map[string]struct{}, len(variants))

	for _, variant := range variants {
		if _, ok := seen[variant.Size]; ok {
			return errors.ValidationError("Duplicate variant size: " + variant.Size)
		}

		seen[variant.Size] = struct{}{}
	}

	return nil
}
