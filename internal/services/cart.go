package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rxkart/pharmacy-backend/internal/errors"
	"github.com/rxkart/pharmacy-backend/internal/models"
	repository "github.com/rxkart/pharmacy-backend/internal/repositories"
)

// CartService owns the per-user nested quantity map. It is deliberately
// permissive about the catalog: entries are validated against the product's
// variant list at order assembly, not here, so the cart survives catalog
// drift.
type CartService struct {
	repo repository.CartRepository
}

func NewCartService(repo repository.CartRepository) *CartService {
	return &CartService{repo: repo}
}

// GetCart returns the user's cart, or an empty one if nothing has been added
// yet. A missing row is not an error.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	cart, err := s.repo.GetCartByUserID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return s.emptyCart(userID), nil
		}

		return nil, errors.DatabaseError("Failed to retrieve cart").WithError(err)
	}

	if cart.Items == nil {
		cart.Items = make(models.CartItems)
	}

	return cart, nil
}

// AddItem increments the quantity for (product, size) by one, creating the
// cart implicitly on first add.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error) {

	if strings.TrimSpace(req.Size) == "" {
		return nil, errors.ValidationError("Variant size is required")
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.Items.Add(req.ProductID, req.Size)

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		return nil, errors.DatabaseError("Failed to update cart").WithError(err)
	}

	return cart, nil
}

// UpdateQuantity overwrites the quantity for (product, size). Zero removes
// the entry; ghost zero-quantity entries are never persisted.
func (s *CartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, req *models.UpdateCartItemRequest) (*models.Cart, error) {

	if strings.TrimSpace(req.Size) == "" {
		return nil, errors.ValidationError("Variant size is required")
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.Items.Set(req.ProductID, req.Size, req.Quantity)

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		return nil, errors.DatabaseError("Failed to update cart").WithError(err)
	}

	return cart, nil
}

// ClearCart wipes the whole map. Only the order assembler (COD) and the
// payment confirmation handler call this.
func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {

	if err := s.repo.ClearCart(ctx, userID); err != nil {
		return errors.DatabaseError("Failed to clear cart").WithError(err)
	}

	return nil
}

func (s *CartService) emptyCart(userID uuid.UUID) *models.Cart {
	return &models.Cart{
		ID:        uuid.New(),
		UserID:    userID,
		Items:     make(models.CartItems),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
