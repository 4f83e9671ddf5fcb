package models

import (
	"time"

	"github.com/google/uuid"
)

// Variant is a purchasable pack size of a product. Size labels are unique
// within a product; the cart references products by (id, size) and resolves
// the variant at order-assembly time, never from a cached price.
type Variant struct {
	Size        string  `json:"size" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	MRP         float64 `json:"mrp" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	BatchNumber string  `json:"batch_number"`
}

type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	RequiresRx  bool      `json:"requires_rx"`
	Variants    []Variant `json:"variants"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VariantBySize returns the variant carrying the given size label.
func (p *Product) VariantBySize(size string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].Size == size {
			return &p.Variants[i], true
		}
	}

	return nil, false
}

type CreateProductRequest struct {
	Name        string    `json:"name" validate:"required,min=3,max=200"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category" validate:"required"`
	RequiresRx  bool      `json:"requires_rx"`
	Variants    []Variant `json:"variants" validate:"required,min=1,dive"`
}

type UpdateProductRequest struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=3,max=200"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	RequiresRx  *bool     `json:"requires_rx,omitempty"`
	Variants    []Variant `json:"variants,omitempty" validate:"omitempty,min=1,dive"`
	Status      *string   `json:"status,omitempty" validate:"omitempty,oneof=active inactive discontinued"`
}

type PaginatedResponse struct {
	Data     any `json:"data"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}
