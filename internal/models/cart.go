package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItems maps product id -> size label -> quantity. Quantities are always
// positive while present; setting a quantity to zero deletes the entry so the
// stored document never carries zero-quantity ghosts.
type CartItems map[string]map[string]int

type Cart struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Items     CartItems `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Add increments the quantity for (productID, size) by one, creating nested
// entries as needed.
func (c CartItems) Add(productID uuid.UUID, size string) {
	key := productID.String()
	if c[key] == nil {
		c[key] = make(map[string]int)
	}

	c[key][size]++
}

// Set overwrites the quantity for (productID, size). Zero or negative
// quantities delete the entry, and an emptied product map is dropped too.
func (c CartItems) Set(productID uuid.UUID, size string, quantity int) {
	key := productID.String()

	if quantity <= 0 {
		if c[key] != nil {
			delete(c[key], size)

			if len(c[key]) == 0 {
				delete(c, key)
			}
		}

		return
	}

	if c[key] == nil {
		c[key] = make(map[string]int)
	}

	c[key][size] = quantity
}

func (c CartItems) Quantity(productID uuid.UUID, size string) int {
	return c[productID.String()][size]
}

func (c CartItems) IsEmpty() bool {
	for _, sizes := range c {
		for _, qty := range sizes {
			if qty > 0 {
				return false
			}
		}
	}

	return true
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Size      string    `json:"size" validate:"required"`
}

type UpdateCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Size      string    `json:"size" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=0"`
}
