package models

import (
	"strings"
	"time"
)

type CouponType string

const (
	CouponTypePercent  CouponType = "percent"
	CouponTypeFlat     CouponType = "flat"
	CouponTypeDelivery CouponType = "delivery"
)

// Coupon is one document per code. Codes are stored upper-cased and matched
// case-insensitively. UsedCount only ever increases and never passes
// UsageLimit when the latter is set; the increment is a store-level atomic.
type Coupon struct {
	Code        string     `json:"code"`
	Type        CouponType `json:"type"`
	Value       float64    `json:"value"`
	MinOrder    float64    `json:"min_order"`
	MaxDiscount *float64   `json:"max_discount,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UsageLimit  *int       `json:"usage_limit,omitempty"`
	UsedCount   int        `json:"used_count"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NormalizeCouponCode upper-cases and trims a user-supplied code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CouponResult is the outcome of a successful validation: the discount the
// assembler should apply. For delivery coupons Discount is the raw value and
// the assembler caps it at the fee of record.
type CouponResult struct {
	Code     string     `json:"code"`
	Type     CouponType `json:"type"`
	Value    float64    `json:"value"`
	Discount float64    `json:"discount"`
}

type CreateCouponRequest struct {
	Code        string     `json:"code" validate:"required,min=3,max=32"`
	Type        CouponType `json:"type" validate:"required,oneof=percent flat delivery"`
	Value       float64    `json:"value" validate:"required,gt=0"`
	MinOrder    float64    `json:"min_order" validate:"gte=0"`
	MaxDiscount *float64   `json:"max_discount,omitempty" validate:"omitempty,gt=0"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UsageLimit  *int       `json:"usage_limit,omitempty" validate:"omitempty,gt=0"`
}

type UpdateCouponRequest struct {
	Value       *float64   `json:"value,omitempty" validate:"omitempty,gt=0"`
	MinOrder    *float64   `json:"min_order,omitempty" validate:"omitempty,gte=0"`
	MaxDiscount *float64   `json:"max_discount,omitempty" validate:"omitempty,gt=0"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UsageLimit  *int       `json:"usage_limit,omitempty" validate:"omitempty,gt=0"`
	Active      *bool      `json:"active,omitempty"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}
