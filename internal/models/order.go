package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

type OrderStatus string

const (
	PaymentMethodCOD      PaymentMethod = "cod"
	PaymentMethodStripe   PaymentMethod = "stripe"
	PaymentMethodRazorpay PaymentMethod = "razorpay"

	OrderStatusPlaced         OrderStatus = "placed"
	OrderStatusPacking        OrderStatus = "packing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

type Address struct {
	Street  string   `json:"street" validate:"required"`
	City    string   `json:"city" validate:"required"`
	State   string   `json:"state" validate:"required"`
	Pincode string   `json:"pincode" validate:"required"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// OrderItem is a snapshot of a resolved cart line: name and unit price are
// copied from the catalog at assembly time.
type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Size      string    `json:"size"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
}

type Order struct {
	ID                 uuid.UUID     `json:"id"`
	UserID             uuid.UUID     `json:"user_id"`
	Items              []OrderItem   `json:"items"`
	Subtotal           float64       `json:"subtotal"`
	DeliveryFee        float64       `json:"delivery_fee"`
	Discount           float64       `json:"discount"`
	CouponCode         string        `json:"coupon_code,omitempty"`
	TotalAmount        float64       `json:"total_amount"`
	Address            *Address      `json:"address"`
	DeliverySlot       string        `json:"delivery_slot"`
	PaymentMethod      PaymentMethod `json:"payment_method"`
	PaymentConfirmed   bool          `json:"payment_confirmed"`
	GatewayOrderID     string        `json:"gateway_order_id,omitempty"`
	Status             OrderStatus   `json:"status"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	PrescriptionID     *uuid.UUID    `json:"prescription_id,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

type PlaceOrderRequest struct {
	Address       Address       `json:"address" validate:"required"`
	DeliverySlot  string        `json:"delivery_slot" validate:"required"`
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required,oneof=cod stripe razorpay"`
	CouponCode    string        `json:"coupon_code,omitempty"`
}

// PlaceOrderResponse carries the persisted order plus, for gateway methods,
// the handle the storefront needs to finish payment.
type PlaceOrderResponse struct {
	Order          *Order `json:"order"`
	CheckoutURL    string `json:"checkout_url,omitempty"`
	GatewayOrderID string `json:"gateway_order_id,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=placed packing shipped out_for_delivery delivered cancelled"`
	Reason string      `json:"reason,omitempty"`
}

type AttachPrescriptionRequest struct {
	PrescriptionID uuid.UUID `json:"prescription_id" validate:"required"`
}

// RazorpayFailureRequest names the gateway order the storefront saw fail,
// as evidence the caller really went through that checkout.
type RazorpayFailureRequest struct {
	RazorpayOrderID string `json:"razorpay_order_id" validate:"required"`
}

type RazorpayCallbackRequest struct {
	OrderID           uuid.UUID `json:"order_id" validate:"required"`
	RazorpayOrderID   string    `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string    `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string    `json:"razorpay_signature" validate:"required"`
}
