package razorpay

import (
	"errors"
	"fmt"

	razorpaygo "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// GatewayOrder is the subset of the Razorpay order object the checkout flow
// needs.
type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
}

// Client creates gateway-side orders and verifies the payment signature the
// storefront posts back after the hosted checkout completes.
type Client interface {
	CreateOrder(amountMinor int64, currency, receipt string) (*GatewayOrder, error)
	VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool
}

type razorpayClient struct {
	client    *razorpaygo.Client
	keySecret string
}

func NewRazorpayClient(keyID, keySecret string) Client {
	return &razorpayClient{
		client:    razorpaygo.NewClient(keyID, keySecret),
		keySecret: keySecret,
	}
}

// CreateOrder implements Client.
func (r *razorpayClient) CreateOrder(amountMinor int64, currency, receipt string) (*GatewayOrder, error) {
	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := r.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return nil, errors.New("razorpay order response missing id")
	}

	return &GatewayOrder{
		ID:       id,
		Amount:   amountMinor,
		Currency: currency,
	}, nil
}

// VerifyPaymentSignature implements Client.
func (r *razorpayClient) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   gatewayOrderID,
		"razorpay_payment_id": paymentID,
	}

	return utils.VerifyPaymentSignature(params, signature, r.keySecret)
}
