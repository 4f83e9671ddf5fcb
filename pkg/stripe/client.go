package stripe

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
)

type Event = stripe.Event

// Client wraps the hosted-checkout flow: the order is persisted first, then a
// Checkout Session is created carrying the order id, and the webhook reports
// the outcome asynchronously.
type Client interface {
	CreateCheckoutSession(orderID string, amountMinor int64, currency, description string) (*stripe.CheckoutSession, error)
	VerifyWebhookSignature(payload []byte, signature string) (Event, error)
}

type stripeClient struct {
	webhookSecret string
	successURL    string
	cancelURL     string
}

func NewStripeClient(apiKey, webhookSecret, successURL, cancelURL string) Client {
	stripe.Key = apiKey

	return &stripeClient{
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
	}
}

// CreateCheckoutSession implements Client.
func (s *stripeClient) CreateCheckoutSession(orderID string, amountMinor int64, currency, description string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(orderID),
		SuccessURL:        stripe.String(fmt.Sprintf("%s?order_id=%s", s.successURL, orderID)),
		CancelURL:         stripe.String(fmt.Sprintf("%s?order_id=%s", s.cancelURL, orderID)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(amountMinor),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}

	return session.New(params)
}

// VerifyWebhookSignature implements Client.
func (s *stripeClient) VerifyWebhookSignature(payload []byte, signature string) (Event, error) {
	if s.webhookSecret == "" {
		return Event{}, errors.New("webhook secret not configured")
	}

	return webhook.ConstructEvent(payload, signature, s.webhookSecret)
}
