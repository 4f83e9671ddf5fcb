package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/rxkart/pharmacy-backend/internal/errors"
	"github.com/rxkart/pharmacy-backend/internal/metrics"
	"github.com/rxkart/pharmacy-backend/internal/models"
	repository "github.com/rxkart/pharmacy-backend/internal/repositories"
	"github.com/rxkart/pharmacy-backend/pkg/razorpay"
	"github.com/rxkart/pharmacy-backend/pkg/stripe"
)

// Payment confirmation outcomes, as counted by the metrics.
const (
	confirmOutcomeConfirmed = "confirmed"
	confirmOutcomeReplayed  = "replayed"
	confirmOutcomeFailed    = "failed"
	confirmOutcomeIgnored   = "ignored"
	confirmOutcomeRejected  = "rejected"
)

// OrderService turns a cart into an order. Every amount on the order is
// recomputed server-side at assembly time: cart quantities against the
// current catalog, the delivery fee against the store location, the discount
// against the coupon rules. Nothing price-shaped is trusted from the client.
type OrderService struct {
	orders           repository.OrderRepository
	carts            *CartService
	products         *ProductService
	delivery         *DeliveryService
	coupons          *CouponService
	notifier         *NotificationService
	stripeClient     stripe.Client
	razorpayClient   razorpay.Client
	stripeCurrency   string
	razorpayCurrency string
}

func NewOrderService(
	orders repository.OrderRepository,
	carts *CartService,
	products *ProductService,
	delivery *DeliveryService,
	coupons *CouponService,
	notifier *NotificationService,
	stripeClient stripe.Client,
	razorpayClient razorpay.Client,
	stripeCurrency, razorpayCurrency string,
) *OrderService {
	return &OrderService{
		orders:           orders,
		carts:            carts,
		products:         products,
		delivery:         delivery,
		coupons:          coupons,
		notifier:         notifier,
		stripeClient:     stripeClient,
		razorpayClient:   razorpayClient,
		stripeCurrency:   stripeCurrency,
		razorpayCurrency: razorpayCurrency,
	}
}

// PlaceOrder assembles and persists an order from the user's cart. A COD
// order settles its checkout at placement but stays unpaid until cash is
// collected at the door; for gateway methods the order is persisted
// unconfirmed and the response carries the handle the storefront needs to
// finish payment. The cart survives until a settlement wins.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *models.PlaceOrderRequest) (*models.PlaceOrderResponse, error) {

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cart.Items.IsEmpty() {
		return nil, errors.BadRequestError("Cart is empty")
	}

	items, subtotal, err := s.resolveCartItems(ctx, cart.Items)
	if err != nil {
		return nil, err
	}

	quote, err := s.delivery.Quote(req.Address.Lat, req.Address.Lng)
	if err != nil {
		return nil, err
	}

	if !quote.Deliverable {
		return nil, errors.NotDeliverableError(quote.Message)
	}

	var discount float64
	var couponCode string

	if req.CouponCode != "" {

		result, err := s.coupons.Validate(ctx, req.CouponCode, subtotal)
		if err != nil {
			return nil, err
		}

		discount = result.Discount

		// A delivery coupon never discounts more than the fee it waives.
		if result.Type == models.CouponTypeDelivery && discount > quote.Fee {
			discount = quote.Fee
		}

		couponCode = result.Code
	}

	if discount > subtotal+quote.Fee {
		discount = subtotal + quote.Fee
	}

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Items:         items,
		Subtotal:      subtotal,
		DeliveryFee:   quote.Fee,
		Discount:      discount,
		CouponCode:    couponCode,
		TotalAmount:   subtotal + quote.Fee - discount,
		Address:       &req.Address,
		DeliverySlot:  req.DeliverySlot,
		PaymentMethod: req.PaymentMethod,
		Status:        models.OrderStatusPlaced,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, errors.DatabaseError("Failed to create order").WithError(err)
	}

	metrics.OrdersPlaced.WithLabelValues(string(order.PaymentMethod)).Inc()

	switch order.PaymentMethod {

	case models.PaymentMethodCOD:
		// Cash changes hands at the door, so the order stays unpaid here.
		// Placement happens exactly once, which makes it the COD settlement
		// point: the cart clear, coupon burn and notification run now.
		s.settleCheckout(ctx, order)

		return &models.PlaceOrderResponse{Order: order}, nil

	case models.PaymentMethodStripe:
		return s.startStripeCheckout(ctx, order)

	case models.PaymentMethodRazorpay:
		return s.startRazorpayCheckout(ctx, order)

	default:
		return nil, errors.BadRequestError("Unsupported payment method")
	}
}

func (s *OrderService) startStripeCheckout(ctx context.Context, order *models.Order) (*models.PlaceOrderResponse, error) {

	description := fmt.Sprintf("RxKart order %s", order.ID)

	session, err := s.stripeClient.CreateCheckoutSession(
		order.ID.String(), amountMinor(order.TotalAmount), s.stripeCurrency, description)
	if err != nil {
		s.discardUnpaidOrder(ctx, order.ID)

		return nil, errors.PaymentGatewayError("Failed to start card checkout").WithError(err)
	}

	if err := s.orders.SetGatewayOrderID(ctx, order.ID, session.ID); err != nil {
		return nil, errors.DatabaseError("Failed to record checkout session").WithError(err)
	}

	order.GatewayOrderID = session.ID

	return &models.PlaceOrderResponse{
		Order:       order,
		CheckoutURL: session.URL,
	}, nil
}

func (s *OrderService) startRazorpayCheckout(ctx context.Context, order *models.Order) (*models.PlaceOrderResponse, error) {

	gatewayOrder, err := s.razorpayClient.CreateOrder(
		amountMinor(order.TotalAmount), s.razorpayCurrency, order.ID.String())
	if err != nil {
		s.discardUnpaidOrder(ctx, order.ID)

		return nil, errors.PaymentGatewayError("Failed to start UPI checkout").WithError(err)
	}

	if err := s.orders.SetGatewayOrderID(ctx, order.ID, gatewayOrder.ID); err != nil {
		return nil, errors.DatabaseError("Failed to record gateway order").WithError(err)
	}

	order.GatewayOrderID = gatewayOrder.ID

	return &models.PlaceOrderResponse{
		Order:          order,
		GatewayOrderID: gatewayOrder.ID,
	}, nil
}

// ConfirmPayment settles an order exactly once. Webhook redeliveries and
// success-page refreshes all land here; only the caller that wins the
// payment_confirmed flip clears the cart, burns the coupon and notifies.
func (s *OrderService) ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	won, err := s.orders.MarkPaymentConfirmed(ctx, orderID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to confirm payment").WithError(err)
	}

	if !won {
		metrics.PaymentConfirmations.WithLabelValues(confirmOutcomeReplayed).Inc()

		return order, nil
	}

	metrics.PaymentConfirmations.WithLabelValues(confirmOutcomeConfirmed).Inc()

	order.PaymentConfirmed = true

	s.settleCheckout(ctx, order)

	return order, nil
}

// settleCheckout runs the side effects of a won checkout: clear the cart,
// burn the coupon, notify the customer. Callers guarantee it runs at most
// once per order, either by the payment_confirmed flip or by placement
// itself for COD.
func (s *OrderService) settleCheckout(ctx context.Context, order *models.Order) {

	// The order is already committed; a failed cart clear is an annoyance,
	// not a reason to report the settlement as failed.
	if err := s.carts.ClearCart(ctx, order.UserID); err != nil {
		slog.Error("Failed to clear cart after checkout settlement",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()))
	}

	if order.CouponCode != "" {
		s.coupons.Redeem(ctx, order.CouponCode)
	}

	s.notifier.NotifyOrderConfirmed(ctx, order)
}

// ConfirmPaymentFailure discards an order whose gateway payment did not go
// through. A confirmed order is never deleted; a late failure callback for
// one is counted and dropped. It trusts its caller: the webhook path has a
// verified gateway signature and ReportRazorpayFailure checks ownership
// before delegating here.
func (s *OrderService) ConfirmPaymentFailure(ctx context.Context, orderID uuid.UUID) error {

	deleted, err := s.orders.DeleteIfUnconfirmed(ctx, orderID)
	if err != nil {
		return errors.DatabaseError("Failed to discard order").WithError(err)
	}

	if deleted {
		metrics.PaymentConfirmations.WithLabelValues(confirmOutcomeFailed).Inc()
	} else {
		metrics.PaymentConfirmations.WithLabelValues(confirmOutcomeIgnored).Inc()
	}

	return nil
}

// ReportRazorpayFailure discards the caller's own unpaid order after the
// storefront reports a failed checkout. The order must belong to the caller
// and the reported gateway order must be the one issued at checkout.
func (s *OrderService) ReportRazorpayFailure(ctx context.Context, orderID, userID uuid.UUID, gatewayOrderID string) error {

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if order.UserID != userID {
		return errors.ForbiddenError("You do not have access to this order")
	}

	if order.GatewayOrderID == "" || order.GatewayOrderID != gatewayOrderID {
		metrics.PaymentConfirmations.WithLabelValues(confirmOutcomeRejected).Inc()

		return errors.UnauthorizedError("Payment does not belong to this order")
	}

	return s.ConfirmPaymentFailure(ctx, orderID)
}

// ConfirmRazorpayPayment verifies the signature the storefront posts back
// after the hosted checkout and settles the order on success.
func (s *OrderService) ConfirmRazorpayPayment(ctx context.Context, req *models.RazorpayCallbackRequest) (*models.Order, error) {

	order, err := s.getOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if order.GatewayOrderID == "" || order.GatewayOrderID != req.RazorpayOrderID {
		metrics.PaymentConfirmations.WithLabelValues(confirmOutcomeRejected).Inc()

		return nil, errors.UnauthorizedError("Payment does not belong to this order")
	}

	if !s.razorpayClient.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		metrics.PaymentConfirmations.WithLabelValues(confirmOutcomeRejected).Inc()

		return nil, errors.UnauthorizedError("Invalid payment signature")
	}

	return s.ConfirmPayment(ctx, req.OrderID)
}

// HandleStripeWebhook verifies and dispatches a Stripe event. Unhandled
// event types are acknowledged without action so Stripe stops retrying them.
func (s *OrderService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {

	event, err := s.stripeClient.VerifyWebhookSignature(payload, signature)
	if err != nil {
		metrics.PaymentConfirmations.WithLabelValues(confirmOutcomeRejected).Inc()

		return errors.UnauthorizedError("Invalid webhook signature").WithError(err)
	}

	switch event.Type {

	case "checkout.session.completed":
		orderID, err := orderIDFromStripeEvent(event)
		if err != nil {
			return err
		}

		_, err = s.ConfirmPayment(ctx, orderID)

		return err

	case "checkout.session.expired":
		orderID, err := orderIDFromStripeEvent(event)
		if err != nil {
			return err
		}

		return s.ConfirmPaymentFailure(ctx, orderID)

	default:
		slog.Debug("Ignoring stripe event", slog.String("type", string(event.Type)))

		return nil
	}
}

// GetOrder returns the order if the caller owns it or is an admin.
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*models.Order, error) {

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && order.UserID != userID {
		return nil, errors.ForbiddenError("You do not have access to this order")
	}

	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error) {

	if page < 1 {
		page = 1
	}

	if size < 1 || size > 100 {
		size = 20
	}

	orders, total, err := s.orders.ListOrdersByUser(ctx, userID, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, total, nil
}

// UpdateStatus moves an order along the fulfillment chain. Forward steps go
// one stage at a time; cancellation is allowed from any state that has not
// already reached the customer.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, error) {

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !canTransition(order.Status, req.Status) {
		return nil, errors.BadRequestError(
			fmt.Sprintf("Cannot move order from '%s' to '%s'", order.Status, req.Status))
	}

	reason := ""
	if req.Status == models.OrderStatusCancelled {
		reason = req.Reason
	}

	if err := s.orders.UpdateStatus(ctx, orderID, req.Status, reason); err != nil {
		return nil, errors.DatabaseError("Failed to update order status").WithError(err)
	}

	order.Status = req.Status
	order.CancellationReason = reason

	return order, nil
}

// AttachPrescription links an uploaded prescription to the caller's order.
func (s *OrderService) AttachPrescription(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool, prescriptionID uuid.UUID) (*models.Order, error) {

	order, err := s.GetOrder(ctx, orderID, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	if order.Status == models.OrderStatusDelivered || order.Status == models.OrderStatusCancelled {
		return nil, errors.BadRequestError("Cannot attach a prescription to a closed order")
	}

	if err := s.orders.AttachPrescription(ctx, orderID, prescriptionID); err != nil {
		return nil, errors.DatabaseError("Failed to attach prescription").WithError(err)
	}

	order.PrescriptionID = &prescriptionID

	return order, nil
}

// CartSubtotal resolves the caller's cart against the catalog and returns
// what the order subtotal would be. The storefront uses it to preview a
// coupon before checkout.
func (s *OrderService) CartSubtotal(ctx context.Context, userID uuid.UUID) (float64, error) {

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return 0, err
	}

	if cart.Items.IsEmpty() {
		return 0, errors.BadRequestError("Cart is empty")
	}

	_, subtotal, err := s.resolveCartItems(ctx, cart.Items)
	if err != nil {
		return 0, err
	}

	return subtotal, nil
}

// resolveCartItems snapshots each cart line against the current catalog. Any
// line the catalog no longer backs fails the whole assembly; the cart is
// left intact for the user to fix.
func (s *OrderService) resolveCartItems(ctx context.Context, items models.CartItems) ([]models.OrderItem, float64, error) {

	productIDs := make([]string, 0, len(items))
	for id := range items {
		productIDs = append(productIDs, id)
	}

	sort.Strings(productIDs)

	var resolved []models.OrderItem
	var subtotal float64

	for _, rawID := range productIDs {

		productID, err := uuid.Parse(rawID)
		if err != nil {
			return nil, 0, errors.CatalogMismatchError("Cart references an invalid product")
		}

		product, err := s.products.GetProductByID(ctx, productID)
		if err != nil {
			if appErr, ok := errors.IsAppError(err); ok && appErr.Code == errors.ErrCodeNotFound {
				return nil, 0, errors.CatalogMismatchError("A product in your cart is no longer available")
			}

			return nil, 0, err
		}

		if product.Status != "active" {
			return nil, 0, errors.CatalogMismatchError(
				fmt.Sprintf("'%s' is no longer available", product.Name))
		}

		sizes := make([]string, 0, len(items[rawID]))
		for size := range items[rawID] {
			sizes = append(sizes, size)
		}

		sort.Strings(sizes)

		for _, size := range sizes {

			quantity := items[rawID][size]
			if quantity <= 0 {
				continue
			}

			variant, ok := product.VariantBySize(size)
			if !ok {
				return nil, 0, errors.CatalogMismatchError(
					fmt.Sprintf("'%s' is no longer offered in size '%s'", product.Name, size))
			}

			resolved = append(resolved, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Size:      size,
				UnitPrice: variant.Price,
				Quantity:  quantity,
			})

			subtotal += variant.Price * float64(quantity)
		}
	}

	if len(resolved) == 0 {
		return nil, 0, errors.BadRequestError("Cart is empty")
	}

	return resolved, subtotal, nil
}

func (s *OrderService) getOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundError("Order not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to retrieve order").WithError(err)
	}

	return order, nil
}

func (s *OrderService) discardUnpaidOrder(ctx context.Context, orderID uuid.UUID) {
	if _, err := s.orders.DeleteIfUnconfirmed(ctx, orderID); err != nil {
		slog.Error("Failed to discard order after gateway error",
			slog.String("order_id", orderID.String()),
			slog.String("error", err.Error()))
	}
}

var fulfillmentNext = map[models.OrderStatus]models.OrderStatus{
	models.OrderStatusPlaced:         models.OrderStatusPacking,
	models.OrderStatusPacking:        models.OrderStatusShipped,
	models.OrderStatusShipped:        models.OrderStatusOutForDelivery,
	models.OrderStatusOutForDelivery: models.OrderStatusDelivered,
}

func canTransition(from, to models.OrderStatus) bool {

	if to == models.OrderStatusCancelled {
		return from != models.OrderStatusDelivered && from != models.OrderStatusCancelled
	}

	return fulfillmentNext[from] == to
}

func amountMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func orderIDFromStripeEvent(event stripe.Event) (uuid.UUID, error) {

	var session struct {
		ClientReferenceID string `json:"client_reference_id"`
	}

	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return uuid.Nil, errors.BadRequestError("Malformed webhook payload").WithError(err)
	}

	orderID, err := uuid.Parse(session.ClientReferenceID)
	if err != nil {
		return uuid.Nil, errors.BadRequestError("Webhook payload carries no order reference").WithError(err)
	}

	return orderID, nil
}
