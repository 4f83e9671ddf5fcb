package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rxkart/pharmacy-backend/internal/api/middleware"
	"github.com/rxkart/pharmacy-backend/internal/errors"
	"github.com/rxkart/pharmacy-backend/internal/models"
	service "github.com/rxkart/pharmacy-backend/internal/services"
	"github.com/rxkart/pharmacy-backend/internal/utils"
	"github.com/rxkart/pharmacy-backend/internal/utils/response"
)

type PaymentHandler struct {
	orderService *service.OrderService
	validator    *validator.Validate
}

func NewPaymentHandler(orderService *service.OrderService) *PaymentHandler {
	return &PaymentHandler{orderService: orderService, validator: validator.New()}
}

// HandleStripeWebhook godoc
//	@Summary		Stripe webhook endpoint
//	@Description	Receives checkout session events from Stripe. Completed sessions confirm the order; expired sessions discard it. Redeliveries are acknowledged without side effects.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	response.APIResponse	"Event processed"
//	@Failure		400	{object}	response.ErrorResponse	"Missing signature or unreadable body"
//	@Failure		401	{object}	response.ErrorResponse	"Invalid webhook signature"
//	@Router			/payments/stripe/webhook [post]
func (h *PaymentHandler) HandleStripeWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Error("Error reading webhook body", slog.String("error", err.Error()))
			response.Error(w, errors.BadRequestError("Failed to read request body"))
			return
		}

		signature := r.Header.Get("Stripe-Signature")
		if signature == "" {
			logger.Error("Missing Stripe signature")
			response.Error(w, errors.BadRequestError("Stripe Signature is required"))
			return
		}

		if err := h.orderService.HandleStripeWebhook(r.Context(), payload, signature); err != nil {
			logger.Error("Failed to process payment webhook", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Payment webhook processed")
		response.Success(w, http.StatusOK, map[string]bool{"received": true})
	}
}

// ConfirmRazorpayPayment godoc
//	@Summary		Razorpay payment callback
//	@Description	Verifies the signature the storefront posts back after a Razorpay checkout and confirms the order. Replays are acknowledged without side effects.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			callback	body		models.RazorpayCallbackRequest	true	"Razorpay order, payment and signature"
//	@Success		200			{object}	models.Order					"Order confirmed"
//	@Failure		401			{object}	response.ErrorResponse			"Invalid payment signature"
//	@Failure		404			{object}	response.ErrorResponse			"Order not found"
//	@Router			/payments/razorpay/callback [post]
func (h *PaymentHandler) ConfirmRazorpayPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.RazorpayCallbackRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid razorpay callback input")
			return
		}

		order, err := h.orderService.ConfirmRazorpayPayment(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to confirm razorpay payment",
				slog.String("orderId", req.OrderID.String()),
				slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Razorpay payment confirmed", slog.String("orderId", order.ID.String()))
		response.Success(w, http.StatusOK, order)
	}
}

// ReportRazorpayFailure discards an unpaid order the storefront reports as
// failed. Only the order's owner can report it, and the reported gateway
// order must match the one issued at checkout. A confirmed order is left
// untouched.
func (h *PaymentHandler) ReportRazorpayFailure() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			logger.Warn("Unauthorized payment failure report")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid order id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		var req models.RazorpayFailureRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid razorpay failure input")
			return
		}

		if err := h.orderService.ReportRazorpayFailure(r.Context(), id, claims.UserID, req.RazorpayOrderID); err != nil {
			logger.Error("Failed to discard unpaid order", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Unpaid order discarded", slog.String("orderId", id.String()))
		response.Success(w, http.StatusOK, map[string]bool{"discarded": true})
	}
}
