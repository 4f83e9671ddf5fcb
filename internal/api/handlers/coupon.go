package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rxkart/pharmacy-backend/internal/api/middleware"
	"github.com/rxkart/pharmacy-backend/internal/errors"
	"github.com/rxkart/pharmacy-backend/internal/models"
	service "github.com/rxkart/pharmacy-backend/internal/services"
	"github.com/rxkart/pharmacy-backend/internal/utils"
	"github.com/rxkart/pharmacy-backend/internal/utils/response"
)

type CouponHandler struct {
	couponService *service.CouponService
	orderService  *service.OrderService
	validator     *validator.Validate
}

func NewCouponHandler(couponService *service.CouponService, orderService *service.OrderService) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
		orderService:  orderService,
		validator:     validator.New(),
	}
}

// CreateCoupon godoc
//	@Summary		Create a coupon (Admin)
//	@Description	Adds a coupon code with its discount rule. Requires admin access.
//	@Tags			Coupons
//	@Accept			json
//	@Produce		json
//	@Param			coupon	body		models.CreateCouponRequest	true	"Coupon Details"
//	@Success		201		{object}	models.Coupon				"Successfully created coupon"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error"
//	@Failure		403		{object}	response.ErrorResponse		"Admin access required"
//	@Failure		409		{object}	response.ErrorResponse		"Code already exists"
//	@Security		BearerAuth
//	@Router			/coupons [post]
func (h *CouponHandler) CreateCoupon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.CreateCouponRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid create coupon input")
			return
		}

		coupon, err := h.couponService.CreateCoupon(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to create coupon", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Coupon created", slog.String("code", coupon.Code))
		response.Success(w, http.StatusCreated, coupon)
	}
}

func (h *CouponHandler) GetCoupon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		code := r.PathValue("code")
		if code == "" {
			response.Error(w, errors.BadRequestError("Coupon code is required"))
			return
		}

		coupon, err := h.couponService.GetCoupon(r.Context(), code)
		if err != nil {
			logger.Error("Failed to get coupon", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, coupon)
	}
}

func (h *CouponHandler) UpdateCoupon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		code := r.PathValue("code")
		if code == "" {
			response.Error(w, errors.BadRequestError("Coupon code is required"))
			return
		}

		var req models.UpdateCouponRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update coupon input")
			return
		}

		coupon, err := h.couponService.UpdateCoupon(r.Context(), code, &req)
		if err != nil {
			logger.Error("Failed to update coupon", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Coupon updated", slog.String("code", coupon.Code))
		response.Success(w, http.StatusOK, coupon)
	}
}

func (h *CouponHandler) ListCoupons() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}
		pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
		if err != nil || pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}

		coupons, total, err := h.couponService.ListCoupons(r.Context(), page, pageSize)
		if err != nil {
			logger.Error("Failed to list coupons", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{
			Data:     coupons,
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		})
	}
}

// ApplyCoupon godoc
//	@Summary		Check a coupon against the current cart
//	@Description	Validates the code against the caller's cart subtotal and returns the discount it would grant. Nothing is persisted; the order assembler re-validates at checkout.
//	@Tags			Coupons
//	@Accept			json
//	@Produce		json
//	@Param			coupon	body		models.ApplyCouponRequest	true	"Coupon code"
//	@Success		200		{object}	models.CouponResult			"Coupon accepted"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Failure		422		{object}	response.ErrorResponse		"Coupon rejected, reason in details"
//	@Security		BearerAuth
//	@Router			/coupons/apply [post]
func (h *CouponHandler) ApplyCoupon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			logger.Warn("Unauthorized coupon check attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.ApplyCouponRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid apply coupon input")
			return
		}

		subtotal, err := h.orderService.CartSubtotal(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("Failed to compute cart subtotal", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		result, err := h.couponService.Validate(r.Context(), req.Code, subtotal)
		if err != nil {
			logger.Warn("Coupon rejected", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, result)
	}
}
