package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/lib/pq"
	"github.com/rxkart/pharmacy-backend/internal/cache"
	"github.com/rxkart/pharmacy-backend/internal/errors"
	"github.com/rxkart/pharmacy-backend/internal/metrics"
	"github.com/rxkart/pharmacy-backend/internal/models"
	repository "github.com/rxkart/pharmacy-backend/internal/repositories"
)

const couponCacheTTL = 1 * time.Minute

// CouponService validates codes against an order subtotal and computes the
// discount. Validation is advisory: the usage limit is finally enforced by
// the atomic increment at redemption, so a short-lived cached read here is
// safe.
type CouponService struct {
	repo  repository.CouponRepository
	cache cache.Cache
}

func NewCouponService(repo repository.CouponRepository, couponCache cache.Cache) *CouponService {
	return &CouponService{repo: repo, cache: couponCache}
}

// Validate checks a code against the rejection rules in order: unknown code,
// expired, usage limit reached, subtotal below minimum. The first failing
// rule wins and is reported as the machine-readable reason.
func (s *CouponService) Validate(ctx context.Context, code string, subtotal float64) (*models.CouponResult, error) {

	normalized := models.NormalizeCouponCode(code)

	if normalized == "" {
		return nil, s.reject(errors.CouponReasonNotFound, "Invalid coupon code")
	}

	coupon, err := s.getCoupon(ctx, normalized)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, s.reject(errors.CouponReasonNotFound, "Invalid coupon code")
		}

		return nil, errors.DatabaseError("Failed to look up coupon").WithError(err)
	}

	if !coupon.Active {
		return nil, s.reject(errors.CouponReasonNotFound, "Invalid coupon code")
	}

	if coupon.ExpiresAt != nil && time.Now().After(*coupon.ExpiresAt) {
		return nil, s.reject(errors.CouponReasonExpired, "This coupon has expired")
	}

	if coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit {
		return nil, s.reject(errors.CouponReasonLimitReached, "This coupon has reached its usage limit")
	}

	if subtotal < coupon.MinOrder {
		return nil, s.reject(errors.CouponReasonBelowMinimum,
			fmt.Sprintf("Minimum order of ₹%g required", coupon.MinOrder))
	}

	return &models.CouponResult{
		Code:     coupon.Code,
		Type:     coupon.Type,
		Value:    coupon.Value,
		Discount: computeDiscount(coupon, subtotal),
	}, nil
}

// Redeem burns one use of the code after an order wins its confirmation. A
// missing or exhausted code is logged and swallowed: the order is already
// paid, the discount already applied, and failing here would only strand it.
func (s *CouponService) Redeem(ctx context.Context, code string) {

	normalized := models.NormalizeCouponCode(code)

	incremented, err := s.repo.IncrementUsage(ctx, normalized)
	if err != nil {
		slog.Error("Failed to increment coupon usage",
			slog.String("code", normalized), slog.String("error", err.Error()))

		return
	}

	if !incremented {
		slog.Warn("Coupon usage increment was a no-op",
			slog.String("code", normalized))
	}

	s.invalidate(ctx, normalized)
}

func (s *CouponService) CreateCoupon(ctx context.Context, req *models.CreateCouponRequest) (*models.Coupon, error) {

	coupon := &models.Coupon{
		Code:        models.NormalizeCouponCode(req.Code),
		Type:        req.Type,
		Value:       req.Value,
		MinOrder:    req.MinOrder,
		MaxDiscount: req.MaxDiscount,
		ExpiresAt:   req.ExpiresAt,
		UsageLimit:  req.UsageLimit,
		Active:      true,
	}

	if coupon.Type == models.CouponTypePercent && coupon.Value > 100 {
		return nil, errors.ValidationError("Percent coupon value cannot exceed 100")
	}

	if err := s.repo.CreateCoupon(ctx, coupon); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return nil, errors.DuplicateEntryError("A coupon with this code already exists").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to create coupon").WithError(err)
	}

	return coupon, nil
}

func (s *CouponService) GetCoupon(ctx context.Context, code string) (*models.Coupon, error) {

	coupon, err := s.repo.GetCouponByCode(ctx, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundError("Coupon not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to retrieve coupon").WithError(err)
	}

	return coupon, nil
}

func (s *CouponService) UpdateCoupon(ctx context.Context, code string, req *models.UpdateCouponRequest) (*models.Coupon, error) {

	coupon, err := s.GetCoupon(ctx, code)
	if err != nil {
		return nil, err
	}

	if req.Value != nil {
		coupon.Value = *req.Value
	}

	if req.MinOrder != nil {
		coupon.MinOrder = *req.MinOrder
	}

	if req.MaxDiscount != nil {
		coupon.MaxDiscount = req.MaxDiscount
	}

	if req.ExpiresAt != nil {
		coupon.ExpiresAt = req.ExpiresAt
	}

	if req.UsageLimit != nil {
		coupon.UsageLimit = req.UsageLimit
	}

	if req.Active != nil {
		coupon.Active = *req.Active
	}

	if coupon.Type == models.CouponTypePercent && coupon.Value > 100 {
		return nil, errors.ValidationError("Percent coupon value cannot exceed 100")
	}

	if err := s.repo.UpdateCoupon(ctx, coupon); err != nil {
		return nil, errors.DatabaseError("Failed to update coupon").WithError(err)
	}

	s.invalidate(ctx, coupon.Code)

	return coupon, nil
}

func (s *CouponService) ListCoupons(ctx context.Context, page, size int) ([]models.Coupon, int, error) {

	if page < 1 {
		page = 1
	}

	if size < 1 || size > 100 {
		size = 20
	}

	coupons, total, err := s.repo.ListCoupons(ctx, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch coupons").WithError(err)
	}

	return coupons, total, nil
}

func (s *CouponService) getCoupon(ctx context.Context, code string) (*models.Coupon, error) {

	key := cache.Key(cache.CouponKeyPrefix, code)

	var cached models.Coupon

	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		slog.Warn("Coupon cache read failed", slog.String("error", err.Error()))
	}

	if found {
		return &cached, nil
	}

	coupon, err := s.repo.GetCouponByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, coupon, couponCacheTTL); err != nil {
		slog.Warn("Coupon cache write failed", slog.String("error", err.Error()))
	}

	return coupon, nil
}

func (s *CouponService) invalidate(ctx context.Context, code string) {
	if err := s.cache.Delete(ctx, cache.Key(cache.CouponKeyPrefix, code)); err != nil {
		slog.Warn("Coupon cache invalidation failed", slog.String("error", err.Error()))
	}
}

func (s *CouponService) reject(reason, message string) *errors.AppError {
	metrics.CouponRejections.WithLabelValues(reason).Inc()

	return errors.CouponRejectedError(reason, message)
}

// computeDiscount applies the type-specific rule. Percent discounts are
// rounded to the nearest rupee and capped by max_discount when set; flat
// discounts are taken as-is; delivery discounts return the raw value and the
// order assembler caps it at the delivery fee of record.
func computeDiscount(coupon *models.Coupon, subtotal float64) float64 {

	switch coupon.Type {
	case models.CouponTypePercent:
		discount := math.Round(subtotal * coupon.Value / 100)

		if coupon.MaxDiscount != nil && discount > *coupon.MaxDiscount {
			discount = *coupon.MaxDiscount
		}

		return discount

	case models.CouponTypeFlat:
		return coupon.Value

	case models.CouponTypeDelivery:
		return coupon.Value

	default:
		return 0
	}
}
