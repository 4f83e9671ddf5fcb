package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rxkart/pharmacy-backend/internal/models"
	"github.com/rxkart/pharmacy-backend/internal/utils"
)

type CouponRepository interface {
	CreateCoupon(ctx context.Context, coupon *models.Coupon) error
	GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	UpdateCoupon(ctx context.Context, coupon *models.Coupon) error
	ListCoupons(ctx context.Context, page, size int) ([]models.Coupon, int, error)
	IncrementUsage(ctx context.Context, code string) (bool, error)
}

type couponRepository struct {
	DB *sql.DB
}

func NewCouponRepo(db *sql.DB) CouponRepository {
	return &couponRepository{DB: db}
}

func (r *couponRepository) CreateCoupon(ctx context.Context, coupon *models.Coupon) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO coupons (code, type, value, min_order, max_discount, expires_at, usage_limit, used_count, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, TRUE, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query,
		coupon.Code, coupon.Type, coupon.Value, coupon.MinOrder,
		coupon.MaxDiscount, coupon.ExpiresAt, coupon.UsageLimit,
	).Scan(&coupon.CreatedAt, &coupon.UpdatedAt)
}

func (r *couponRepository) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT code, type, value, min_order, max_discount, expires_at, usage_limit, used_count, active, created_at, updated_at
		FROM coupons
		WHERE code = $1
	`

	coupon := &models.Coupon{}

	err := r.DB.QueryRowContext(dbCtx, query, models.NormalizeCouponCode(code)).Scan(
		&coupon.Code, &coupon.Type, &coupon.Value, &coupon.MinOrder,
		&coupon.MaxDiscount, &coupon.ExpiresAt, &coupon.UsageLimit,
		&coupon.UsedCount, &coupon.Active, &coupon.CreatedAt, &coupon.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return coupon, nil
}

func (r *couponRepository) UpdateCoupon(ctx context.Context, coupon *models.Coupon) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE coupons
		SET value = $1, min_order = $2, max_discount = $3, expires_at = $4, usage_limit = $5, active = $6, updated_at = $7
		WHERE code = $8
	`

	result, err := r.DB.ExecContext(dbCtx, query,
		coupon.Value, coupon.MinOrder, coupon.MaxDiscount,
		coupon.ExpiresAt, coupon.UsageLimit, coupon.Active,
		time.Now(), coupon.Code,
	)
	if err != nil {
		return fmt.Errorf("failed to update the coupon: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *couponRepository) ListCoupons(ctx context.Context, page, size int) ([]models.Coupon, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `SELECT COUNT(*) FROM coupons`
	if err := r.DB.QueryRowContext(dbCtx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	offset := (page - 1) * size

	query := `
		SELECT code, type, value, min_order, max_discount, expires_at, usage_limit, used_count, active, created_at, updated_at
		FROM coupons
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.DB.QueryContext(dbCtx, query, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}

	defer rows.Close()

	var coupons []models.Coupon

	for rows.Next() {

		var coupon models.Coupon

		err := rows.Scan(
			&coupon.Code, &coupon.Type, &coupon.Value, &coupon.MinOrder,
			&coupon.MaxDiscount, &coupon.ExpiresAt, &coupon.UsageLimit,
			&coupon.UsedCount, &coupon.Active, &coupon.CreatedAt, &coupon.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan coupon: %w", err)
		}

		coupons = append(coupons, coupon)

	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return coupons, total, nil
}

// IncrementUsage bumps used_count by exactly one, guarded in SQL so the
// count can never pass usage_limit no matter how many orders race on the
// same code. Returns false when the row is missing or the limit is already
// exhausted.
func (r *couponRepository) IncrementUsage(ctx context.Context, code string) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE code = $1
		  AND (usage_limit IS NULL OR used_count < usage_limit)
	`

	result, err := r.DB.ExecContext(dbCtx, query, models.NormalizeCouponCode(code))
	if err != nil {
		return false, fmt.Errorf("failed to increment coupon usage: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get updated rows: %w", err)
	}

	return updatedRows > 0, nil
}
