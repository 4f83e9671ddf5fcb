package repository

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rxkart/pharmacy-backend/internal/config"
)

type Repositories struct {
	DB           *sql.DB
	User         UserRepository
	Product      ProductRepository
	Cart         CartRepository
	Coupon       CouponRepository
	Order        OrderRepository
	Notification NotificationRepository
}

func New(cfg *config.Config) (*Repositories, error) {

	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	// Test the connection to make sure DB is reachable
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := initSchema(db); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Repositories{
		DB:           db,
		User:         NewUserRepo(db),
		Product:      NewProductRepo(db),
		Cart:         NewCartRepo(db),
		Coupon:       NewCouponRepo(db),
		Order:        NewOrderRepo(db),
		Notification: NewNotificationRepo(db),
	}, nil
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(20) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		description TEXT,
		category VARCHAR(100) NOT NULL DEFAULT '',
		requires_rx BOOLEAN NOT NULL DEFAULT FALSE,
		variants JSONB NOT NULL DEFAULT '[]'::jsonb,
		status VARCHAR(20) NOT NULL DEFAULT 'active', -- active, inactive, discontinued
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS carts (
		id UUID PRIMARY KEY,
		user_id UUID UNIQUE NOT NULL,
		items JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS coupons (
		code VARCHAR(32) PRIMARY KEY,
		type VARCHAR(20) NOT NULL, -- percent, flat, delivery
		value DECIMAL(10,2) NOT NULL,
		min_order DECIMAL(10,2) NOT NULL DEFAULT 0,
		max_discount DECIMAL(10,2),
		expires_at TIMESTAMPTZ,
		usage_limit INTEGER,
		used_count INTEGER NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT coupons_usage_within_limit CHECK (usage_limit IS NULL OR used_count <= usage_limit)
	);

	CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		items JSONB NOT NULL,
		subtotal DECIMAL(10,2) NOT NULL,
		delivery_fee DECIMAL(10,2) NOT NULL DEFAULT 0,
		discount DECIMAL(10,2) NOT NULL DEFAULT 0,
		coupon_code VARCHAR(32) NOT NULL DEFAULT '',
		total_amount DECIMAL(10,2) NOT NULL,
		address JSONB NOT NULL,
		delivery_slot VARCHAR(100) NOT NULL DEFAULT '',
		payment_method VARCHAR(20) NOT NULL,
		payment_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		gateway_order_id VARCHAR(100) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'placed',
		cancellation_reason TEXT NOT NULL DEFAULT '',
		prescription_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
	CREATE INDEX IF NOT EXISTS idx_orders_gateway_order_id ON orders(gateway_order_id);

	CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		order_id UUID,
		type VARCHAR(20) NOT NULL,
		recipient VARCHAR(255) NOT NULL,
		subject VARCHAR(255) NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		error_message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema creation: %w", err)
	}

	return nil
}
