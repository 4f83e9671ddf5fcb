// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/rxkart/pharmacy-backend/internal/models"
	"github.com/stretchr/testify/mock"
)

type CartRepository struct {
	mock.Mock
}

func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

func (m *CartRepository) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)

	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *CartRepository) UpsertCart(ctx context.Context, cart *models.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

func (m *CartRepository) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type ProductRepository struct {
	mock.Mock
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

func (m *ProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *ProductRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)

	if product, ok := args.Get(0).(*models.Product); ok {
		return product, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *ProductRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *ProductRepository) ListProducts(ctx context.Context, page, size int) ([]models.Product, int, error) {
	args := m.Called(ctx, page, size)

	if products, ok := args.Get(0).([]models.Product); ok {
		return products, args.Int(1), args.Error(2)
	}

	return nil, args.Int(1), args.Error(2)
}

type CouponRepository struct {
	mock.Mock
}

func NewCouponRepository() *CouponRepository {
	return &CouponRepository{}
}

func (m *CouponRepository) CreateCoupon(ctx context.Context, coupon *models.Coupon) error {
	return m.Called(ctx, coupon).Error(0)
}

func (m *CouponRepository) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	args := m.Called(ctx, code)

	if coupon, ok := args.Get(0).(*models.Coupon); ok {
		return coupon, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *CouponRepository) UpdateCoupon(ctx context.Context, coupon *models.Coupon) error {
	return m.Called(ctx, coupon).Error(0)
}

func (m *CouponRepository) ListCoupons(ctx context.Context, page, size int) ([]models.Coupon, int, error) {
	args := m.Called(ctx, page, size)

	if coupons, ok := args.Get(0).([]models.Coupon); ok {
		return coupons, args.Int(1), args.Error(2)
	}

	return nil, args.Int(1), args.Error(2)
}

func (m *CouponRepository) IncrementUsage(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)

	return args.Bool(0), args.Error(1)
}

type OrderRepository struct {
	mock.Mock
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (m *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *OrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)

	if order, ok := args.Get(0).(*models.Order); ok {
		return order, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *OrderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error) {
	args := m.Called(ctx, userID, page, size)

	if orders, ok := args.Get(0).([]models.Order); ok {
		return orders, args.Int(1), args.Error(2)
	}

	return nil, args.Int(1), args.Error(2)
}

func (m *OrderRepository) SetGatewayOrderID(ctx context.Context, id uuid.UUID, gatewayOrderID string) error {
	return m.Called(ctx, id, gatewayOrderID).Error(0)
}

func (m *OrderRepository) MarkPaymentConfirmed(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)

	return args.Bool(0), args.Error(1)
}

func (m *OrderRepository) DeleteIfUnconfirmed(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)

	return args.Bool(0), args.Error(1)
}

func (m *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, reason string) error {
	return m.Called(ctx, id, status, reason).Error(0)
}

func (m *OrderRepository) AttachPrescription(ctx context.Context, id uuid.UUID, prescriptionID uuid.UUID) error {
	return m.Called(ctx, id, prescriptionID).Error(0)
}

type UserRepository struct {
	mock.Mock
}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (m *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)

	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *UserRepository) UpsertUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

type NotificationRepository struct {
	mock.Mock
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (m *NotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return m.Called(ctx, notification).Error(0)
}

func (m *NotificationRepository) UpdateNotificationStatus(ctx context.Context, id uuid.UUID, status models.NotificationStatus, errorMessage string) error {
	return m.Called(ctx, id, status, errorMessage).Error(0)
}

func (m *NotificationRepository) ListNotifications(ctx context.Context, page, size int) ([]models.Notification, error) {
	args := m.Called(ctx, page, size)

	if notifications, ok := args.Get(0).([]models.Notification); ok {
		return notifications, args.Error(1)
	}

	return nil, args.Error(1)
}
