package repository_test

import (
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rxkart/pharmacy-backend/internal/models"
	repository "github.com/rxkart/pharmacy-backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupOrderRepoTest(t *testing.T) (repository.OrderRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	repo := repository.NewOrderRepo(db)
	require.NotNil(t, repo, "NewOrderRepo should return a non-nil repository")

	return repo, mock
}

func sampleOrder() *models.Order {
	lat, lng := 12.98, 77.60

	return &models.Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Items: []models.OrderItem{
			{ProductID: uuid.New(), Name: "Paracetamol 500mg", Size: "10 tablets", UnitPrice: 25, Quantity: 2},
		},
		Subtotal:    50,
		DeliveryFee: 20,
		TotalAmount: 70,
		Address: &models.Address{
			Street: "14 MG Road", City: "Bengaluru", State: "Karnataka", Pincode: "560001",
			Lat: &lat, Lng: &lng,
		},
		DeliverySlot:  "9 AM - 12 PM",
		PaymentMethod: models.PaymentMethodCOD,
		Status:        models.OrderStatusPlaced,
	}
}

func TestOrderRepository(t *testing.T) {
	repo, mock := setupOrderRepoTest(t)
	ctx := t.Context()

	orderColumns := []string{
		"id", "user_id", "items", "subtotal", "delivery_fee", "discount", "coupon_code",
		"total_amount", "address", "delivery_slot", "payment_method", "payment_confirmed",
		"gateway_order_id", "status", "cancellation_reason", "prescription_id",
		"created_at", "updated_at",
	}

	t.Run("CreateOrder", func(t *testing.T) {
		order := sampleOrder()
		now := time.Now()

		expectedItemsJSON, err := json.Marshal(order.Items)
		require.NoError(t, err, "Failed to marshal items for test setup")
		expectedAddressJSON, err := json.Marshal(order.Address)
		require.NoError(t, err, "Failed to marshal address for test setup")

		expectedSQL := `INSERT INTO orders`

		t.Run("Success", func(t *testing.T) {
			// Arrange
			mock.ExpectQuery(expectedSQL).
				WithArgs(
					order.ID, order.UserID, expectedItemsJSON, order.Subtotal, order.DeliveryFee,
					order.Discount, order.CouponCode, order.TotalAmount, expectedAddressJSON,
					order.DeliverySlot, order.PaymentMethod, order.PaymentConfirmed,
					order.GatewayOrderID, order.Status, order.CancellationReason, nil,
				).
				WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

			// Act
			err := repo.CreateOrder(ctx, order)

			// Assert
			require.NoError(t, err, "CreateOrder should not return an error on success")
			assert.WithinDuration(t, now, order.CreatedAt, time.Second)
			require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
		})

		t.Run("Failure - Database Error", func(t *testing.T) {
			// Arrange
			dbError := errors.New("database insertion error")
			mock.ExpectQuery(expectedSQL).
				WillReturnError(dbError)

			// Act
			err := repo.CreateOrder(ctx, order)

			// Assert
			require.Error(t, err, "CreateOrder should return an error on DB failure")
			assert.Equal(t, dbError, err, "Returned error should match the expected database error")
			require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
		})
	})

	t.Run("GetOrderByID", func(t *testing.T) {
		order := sampleOrder()
		now := time.Now()

		itemsJSON, err := json.Marshal(order.Items)
		require.NoError(t, err)
		addressJSON, err := json.Marshal(order.Address)
		require.NoError(t, err)

		expectedSQL := `SELECT (.+) FROM orders WHERE id = \$1`

		t.Run("Success", func(t *testing.T) {
			// Arrange
			rows := sqlmock.NewRows(orderColumns).AddRow(
				order.ID, order.UserID, itemsJSON, order.Subtotal, order.DeliveryFee,
				order.Discount, order.CouponCode, order.TotalAmount, addressJSON,
				order.DeliverySlot, order.PaymentMethod, order.PaymentConfirmed,
				order.GatewayOrderID, order.Status, order.CancellationReason, nil,
				now, now,
			)
			mock.ExpectQuery(expectedSQL).
				WithArgs(order.ID).
				WillReturnRows(rows)

			// Act
			found, err := repo.GetOrderByID(ctx, order.ID)

			// Assert
			require.NoError(t, err, "GetOrderByID should not return an error when order is found")
			require.NotNil(t, found, "Returned order should not be nil")
			assert.Equal(t, order.ID, found.ID)
			assert.Equal(t, order.Items, found.Items)
			assert.Equal(t, order.Address, found.Address)
			assert.Equal(t, models.OrderStatusPlaced, found.Status)
			assert.False(t, found.PaymentConfirmed)
			require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
		})

		t.Run("Failure - Not Found", func(t *testing.T) {
			// Arrange
			mock.ExpectQuery(expectedSQL).
				WithArgs(order.ID).
				WillReturnError(sql.ErrNoRows)

			// Act
			found, err := repo.GetOrderByID(ctx, order.ID)

			// Assert
			require.Error(t, err, "GetOrderByID should return an error when order is not found")
			assert.ErrorIs(t, err, sql.ErrNoRows, "Error should be sql.ErrNoRows")
			assert.Nil(t, found, "Returned order should be nil")
			require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
		})

		t.Run("Failure - Unmarshal Error", func(t *testing.T) {
			// Arrange
			rows := sqlmock.NewRows(orderColumns).AddRow(
				order.ID, order.UserID, []byte(`{"invalid"`), order.Subtotal, order.DeliveryFee,
				order.Discount, order.CouponCode, order.TotalAmount, addressJSON,
				order.DeliverySlot, order.PaymentMethod, order.PaymentConfirmed,
				order.GatewayOrderID, order.Status, order.CancellationReason, nil,
				now, now,
			)
			mock.ExpectQuery(expectedSQL).
				WithArgs(order.ID).
				WillReturnRows(rows)

			// Act
			found, err := repo.GetOrderByID(ctx, order.ID)

			// Assert
			require.Error(t, err, "GetOrderByID should return an error on unmarshal failure")
			assert.ErrorContains(t, err, "failed to unmarshal order items")
			assert.Nil(t, found, "Returned order should be nil")
			require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
		})
	})

	t.Run("MarkPaymentConfirmed", func(t *testing.T) {
		orderID := uuid.New()

		expectedSQL := regexp.QuoteMeta(`
			UPDATE orders
			SET payment_confirmed = TRUE, updated_at = NOW()
			WHERE id = $1 AND payment_confirmed = FALSE
		`)

		t.Run("Success - First Confirmation Wins", func(t *testing.T) {
			// Arrange
			mock.ExpectExec(expectedSQL).
				WithArgs(orderID).
				WillReturnResult(sqlmock.NewResult(0, 1))

			// Act
			won, err := repo.MarkPaymentConfirmed(ctx, orderID)

			// Assert
			require.NoError(t, err, "MarkPaymentConfirmed should not return an error on success")
			assert.True(t, won, "The first confirmation should win the flip")
			require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
		})

		t.Run("Success - Replay Loses", func(t *testing.T) {
			// Arrange: payment_confirmed is already TRUE, so the guard matches
			// no row.
			mock.ExpectExec(expectedSQL).
				WithArgs(orderID).
				WillReturnResult(sqlmock.NewResult(0, 0))

			// Act
			won, err := repo.MarkPaymentConfirmed(ctx, orderID)

			// Assert
			require.NoError(t, err, "A replayed confirmation is not an error")
			assert.False(t, won, "A replay should not win the flip")
			require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
		})

		t.Run("Failure - Database Error", func(t *testing.T) {
			// Arrange
			dbError := errors.New("database update error")
			mock.ExpectExec(expectedSQL).
				WithArgs(orderID).
				WillReturnError(dbError)

			// Act
			won, err := repo.MarkPaymentConfirmed(ctx, orderID)

			// Assert
			require.Error(t, err, "MarkPaymentConfirmed should return an error on DB failure")
			assert.ErrorIs(t, err, dbError, "Returned error should wrap the expected database error")
			assert.False(t, won)
			require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
		})
	})

	t.Run("DeleteIfUnconfirmed", func(t *testing.T) {
		orderID := uuid.New()

		expectedSQL := regexp.QuoteMeta(`
			DELETE FROM orders WHERE id = $1 AND payment_confirmed = FALSE
		`)

		t.Run("Success - Unconfirmed Order Deleted", func(t *testing.T) {
			// Arrange
			mock.ExpectExec(expectedSQL).
				WithArgs(orderID).
				WillReturnResult(sqlmock.NewResult(0, 1))

			// Act
			deleted, err := repo.DeleteIfUnconfirmed(ctx, orderID)

			// Assert
			require.NoError(t, err, "DeleteIfUnconfirmed should not return an error on success")
			assert.True(t, deleted, "The unconfirmed order should be deleted")
			require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
		})

		t.Run("Success - Confirmed Order Survives", func(t *testing.T) {
			// Arrange
			mock.ExpectExec(expectedSQL).
				WithArgs(orderID).
				WillReturnResult(sqlmock.NewResult(0, 0))

			// Act
			deleted, err := repo.DeleteIfUnconfirmed(ctx, orderID)

			// Assert
			require.NoError(t, err, "Refusing to delete a confirmed order is not an error")
			assert.False(t, deleted, "A confirmed order should never be deleted")
			require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
		})
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		orderID := uuid.New()

		expectedSQL := regexp.QuoteMeta(`
			UPDATE orders SET status = $1, cancellation_reason = $2, updated_at = $3 WHERE id = $4
		`)

		t.Run("Success", func(t *testing.T) {
			// Arrange
			mock.ExpectExec(expectedSQL).
				WithArgs(models.OrderStatusPacking, "", sqlmock.AnyArg(), orderID).
				WillReturnResult(sqlmock.NewResult(0, 1))

			// Act
			err := repo.UpdateStatus(ctx, orderID, models.OrderStatusPacking, "")

			// Assert
			require.NoError(t, err, "UpdateStatus should not return an error on success")
			require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
		})

		t.Run("Failure - No Rows Affected", func(t *testing.T) {
			// Arrange
			mock.ExpectExec(expectedSQL).
				WithArgs(models.OrderStatusCancelled, "out of stock", sqlmock.AnyArg(), orderID).
				WillReturnResult(sqlmock.NewResult(0, 0))

			// Act
			err := repo.UpdateStatus(ctx, orderID, models.OrderStatusCancelled, "out of stock")

			// Assert
			require.Error(t, err, "UpdateStatus should return an error if no rows were affected")
			assert.ErrorIs(t, err, sql.ErrNoRows)
			require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
		})
	})

	t.Run("SetGatewayOrderID", func(t *testing.T) {
		orderID := uuid.New()

		expectedSQL := regexp.QuoteMeta(`
			UPDATE orders SET gateway_order_id = $1, updated_at = $2 WHERE id = $3
		`)

		t.Run("Success", func(t *testing.T) {
			// Arrange
			mock.ExpectExec(expectedSQL).
				WithArgs("cs_test_123", sqlmock.AnyArg(), orderID).
				WillReturnResult(sqlmock.NewResult(0, 1))

			// Act
			err := repo.SetGatewayOrderID(ctx, orderID, "cs_test_123")

			// Assert
			require.NoError(t, err, "SetGatewayOrderID should not return an error on success")
			require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
		})

		t.Run("Failure - No Rows Affected", func(t *testing.T) {
			// Arrange
			mock.ExpectExec(expectedSQL).
				WithArgs("cs_test_123", sqlmock.AnyArg(), orderID).
				WillReturnResult(sqlmock.NewResult(0, 0))

			// Act
			err := repo.SetGatewayOrderID(ctx, orderID, "cs_test_123")

			// Assert
			require.Error(t, err, "SetGatewayOrderID should return an error if no rows were affected")
			assert.ErrorIs(t, err, sql.ErrNoRows)
			require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
		})
	})
}
