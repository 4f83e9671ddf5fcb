package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/rxkart/pharmacy-backend/internal/metrics"
	"github.com/rxkart/pharmacy-backend/internal/models"
	repository "github.com/rxkart/pharmacy-backend/internal/repositories"
	"github.com/rxkart/pharmacy-backend/pkg/sendgrid"
)

// NotificationService sends order emails through an outbox: the row is
// persisted first, the provider call happens after, and the row records the
// outcome. A failing provider never reaches the order path.
type NotificationService struct {
	repo        repository.NotificationRepository
	users       repository.UserRepository
	emailClient sendgrid.EmailClient
}

func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository, emailClient sendgrid.EmailClient) *NotificationService {
	return &NotificationService{repo: repo, users: users, emailClient: emailClient}
}

// NotifyOrderConfirmed fires the confirmation email in the background. The
// caller's request may finish (or be cancelled) long before the provider
// answers, so the send runs on a context detached from cancellation.
func (s *NotificationService) NotifyOrderConfirmed(ctx context.Context, order *models.Order) {

	sendCtx := context.WithoutCancel(ctx)

	go func() {
		if err := s.sendOrderConfirmation(sendCtx, order); err != nil {
			metrics.NotificationFailures.Inc()

			slog.Error("Order confirmation notification failed",
				slog.String("order_id", order.ID.String()),
				slog.String("error", err.Error()))
		}
	}()
}

func (s *NotificationService) sendOrderConfirmation(ctx context.Context, order *models.Order) error {

	user, err := s.users.GetUserByID(ctx, order.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient: %w", err)
	}

	subject := fmt.Sprintf("Order confirmed - %s", order.ID)
	content := buildOrderConfirmationBody(user.Name, order)

	notification := &models.Notification{
		ID:        uuid.New(),
		OrderID:   &order.ID,
		Type:      models.NotificationTypeEmail,
		Recipient: user.Email,
		Subject:   subject,
		Content:   content,
		Status:    models.NotificationStatusPending,
	}

	if err := s.repo.CreateNotification(ctx, notification); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}

	if err := s.emailClient.Send(ctx, user.Email, subject, content, ""); err != nil {

		if updateErr := s.repo.UpdateNotificationStatus(ctx, notification.ID, models.NotificationStatusFailed, err.Error()); updateErr != nil {
			slog.Error("Failed to mark notification as failed",
				slog.String("notification_id", notification.ID.String()),
				slog.String("error", updateErr.Error()))
		}

		return fmt.Errorf("failed to send email: %w", err)
	}

	if err := s.repo.UpdateNotificationStatus(ctx, notification.ID, models.NotificationStatusSent, ""); err != nil {
		slog.Error("Failed to mark notification as sent",
			slog.String("notification_id", notification.ID.String()),
			slog.String("error", err.Error()))
	}

	return nil
}

// ListNotifications exposes the outbox for the admin console.
func (s *NotificationService) ListNotifications(ctx context.Context, page, size int) ([]models.Notification, error) {

	if page < 1 {
		page = 1
	}

	if size < 1 || size > 100 {
		size = 20
	}

	return s.repo.ListNotifications(ctx, page, size)
}

func buildOrderConfirmationBody(name string, order *models.Order) string {

	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s,\n\nYour order %s has been confirmed.\n\n", name, order.ID)

	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %s (%s) x%d - ₹%.2f\n", item.Name, item.Size, item.Quantity, item.UnitPrice*float64(item.Quantity))
	}

	fmt.Fprintf(&b, "\nSubtotal: ₹%.2f\n", order.Subtotal)
	fmt.Fprintf(&b, "Delivery: ₹%.2f\n", order.DeliveryFee)

	if order.Discount > 0 {
		fmt.Fprintf(&b, "Discount (%s): -₹%.2f\n", order.CouponCode, order.Discount)
	}

	fmt.Fprintf(&b, "Total: ₹%.2f\n", order.TotalAmount)
	fmt.Fprintf(&b, "\nDelivery slot: %s\n", order.DeliverySlot)
	b.WriteString("\nThank you for shopping with RxKart.\n")

	return b.String()
}
