package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rxkart/pharmacy-backend/internal/api/handlers"
	"github.com/rxkart/pharmacy-backend/internal/api/middleware"
	"github.com/rxkart/pharmacy-backend/internal/cache"
	"github.com/rxkart/pharmacy-backend/internal/config"
	"github.com/rxkart/pharmacy-backend/internal/health"
	"github.com/rxkart/pharmacy-backend/internal/metrics"
	repository "github.com/rxkart/pharmacy-backend/internal/repositories"
	service "github.com/rxkart/pharmacy-backend/internal/services"
	"github.com/rxkart/pharmacy-backend/pkg/razorpay"
	"github.com/rxkart/pharmacy-backend/pkg/sendgrid"
	"github.com/rxkart/pharmacy-backend/pkg/stripe"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}

	redisCache := cache.NewRedisCache(redisClient, &cfg.Cache)

	jwtKey := []byte(cfg.Security.JWTKey)
	stripeClient := stripe.NewStripeClient(cfg.Stripe.APIKey, cfg.Stripe.WebhookSecret, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)
	razorpayClient := razorpay.NewRazorpayClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	emailClient := sendgrid.NewEmailClient(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	productService := service.NewProductService(repos.Product, redisCache)
	productHandler := handlers.NewProductHandler(productService)
	cartService := service.NewCartService(repos.Cart)
	cartHandler := handlers.NewCartHandler(cartService)
	deliveryService := service.NewDeliveryService(cfg.StoreCoordinate())
	deliveryHandler := handlers.NewDeliveryHandler(deliveryService)
	couponService := service.NewCouponService(repos.Coupon, redisCache)
	userService := service.NewUserService(repos.User)
	userHandler := handlers.NewUserHandler(userService)
	notificationService := service.NewNotificationService(repos.Notification, repos.User, emailClient)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	orderService := service.NewOrderService(
		repos.Order, cartService, productService, deliveryService, couponService,
		notificationService, stripeClient, razorpayClient,
		cfg.Stripe.Currency, cfg.Razorpay.Currency,
	)
	orderHandler := handlers.NewOrderHandler(orderService)
	couponHandler := handlers.NewCouponHandler(couponService, orderService)
	paymentHandler := handlers.NewPaymentHandler(orderService)
	authMiddleware := middleware.NewAuthMiddleware(jwtKey)

	healthHandler, err := health.NewHealthHandler(cfg, &health.Endpoints{
		DB:          repos.DB,
		RedisClient: redisClient,
	})
	if err != nil {
		slog.Error("❌ Error creating health handler", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("store", cfg.Store.Name))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("GET /api/v1/products", productHandler.ListProducts())
	routerMux.HandleFunc("GET /api/v1/products/{id}", productHandler.GetProduct())
	routerMux.HandleFunc("POST /api/v1/products", authMiddleware.Authenticate(authMiddleware.RequireAdmin(productHandler.CreateProduct())))
	routerMux.HandleFunc("PATCH /api/v1/products/{id}", authMiddleware.Authenticate(authMiddleware.RequireAdmin(productHandler.UpdateProduct())))

	routerMux.HandleFunc("GET /api/v1/carts", authMiddleware.Authenticate(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/carts/items", authMiddleware.Authenticate(cartHandler.AddItem()))
	routerMux.HandleFunc("PUT /api/v1/carts/items", authMiddleware.Authenticate(cartHandler.UpdateQuantity()))
	routerMux.HandleFunc("DELETE /api/v1/carts", authMiddleware.Authenticate(cartHandler.ClearCart()))

	routerMux.HandleFunc("GET /api/v1/delivery/quote", deliveryHandler.QuoteFee())
	routerMux.HandleFunc("GET /api/v1/delivery/slots", deliveryHandler.ListSlots())

	routerMux.HandleFunc("POST /api/v1/coupons/apply", authMiddleware.Authenticate(couponHandler.ApplyCoupon()))
	routerMux.HandleFunc("POST /api/v1/coupons", authMiddleware.Authenticate(authMiddleware.RequireAdmin(couponHandler.CreateCoupon())))
	routerMux.HandleFunc("GET /api/v1/coupons", authMiddleware.Authenticate(authMiddleware.RequireAdmin(couponHandler.ListCoupons())))
	routerMux.HandleFunc("GET /api/v1/coupons/{code}", authMiddleware.Authenticate(authMiddleware.RequireAdmin(couponHandler.GetCoupon())))
	routerMux.HandleFunc("PATCH /api/v1/coupons/{code}", authMiddleware.Authenticate(authMiddleware.RequireAdmin(couponHandler.UpdateCoupon())))

	routerMux.HandleFunc("POST /api/v1/orders", authMiddleware.Authenticate(orderHandler.PlaceOrder()))
	routerMux.HandleFunc("GET /api/v1/orders", authMiddleware.Authenticate(orderHandler.ListOrders()))
	routerMux.HandleFunc("GET /api/v1/orders/{id}", authMiddleware.Authenticate(orderHandler.GetOrder()))
	routerMux.HandleFunc("PATCH /api/v1/orders/{id}/status", authMiddleware.Authenticate(authMiddleware.RequireAdmin(orderHandler.UpdateOrderStatus())))
	routerMux.HandleFunc("POST /api/v1/orders/{id}/prescription", authMiddleware.Authenticate(orderHandler.AttachPrescription()))

	routerMux.HandleFunc("POST /api/v1/payments/stripe/webhook", paymentHandler.HandleStripeWebhook())
	routerMux.HandleFunc("POST /api/v1/payments/razorpay/callback", authMiddleware.Authenticate(paymentHandler.ConfirmRazorpayPayment()))
	routerMux.HandleFunc("POST /api/v1/payments/razorpay/{id}/failure", authMiddleware.Authenticate(paymentHandler.ReportRazorpayFailure()))

	routerMux.HandleFunc("GET /api/v1/users/me", authMiddleware.Authenticate(userHandler.GetContact()))
	routerMux.HandleFunc("PUT /api/v1/users/me", authMiddleware.Authenticate(userHandler.UpdateContact()))

	routerMux.HandleFunc("GET /api/v1/notifications", authMiddleware.Authenticate(authMiddleware.RequireAdmin(notificationHandler.ListNotifications())))

	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {

		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := redisClient.Close(); err != nil {
		slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
	}

}
