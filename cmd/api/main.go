package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"envios-web/internal/core/apiclient"
	"envios-web/internal/core/cache"
	"envios-web/internal/core/clock"
	"envios-web/internal/core/config"
	"envios-web/internal/core/httpclient"
	"envios-web/internal/core/imaging"
	"envios-web/internal/core/logger"
	"envios-web/internal/core/proxy"
	"envios-web/internal/core/server"
	listingadapter "envios-web/internal/features/listing/adapters"
	listinghandler "envios-web/internal/features/listing/handler"
	listingservice "envios-web/internal/features/listing/service"
	orderadapter "envios-web/internal/features/orders/adapters"
	orderhandler "envios-web/internal/features/orders/handler"
	orderservice "envios-web/internal/features/orders/service"
	pricingadapter "envios-web/internal/features/pricing/adapters"
	pricinghandler "envios-web/internal/features/pricing/handler"
	pricingservice "envios-web/internal/features/pricing/service"
	quoteadapter "envios-web/internal/features/quote/adapters"
	quotehandler "envios-web/internal/features/quote/handler"
	quoteservice "envios-web/internal/features/quote/service"
	routingadapter "envios-web/internal/features/routing/adapters"
	routinghandler "envios-web/internal/features/routing/handler"
	routingservice "envios-web/internal/features/routing/service"
	sessionadapter "envios-web/internal/features/session/adapters"
	sessiondomain "envios-web/internal/features/session/domain"
	sessionhandler "envios-web/internal/features/session/handler"
	sessionservice "envios-web/internal/features/session/service"
	useradapter "envios-web/internal/features/users/adapters"
	userhandler "envios-web/internal/features/users/handler"
	userservice "envios-web/internal/features/users/service"

	"go.uber.org/zap"
)

const (
	plannerIdle   = 2 * time.Hour
	sweepInterval = 10 * time.Minute
	shutdownGrace = 15 * time.Second
)

// @title Envíos Web API
// @version 1.0
// @description Backend for the shipping quote calculator and the customer and admin order panels.
// @contact.name API Support
// @contact.email soporte@tabghalmaca.com
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("api_base_url", cfg.API.BaseURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	redis, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Invalid redis configuration", zap.Error(err))
	}
	defer redis.Close()

	// Upstream clients
	wall := clock.Real{}
	httpClient := httpclient.NewClient(cfg.API.Timeout(), proxy.FromConfig(cfg.Proxy))
	anonymous := apiclient.New(cfg.API.BaseURL, cfg.API.TokenHeader, httpClient)

	// Session
	sessions := sessionservice.NewManager(
		sessionadapter.NewAPIAuthenticator(anonymous),
		sessionadapter.NewRedisTokenStore(redis),
		wall,
	)
	if err := sessions.Init(ctx); err != nil {
		l.Fatal("Session store health check failed", zap.Error(err))
	}
	defer sessions.Close()
	l.Info("Redis connection verified")

	api := anonymous.WithTokens(sessions)

	// Route planner
	mapsProvider, err := routingadapter.NewGoogleMapsAdapter(cfg.Maps, httpClient)
	if err != nil {
		l.Fatal("Invalid maps configuration", zap.Error(err))
	}
	planner := routingservice.NewPlannerService(mapsProvider, wall)
	plannerHdl := routinghandler.NewPlannerHandler(planner)
	go sweepPlanners(ctx, planner)

	// Quotes
	drafts := quoteadapter.NewRedisDraftStore(redis, cfg.Redis.DraftTTL())
	quoteSvc := quoteservice.NewQuoteService(quoteadapter.NewAPIQuoteAdapter(api), drafts, planner, wall)
	quoteHdl := quotehandler.NewQuoteHandler(quoteSvc)

	sessionHdl := sessionhandler.NewSessionHandler(sessions, cfg.Redis.SessionCookie, cfg.Environment == "production", planner, quoteSvc)

	// Admin listing
	listingSvc := listingservice.NewListingService(listingadapter.NewAPIListAdapter(api), listingadapter.NewExcelExporter(), cfg.API.AssetURL)
	listingHdl := listinghandler.NewListingHandler(listingSvc, wall, cfg.Admin.SearchDebounce())

	// Orders
	orderAPI := orderadapter.NewAPIOrderAdapter(api)
	receipts := orderservice.NewReceiptService(
		orderadapter.NewRedisReceiptStore(redis, cfg.Redis.DraftTTL()),
		imaging.Options{MaxBytes: cfg.Receipts.MaxBytes, MaxWidth: cfg.Receipts.MaxWidth, Quality: cfg.Receipts.Quality},
		wall,
	)
	orderSvc := orderservice.NewOrderService(orderAPI, drafts, planner, receipts, wall, cfg.API.AssetURL)
	orderHdl := orderhandler.NewOrderHandler(orderSvc, receipts, cfg.Receipts.MaxBytes)
	adminHdl := orderhandler.NewAdminHandler(orderservice.NewAdminService(orderAPI, listingSvc))

	// Users and pricing
	userHdl := userhandler.NewUserHandler(userservice.NewUserService(useradapter.NewAPIUserAdapter(api)))
	pricingHdl := pricinghandler.NewConfigHandler(pricingservice.NewConfigService(pricingadapter.NewAPIConfigAdapter(api)))

	srv := server.New(cfg)
	app := srv.App
	app.Use(sessionHdl.Middleware)

	// Public routes
	app.Post("/auth/login", sessionHdl.Login)
	app.Post("/auth/logout", sessionHdl.Logout)
	app.Get("/auth/session", sessionHdl.Session)
	app.Post("/auth/register", sessionHdl.Register)

	app.Get("/planner", plannerHdl.GetPlan)
	app.Post("/planner/selections", plannerHdl.Select)
	app.Delete("/planner", plannerHdl.Clear)
	app.Get("/planner/places", plannerHdl.Suggest)

	app.Post("/quotes", quoteHdl.RequestQuote)
	app.Get("/quotes/current", quoteHdl.CurrentQuote)

	// Customer routes
	orders := app.Group("/orders", sessionhandler.RequireAuth)
	orders.Post("/", orderHdl.CreateOrder)
	orders.Get("/", orderHdl.ListOrders)
	orders.Get("/:id/payment", orderHdl.PaymentForm)
	orders.Post("/:id/payment", orderHdl.ReportPayment)
	orders.Post("/:id/receipt", orderHdl.UploadReceipt)
	orders.Get("/:id/receipt", orderHdl.ReceiptStatus)
	orders.Delete("/:id/receipt", orderHdl.RemoveReceipt)

	// Admin routes
	admin := app.Group("/admin", sessionhandler.RequireRole(sessiondomain.RoleAdmin))
	admin.Get("/orders", listingHdl.ListOrders)
	admin.Get("/orders/export", listingHdl.ExportOrders)
	admin.Patch("/orders/:id/status", adminHdl.UpdateStatus)
	admin.Delete("/orders/:id", adminHdl.DeleteOrder)

	admin.Get("/users", userHdl.ListUsers)
	admin.Post("/users", userHdl.RegisterAdmin)
	admin.Get("/users/:id", userHdl.GetUser)
	admin.Put("/users/:id", userHdl.UpdateUser)
	admin.Delete("/users/:id", userHdl.DeleteUser)

	admin.Get("/config", pricingHdl.GetConfig)
	admin.Patch("/config", pricingHdl.UpdateConfig)

	app.Get("/ws/admin/orders", sessionhandler.RequireRole(sessiondomain.RoleAdmin), listingHdl.Upgrade, listingHdl.Live())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		if err != nil {
			l.Fatal("Server failed to start", zap.Error(err))
		}
	case <-ctx.Done():
		l.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("Server shutdown failed", zap.Error(err))
	}
	if err := receipts.Wait(shutdownCtx); err != nil {
		l.Warn("Receipt jobs still running at shutdown", zap.Error(err))
	}
}

// sweepPlanners drops idle route planners until ctx is done.
func sweepPlanners(ctx context.Context, planner *routingservice.PlannerService) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := planner.Sweep(plannerIdle); n > 0 {
				logger.Get().Debug("Idle planners dropped", zap.Int("count", n))
			}
		}
	}
}
