package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/divvyapp/divvy/docs" // swagger spec
	"github.com/divvyapp/divvy/internal/auth"
	"github.com/divvyapp/divvy/internal/balance"
	"github.com/divvyapp/divvy/internal/config"
	"github.com/divvyapp/divvy/internal/database"
	"github.com/divvyapp/divvy/internal/expense"
	expensesplit "github.com/divvyapp/divvy/internal/expense/split"
	"github.com/divvyapp/divvy/internal/group"
	"github.com/divvyapp/divvy/internal/notification"
	"github.com/divvyapp/divvy/internal/settlement"
	"github.com/divvyapp/divvy/internal/user"
	"github.com/divvyapp/divvy/pkg/logging"
	mw "github.com/divvyapp/divvy/pkg/middleware"
)

// @title        Divvy API
// @version      1.0
// @description  Group expense sharing with multi-currency balances and debt simplification.
// @BasePath     /api/v1
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	logging.Setup()

	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("connected to database")

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)

	// Split strategy factory
	splitFactory := expensesplit.NewFactory()

	// Repositories
	userRepo := user.NewRepository(db)
	groupRepo := group.NewRepository(db)
	expenseRepo := expense.NewRepository(db)
	settlementRepo := settlement.NewRepository(db)
	notificationRepo := notification.NewRepository(db)

	// Balance computation reads expenses, settlements and the roster through
	// the repositories.
	balanceService := balance.NewService(expenseRepo, settlementRepo, groupRepo)

	// Services
	notificationService := notification.NewService(notificationRepo)
	userService := user.NewService(userRepo, jwtManager)
	groupService := group.NewService(groupRepo, balanceService, notificationService)
	expenseService := expense.NewService(expenseRepo, splitFactory, groupRepo, notificationService)
	settlementService := settlement.NewService(settlementRepo, groupRepo, notificationService)

	// Handlers
	userHandler := user.NewHandler(userService)
	groupHandler := group.NewHandler(groupService)
	expenseHandler := expense.NewHandler(expenseService)
	settlementHandler := settlement.NewHandler(settlementService)
	notificationHandler := notification.NewHandler(notificationService)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(mw.Metrics)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", userHandler.AuthRoutes())

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth(jwtManager))

			r.Mount("/users", userHandler.Routes())
			r.Mount("/groups", groupHandler.Routes())
			r.Mount("/expenses", expenseHandler.Routes())
			r.Mount("/settlements", settlementHandler.Routes())
			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	slog.Info("server starting", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
