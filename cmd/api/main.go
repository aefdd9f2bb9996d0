package main

import (
	"context"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/finledger/groupledger/docs"
	"github.com/finledger/groupledger/internal/balance"
	"github.com/finledger/groupledger/internal/config"
	"github.com/finledger/groupledger/internal/database"
	"github.com/finledger/groupledger/internal/expense"
	expensesplit "github.com/finledger/groupledger/internal/expense/split"
	"github.com/finledger/groupledger/internal/group"
	"github.com/finledger/groupledger/internal/notification"
	"github.com/finledger/groupledger/internal/user"
	"github.com/finledger/groupledger/pkg/logging"
	mw "github.com/finledger/groupledger/pkg/middleware"
)

// @title           GroupLedger API
// @version         1.0
// @description     Bill-splitting ledger: groups, deterministic expense splits, balances, and wallet passes.
// @BasePath        /api/v1
func main() {
	logger := logging.Setup()

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using environment variables")
	}
	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	splitFactory := expensesplit.NewFactory()

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo, userRepo, logger)
	groupHandler := group.NewHandler(groupService)

	// Balance feature
	balanceRepo := balance.NewRepository(db)
	balanceService := balance.NewService(balanceRepo, groupService)
	balanceHandler := balance.NewHandler(balanceService)

	// Notification feature (wallet passes); optional by configuration
	var passIssuer expense.PassIssuer
	var notificationHandler *notification.Handler
	if cfg.WalletEnabled() {
		walletClient, err := notification.NewWalletClient(
			cfg.WalletIssuerID, cfg.WalletClassSuffix,
			cfg.WalletServiceEmail, cfg.WalletPrivateKeyPEM, cfg.WalletAPIBaseURL,
		)
		if err != nil {
			logger.Error("failed to init wallet client", "error", err)
			os.Exit(1)
		}
		notificationRepo := notification.NewRepository(db)
		notificationService := notification.NewService(notificationRepo, balanceService, groupService, walletClient, logger)
		notificationService.StartRetryWorker(context.Background())
		notificationHandler = notification.NewHandler(notificationService)
		passIssuer = notificationService
	} else {
		logger.Warn("wallet pass issuance disabled, no credentials configured")
	}

	// Expense feature (split factory and pass issuer injected)
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo, groupService, splitFactory, passIssuer, logger)
	expenseHandler := expense.NewHandler(expenseService)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Debug-User-ID"},
	}).Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(cfg.JWTSecret, cfg.AllowDebugAuth))

		r.Mount("/users", userHandler.Routes())
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/balances", balanceHandler.Routes())
		if notificationHandler != nil {
			r.Mount("/notifications", notificationHandler.Routes())
		}
	})

	logger.Info("server starting", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
