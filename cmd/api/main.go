package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/campuspay/docs"
	"github.com/fkhayef/campuspay/internal/account"
	"github.com/fkhayef/campuspay/internal/config"
	"github.com/fkhayef/campuspay/internal/database"
	"github.com/fkhayef/campuspay/internal/ledger"
	"github.com/fkhayef/campuspay/internal/notification"
	"github.com/fkhayef/campuspay/internal/request"
	"github.com/fkhayef/campuspay/internal/settlement"
	mw "github.com/fkhayef/campuspay/pkg/middleware"
)

// @title           CampusPay API
// @version         1.0
// @description     Campus digital wallet: accounts, transfers, QR receive requests and merchant payment links
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	// Mailer: noop unless SMTP is configured
	var mailer notification.Mailer = notification.NoopMailer{}
	if cfg.SMTPHost != "" {
		mailer = notification.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	}

	// Account feature
	accountRepo := account.NewRepository(db)
	accountService := account.NewService(accountRepo, []byte(cfg.JWTSecret), cfg.TokenTTL)
	accountHandler := account.NewHandler(accountService)

	// Notification (fire-and-forget email on settlement)
	notifier := notification.NewService(mailer, accountRepo)

	// Settlement engine and direct money movement
	settlementStore := settlement.NewPostgresStore(db)
	engine := settlement.NewEngine(settlementStore)
	settlementService := settlement.NewService(engine, notifier)
	settlementHandler := settlement.NewHandler(settlementService)

	// Ledger history
	ledgerRepo := ledger.NewRepository(db)
	ledgerService := ledger.NewService(ledgerRepo)
	ledgerHandler := ledger.NewHandler(ledgerService)

	// Payment requests (QR receive + merchant links)
	requestRepo := request.NewRepository(db)
	requestService := request.NewService(requestRepo, engine, notifier, cfg.RequestTTL, cfg.BaseURL)
	requestHandler := request.NewHandler(requestService)

	// Expiry sweeper; lazy expiry at settle time stays authoritative
	if cfg.SweepInterval > 0 {
		sweeper := request.NewSweeper(requestRepo, cfg.SweepInterval)
		go sweeper.Run(context.Background())
	}

	auth := mw.Auth([]byte(cfg.JWTSecret))

	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(mw.Metrics)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/accounts", accountHandler.Routes(auth))
		r.Mount("/requests", requestHandler.Routes(auth))

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Mount("/transfers", settlementHandler.Routes())
			r.Mount("/ledger", ledgerHandler.Routes())
		})
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
