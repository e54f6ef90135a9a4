package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/courierpay/payroll-engine/internal/config"
	"github.com/courierpay/payroll-engine/internal/handler"
	"github.com/courierpay/payroll-engine/internal/repository"
	"github.com/courierpay/payroll-engine/internal/service"
	"github.com/courierpay/payroll-engine/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg)

	db, err := initDB(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	if err := runMigrations(db, cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient := initRedis(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	store := repository.NewStore(db)

	weekService := service.NewWeekService(store, cfg, logger)
	loanService := service.NewLoanService(store, logger)
	payoutService := service.NewPayoutService(store, weekService, loanService, redisClient, cfg, logger)
	ledgerService := service.NewLedgerService(store, redisClient, cfg, logger)
	deliveryService := service.NewDeliveryService(store, weekService, redisClient, cfg, logger)
	courierService := service.NewCourierService(store, logger)

	apiHandler := handler.NewHandler(weekService, payoutService, loanService, ledgerService, deliveryService, courierService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(apiHandler, healthHandler, logger)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Logging.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().Timestamp().Str("service", "payroll-engine").Logger()
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func runMigrations(db *sqlx.DB, cfg *config.Config) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.Database.MigrationsPath, cfg.Database.Name, driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// initRedis returns nil when no redis host is configured; the preview cache
// degrades to direct database reads.
func initRedis(cfg *config.Config) *redis.Client {
	addr := cfg.Redis.Addr()
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(apiHandler *handler.Handler, healthHandler *handler.HealthHandler, logger zerolog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger))

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/weeks", apiHandler.ListWeeks).Methods("GET")
	api.HandleFunc("/weeks/current", apiHandler.GetCurrentWeek).Methods("GET")
	api.HandleFunc("/weeks/{weekId}", apiHandler.GetWeek).Methods("GET")
	api.HandleFunc("/weeks/{weekId}/payouts/preview", apiHandler.PreviewPayouts).Methods("GET")
	api.HandleFunc("/weeks/{weekId}/close", apiHandler.CloseWeek).Methods("POST")
	api.HandleFunc("/weeks/{weekId}/pay", apiHandler.PayWeek).Methods("POST")
	api.HandleFunc("/weeks/{weekId}/payouts", apiHandler.GetPayouts).Methods("GET")
	api.HandleFunc("/weeks/{weekId}/payouts.csv", apiHandler.ExportPayoutsCSV).Methods("GET")
	api.HandleFunc("/weeks/{weekId}/ledger", apiHandler.ListWeekLedger).Methods("GET")

	api.HandleFunc("/ledger", apiHandler.CreateLedgerEntry).Methods("POST")
	api.HandleFunc("/ledger/{ledgerId}", apiHandler.DeleteLedgerEntry).Methods("DELETE")

	api.HandleFunc("/loans", apiHandler.CreateLoanPlan).Methods("POST")

	api.HandleFunc("/deliveries/{recordId}/assign", apiHandler.AssignDelivery).Methods("POST")
	api.HandleFunc("/deliveries/{recordId}/events", apiHandler.ListDeliveryEvents).Methods("GET")

	api.HandleFunc("/couriers", apiHandler.ListCouriers).Methods("GET")
	api.HandleFunc("/couriers", apiHandler.CreateCourier).Methods("POST")
	api.HandleFunc("/couriers/{courierId}", apiHandler.GetCourier).Methods("GET")

	return router
}
