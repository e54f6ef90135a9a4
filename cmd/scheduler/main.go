package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/courierpay/payroll-engine/internal/config"
	"github.com/courierpay/payroll-engine/internal/domain"
	"github.com/courierpay/payroll-engine/internal/repository"
	"github.com/courierpay/payroll-engine/internal/service"
	"github.com/courierpay/payroll-engine/pkg/utils"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg)
	logger.Info().Msg("starting payroll scheduler")

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	store := repository.NewStore(db)
	weekService := service.NewWeekService(store, cfg, logger)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Scheduler.Timezone).Msg("invalid scheduler timezone")
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))
	setupCronJobs(c, cfg, weekService, location, logger)

	c.Start()
	logger.Info().Msg("scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down scheduler")
	<-c.Stop().Done()
	logger.Info().Msg("scheduler stopped")
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

	return logger.Level(level).With().Timestamp().Str("service", "payroll-scheduler").Logger()
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, weeks *service.WeekService, location *time.Location, logger zerolog.Logger) {
	// Lazily create the week containing today so operators never have to.
	_, err := c.AddFunc(cfg.Scheduler.EnsureWeekSpec, func() {
		ensureCurrentWeek(weeks, location, logger)
	})
	if err != nil {
		logger.Error().Err(err).Msg("error scheduling ensure-week job")
	}

	// Nudge operators about OPEN weeks whose range has already ended.
	_, err = c.AddFunc(cfg.Scheduler.ReminderSpec, func() {
		remindOverdueWeeks(weeks, location, logger)
	})
	if err != nil {
		logger.Error().Err(err).Msg("error scheduling close-reminder job")
	}

	logger.Info().Msg("cron jobs scheduled")
}

func ensureCurrentWeek(weeks *service.WeekService, location *time.Location, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	week, err := weeks.ResolveWeekForDate(ctx, time.Now().In(location))
	if err != nil {
		logger.Error().Err(err).Msg("ensure-week job failed")
		return
	}

	logger.Info().
		Str("week_id", week.ID.String()).
		Str("status", week.Status).
		Msg("current week ensured")
}

func remindOverdueWeeks(weeks *service.WeekService, location *time.Location, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	all, err := weeks.ListWeeks(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("close-reminder job failed")
		return
	}

	today := utils.DateOnly(time.Now().In(location))
	for _, week := range all {
		if week.Status == domain.WeekStatusOpen && week.EndDate.Before(today) {
			logger.Warn().
				Str("week_id", week.ID.String()).
				Str("end_date", week.EndDate.Format("2006-01-02")).
				Msg("week past its end date is still open")
		}
	}
}
