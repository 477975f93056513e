package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/database"
	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/logger"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/router"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
	"github.com/iliyamo/movie-ticket-booking/internal/session"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.New(cfg.IsProd(), cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal("db migrate", zap.Error(err))
		}
	}

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	theaters := repository.NewTheaterRepo(db)
	seats := repository.NewSeatRepo(db)
	bookings := repository.NewBookingRepo(db)
	reports := repository.NewReportRepo(db)

	if err := seedStaff(ctx, cfg, users); err != nil {
		log.Fatal("seed staff account", zap.Error(err))
	}

	publisher := queue.NewPublisher(cfg.Queue.URL)
	defer publisher.Close()

	sessions := session.NewStore(rdb, cfg.Booking.HoldWindow)
	svc := service.NewBookingService(movies, theaters, seats, bookings, sessions, publisher, log,
		cfg.Booking.HoldWindow, cfg.Booking.SeatPrice)

	if cfg.Queue.ConsumerEnabled {
		go queue.NewConsumer(cfg.Queue.URL, log).Run(ctx)
	}
	if cfg.Booking.SweepInterval > 0 {
		sched, err := service.StartSweeper(svc, cfg.Booking.SweepInterval, log)
		if err != nil {
			log.Fatal("start sweeper", zap.Error(err))
		}
		defer func() { _ = sched.Shutdown() }()
	}

	cacheCfg := config.LoadCacheConfig()
	purge := func(ctx context.Context) error {
		_, err := middleware.PurgeCache(ctx, rdb, cacheCfg.Prefix)
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))

	router.Register(e, router.Handlers{
		Health:    handler.Health(db),
		Auth:      handler.NewAuthHandler(cfg, users, tokens, log),
		Catalog:   handler.NewCatalogHandler(movies, theaters, log),
		Booking:   handler.NewBookingHandler(svc, log),
		Dashboard: handler.NewDashboardHandler(reports, log),
		Admin:     handler.NewAdminHandler(movies, theaters, purge, log),
	}, edge(cacheCfg, rdb, log), cfg.JWTSecret)

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
}

func edge(cacheCfg config.CacheConfig, rdb *redis.Client, log *zap.Logger) router.Edge {
	var ed router.Edge
	if cacheCfg.Enabled {
		ed.Cache = middleware.NewRedisCache(cacheCfg, rdb, log)
	}
	if rl := config.LoadRateLimitConfig(); rl.Enabled {
		ed.RateLimit = middleware.NewTokenBucket(rl, rdb, log)
	}
	return ed
}

// seedStaff creates the STAFF_EMAIL account on first start.  An existing
// account is left as is.
func seedStaff(ctx context.Context, cfg config.Config, users *repository.UserRepo) error {
	if cfg.StaffEmail == "" || cfg.StaffPassword == "" {
		return nil
	}
	email := repository.NormalizeEmail(cfg.StaffEmail)
	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	hash, err := utils.HashPassword(cfg.StaffPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}
	_, err = users.Create(ctx, email, hash, model.RoleStaff)
	if errors.Is(err, repository.ErrEmailExists) {
		return nil
	}
	return err
}
