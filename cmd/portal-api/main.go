package main

import (
	"log"
	"net/http"

	"github.com/Eursukkul/competition-portal/config"
	"github.com/Eursukkul/competition-portal/internal/handler"
	"github.com/Eursukkul/competition-portal/internal/middleware"
	"github.com/Eursukkul/competition-portal/internal/repository"
	"github.com/Eursukkul/competition-portal/internal/service"
	"github.com/Eursukkul/competition-portal/pkg/clock"
	"github.com/Eursukkul/competition-portal/pkg/database"
	"github.com/Eursukkul/competition-portal/pkg/logger"
	"github.com/Eursukkul/competition-portal/pkg/rabbitmq"
	"github.com/Eursukkul/competition-portal/pkg/redis"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}

	rdb, err := redis.NewClient(redis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}, zl)
	if err != nil {
		zl.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Notifications are optional: without a broker records are still stored.
	var publisher service.Publisher
	if p, err := rabbitmq.NewPublisher(cfg.RabbitURL, zl); err != nil {
		zl.Warn("rabbitmq unavailable, notifications disabled", zap.Error(err))
	} else {
		defer p.Close()
		publisher = p
	}

	// Repositories
	competitionRepo := repository.NewCompetitionRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	drafts := repository.NewDraftStore(rdb, cfg.DraftTTL)

	// Services
	clk := clock.System()
	competitionSvc := service.NewCompetitionService(competitionRepo, publisher, zl)
	registrationSvc := service.NewRegistrationService(registrationRepo, competitionRepo, publisher, clk, zl)
	profileSvc := service.NewProfileService(profileRepo, drafts, publisher, zl)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = middleware.NewValidator()
	e.Use(middleware.RequestLogger(zl))
	e.Use(echoMw.Recover())
	e.Use(echoMw.BodyLimit("32M"))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "portal-api"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	handler.NewCompetitionHandler(competitionSvc, registrationSvc, clk).RegisterRoutes(e.Group("/api/v1/competitions"))
	handler.NewRegistrationHandler(registrationSvc, clk).RegisterRoutes(e.Group("/api/v1/registrations"))
	handler.NewProfileHandler(profileSvc, clk).RegisterRoutes(e.Group("/api/v1/profiles"))

	zl.Info("portal-api starting", zap.String("port", cfg.ServerPort))
	if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
