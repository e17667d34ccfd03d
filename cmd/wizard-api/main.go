package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Eursukkul/competition-portal/config"
	"github.com/Eursukkul/competition-portal/internal/catalog"
	"github.com/Eursukkul/competition-portal/internal/consumer"
	"github.com/Eursukkul/competition-portal/internal/draft"
	"github.com/Eursukkul/competition-portal/internal/handler"
	"github.com/Eursukkul/competition-portal/internal/middleware"
	"github.com/Eursukkul/competition-portal/internal/session"
	"github.com/Eursukkul/competition-portal/pkg/clock"
	"github.com/Eursukkul/competition-portal/pkg/logger"
	"github.com/Eursukkul/competition-portal/pkg/rabbitmq"
	"github.com/Eursukkul/competition-portal/pkg/submission"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const competitionQueue = "wizard-api.competitions"

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	portal := submission.NewHTTPClient(cfg.PortalURL, cfg.SubmitTimeout, zl)

	cat := catalog.New(func(ctx context.Context, id uint) (*draft.Competition, error) {
		c := draft.NewCompetition()
		if err := portal.Fetch(ctx, "/api/v1/competitions/"+strconv.FormatUint(uint64(id), 10), c); err != nil {
			return nil, err
		}
		return c, nil
	}, zl)

	// RabbitMQ consumer: keep the catalog in step with the portal API.
	// Without a broker the catalog fills on demand.
	if mq, err := rabbitmq.NewConsumer(cfg.RabbitURL, competitionQueue, "competition.*", zl); err != nil {
		zl.Warn("rabbitmq unavailable, catalog fetches on demand", zap.Error(err))
	} else {
		defer mq.Close()
		msgs, err := mq.Consume()
		if err != nil {
			zl.Fatal("failed to start consuming", zap.Error(err))
		}
		consumer.NewCompetitionConsumer(cat, zl).Start(msgs)
	}

	store := session.NewStore(cfg.SessionTTL, zl)
	go store.Run(ctx, time.Minute)

	factory := &session.Factory{
		Portal:         portal,
		Catalog:        cat,
		Clock:          clock.System(),
		AutosaveWindow: cfg.AutosaveWindow,
		DefaultFees:    cfg.DefaultFees,
		DefaultCaps:    cfg.DefaultCaps,
		Logger:         zl,
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = middleware.NewValidator()
	e.Use(middleware.RequestLogger(zl))
	e.Use(echoMw.Recover())
	e.Use(echoMw.BodyLimit("32M"))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "ok", "service": "wizard-api", "sessions": store.Len()})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	handler.NewWizardHandler(factory, store, zl).RegisterRoutes(e.Group("/api/v1/wizards"))

	go func() {
		zl.Info("wizard-api starting", zap.String("port", cfg.WizardPort))
		if err := e.Start(":" + cfg.WizardPort); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown failed", zap.Error(err))
	}
}
