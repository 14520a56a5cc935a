package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/shopserv/shopserv/internal/config"
	"github.com/shopserv/shopserv/internal/es"
	"github.com/shopserv/shopserv/internal/httpserver"
	"github.com/shopserv/shopserv/internal/logging"
	"github.com/shopserv/shopserv/internal/mykafka"
	"github.com/shopserv/shopserv/internal/payment"
	"github.com/shopserv/shopserv/internal/repo"
	"github.com/shopserv/shopserv/internal/service"
	"github.com/shopserv/shopserv/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	e := echo.New()
	e.HideBanner = true

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka init error: %v", err)
		}
		defer producer.Close()
	} else {
		logger.Warn("kafka disabled, no brokers configured")
	}

	var esClient *elasticsearch.Client
	if cfg.ESURL != "" {
		esClient, err = es.NewClient(cfg)
		if err != nil {
			// Search degrades to the catalog table.
			logger.Warn("elasticsearch unavailable", "error", err)
			esClient = nil
		}
	}

	r := &repo.GormRepo{DB: db}

	issuer := &tokens.Issuer{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.RefreshSecret,
	}
	tokenSvc := &service.TokenService{Repo: r, Issuer: issuer}
	authSvc := &service.AuthService{Repo: r, OTPTTL: cfg.OTPTTL}
	cartSvc := &service.CartService{Repo: r}
	catalogSvc := &service.CatalogService{Repo: r, ES: esClient, ESIndex: cfg.ESIndex}
	orderSvc := &service.OrderService{
		Repo:         r,
		Gateway:      payment.NewClient(cfg.GatewayURL, cfg.GatewayKey),
		UPIID:        cfg.UPIID,
		ClampToStock: true,
	}
	adminSvc := &service.AdminService{Repo: r, ES: esClient, ESIndex: cfg.ESIndex}
	notifSvc := &service.NotificationService{Repo: r}

	httpserver.Register(e, &httpserver.Deps{
		Auth:          &httpserver.AuthHTTP{Svc: authSvc, Tokens: tokenSvc, Producer: producer},
		Catalog:       &httpserver.CatalogHTTP{Svc: catalogSvc, Producer: producer},
		Cart:          &httpserver.CartHTTP{Svc: cartSvc},
		Order:         &httpserver.OrderHTTP{Svc: orderSvc, Producer: producer},
		Admin:         &httpserver.AdminHTTP{Svc: adminSvc},
		Notifications: &httpserver.NotificationHTTP{Svc: notifSvc},
		Issuer:        issuer,
		Tokens:        tokenSvc,
	})

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := e.Start(fmt.Sprintf(":%d", cfg.ServerPort)); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info("server stopped")
}
