package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ivgrimm/shop_backend/internal/config"
	"github.com/ivgrimm/shop_backend/internal/es"
	"github.com/ivgrimm/shop_backend/internal/events"
	"github.com/ivgrimm/shop_backend/internal/handlers"
	"github.com/ivgrimm/shop_backend/internal/handlers/cart"
	"github.com/ivgrimm/shop_backend/internal/logging"
	loggingmw "github.com/ivgrimm/shop_backend/internal/middleware/logging"
	"github.com/ivgrimm/shop_backend/internal/session"
	httpserver "github.com/ivgrimm/shop_backend/internal/transport/http"
)

const productIndex = "product"

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LogLevel)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	prod := events.NewProducer(configuration.KafkaBrokers)

	sessions := &session.Service{
		DB:     db,
		Secret: []byte(configuration.SessionSecret),
		TTL:    time.Duration(configuration.SessionTTLHours) * time.Hour,
	}

	deps := httpserver.Deps{
		DB:          db,
		Sessions:    sessions,
		AuthHandler: &handlers.AuthHandler{DB: db, Sessions: sessions, Producer: prod},
		CartHandler: &cart.CartHandler{DB: db, Producer: prod},
	}

	productHandler := &handlers.ProductHandler{DB: db, Producer: prod}
	if configuration.ESURL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		productHandler.ES = esClient
		productHandler.ESIndex = productIndex
		deps.SearchHandler = &handlers.SearchHandler{ES: esClient, Index: productIndex}
	}
	deps.ProductHandler = productHandler

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", configuration.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db() error", "error", err)
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
