package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gannewala/juice-shop/internal/config"
	"github.com/gannewala/juice-shop/internal/handlers"
	"github.com/gannewala/juice-shop/internal/intent"
	"github.com/gannewala/juice-shop/internal/mykafka"
	"github.com/gannewala/juice-shop/internal/payment"
	"github.com/gannewala/juice-shop/internal/service"
	httpserver "github.com/gannewala/juice-shop/internal/transport/http"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	configuration, err := config.LoadConfig()
	if err != nil {
		zap.L().Fatal("load config", zap.Error(err))
	}

	db, err := config.InitDB(configuration)
	if err != nil {
		zap.L().Fatal("init db", zap.Error(err))
	}

	if err := config.BootstrapAccounts(db, configuration); err != nil {
		zap.L().Fatal("bootstrap accounts", zap.Error(err))
	}

	jwtSecret := []byte(configuration.JWTSecret)
	refreshSecret := []byte(configuration.RefreshSecret)

	prod := mykafka.NewProducer(configuration.KafkaAddress)
	defer prod.Close()

	var (
		gateway payment.Gateway
		status  payment.StatusClient
	)
	switch configuration.PaymentProvider {
	case "payu":
		payu := payment.NewPayUGateway(
			configuration.PayUMerchantKey,
			configuration.PayUMerchantSalt,
			configuration.PayUEnvironment,
			configuration.BaseURL,
		)
		gateway = payu
		status = payu
	default:
		gateway = payment.NewCheckoutGateway(
			configuration.CheckoutSecretKey,
			configuration.CheckoutAPIBase,
			configuration.BaseURL,
			configuration.Currency,
		)
	}

	intents := intent.NewStore(intent.DefaultTTL)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	tokenService := &service.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}

	deps := httpserver.Deps{
		DB: db,
		OrderHandler: &handlers.OrderHandler{
			DB:        db,
			Gateway:   gateway,
			Intents:   intents,
			Producer:  prod,
			UnitPrice: configuration.UnitPrice,
			Currency:  configuration.Currency,
			PublicKey: configuration.CheckoutPublicKey,
		},
		AuthHandler:    &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: prod},
		UserHandler:    &handlers.UserHandler{DB: db, Producer: prod},
		PaymentHandler: &handlers.PaymentHandler{Status: status},
		TokenService:   tokenService,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.Address,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		zap.L().Info("starting server", zap.String("address", configuration.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		if err := intents.Janitor(ctx, time.Minute); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	<-ctx.Done()

	zap.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}

	if err := eg.Wait(); err != nil {
		zap.L().Error("shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			zap.L().Error("db close", zap.Error(err))
		}
	}

	zap.L().Info("shutdown complete")
}
