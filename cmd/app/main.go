package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"paisavest/configs"
	"paisavest/internal/database"
	httpdelivery "paisavest/internal/delivery/http"
	"paisavest/internal/infra"
	"paisavest/internal/queue"
	"paisavest/internal/repository"
	"paisavest/internal/service"
	"paisavest/internal/usecase"
	"paisavest/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := configs.Load()
	logger := utils.NewLogger("paisavest-api", cfg.Server.Env)

	ctx := context.Background()

	db, err := infra.NewDatabase(ctx, cfg.Database.URL, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db, logger); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	investmentRepo := repository.NewInvestmentRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)

	// Services
	priceService := service.NewMockPriceService()
	portfolioService := service.NewPortfolioService(userRepo, investmentRepo, portfolioRepo, priceService, logger)
	investmentService := usecase.NewInvestmentService(userRepo, investmentRepo, portfolioService, priceService, logger)
	withdrawalService := service.NewWithdrawalService(userRepo, investmentRepo, portfolioRepo, cfg.Settlement.Delay, logger)

	// Settlement queue: broker-backed when AMQP is configured, otherwise the
	// in-process fallback settles within this binary.
	if cfg.Queue.URL != "" {
		publisher, err := queue.NewSettlementPublisher(cfg.Queue.URL, cfg.Queue.SettlementQueue)
		if err != nil {
			logger.Fatalf("Failed to connect to settlement broker: %v", err)
		}
		defer publisher.Close()
		withdrawalService.SetQueue(publisher)
		logger.Info("settlement queue: rabbitmq")
	} else {
		withdrawalService.SetQueue(queue.NewInProcessSettlementQueue(withdrawalService, logger))
		logger.Info("settlement queue: in-process")
	}

	// Daily SIP sweep
	sipScheduler := infra.NewSIPScheduler(userRepo, investmentService, cfg.Scheduler.SIPCron, logger)
	if err := sipScheduler.Start(); err != nil {
		logger.Fatalf("Failed to start SIP scheduler: %v", err)
	}
	defer sipScheduler.Stop()

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	httpdelivery.SetupRoutes(e, &httpdelivery.RouterConfig{
		UserHandler:       httpdelivery.NewUserHandler(userRepo, portfolioRepo, logger),
		InvestmentHandler: httpdelivery.NewInvestmentHandler(investmentService),
		PortfolioHandler:  httpdelivery.NewPortfolioHandler(portfolioService),
		WithdrawalHandler: httpdelivery.NewWithdrawalHandler(withdrawalService),
		JWTSecret:         cfg.Auth.JWTSecret,
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Infof("starting server on %s", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}
}
