package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"paisavest/configs"
	"paisavest/internal/database"
	"paisavest/internal/infra"
	"paisavest/internal/queue"
	"paisavest/internal/repository"
	"paisavest/internal/service"
	"paisavest/internal/utils"
)

// The settlement worker consumes withdrawal settlement jobs from RabbitMQ
// and flips pending withdrawals to completed once their hold expires.
func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := configs.Load()
	logger := utils.NewLogger("paisavest-settlement-worker", cfg.Server.Env)

	if cfg.Queue.URL == "" {
		logger.Fatal("AMQP_URL is required for the settlement worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := infra.NewDatabase(ctx, cfg.Database.URL, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db, logger); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	investmentRepo := repository.NewInvestmentRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)
	settler := service.NewWithdrawalService(userRepo, investmentRepo, portfolioRepo, cfg.Settlement.Delay, logger)

	conn, err := amqp.Dial(cfg.Queue.URL)
	if err != nil {
		logger.Fatalf("Failed to connect to settlement broker: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatalf("Failed to open broker channel: %v", err)
	}
	defer ch.Close()

	logger.WithField("queue", cfg.Queue.SettlementQueue).Info("settlement worker started")

	if err := queue.ConsumeSettlements(ctx, ch, cfg.Queue.SettlementQueue, settler, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Consumer stopped: %v", err)
	}

	logger.Info("settlement worker stopped")
}
