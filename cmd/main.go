package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/db"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/handlers"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/payments"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/repository"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/router"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/router/config"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	redisClient, err := db.InitRedis(cfg)
	if err != nil {
		log.Fatalf("error initializing redis: %v", err)
	}

	logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)

	listingRepo := repository.NewPostgresListingRepository(dbPool)
	accessRepo := repository.NewPostgresAccessRepository(dbPool)
	slotRepo := repository.NewPostgresSlotRepository(dbPool)
	matchRepo := repository.NewPostgresMatchRepository(dbPool)
	messageRepo := repository.NewPostgresMessageRepository(dbPool)

	paymentClient := payments.NewClient(cfg.PaymentBaseURL)

	accessService := services.NewAccessService(accessRepo, listingRepo, paymentClient, redisClient)
	listingService := services.NewListingService(listingRepo, accessService)
	slotService := services.NewSlotService(slotRepo, logger)
	matchService := services.NewMatchService(matchRepo, listingRepo)
	chatService := services.NewChatService(messageRepo, matchService)

	listingHandler := handlers.NewListingHandler(listingService, logger, 5*time.Second)
	accessHandler := handlers.NewAccessHandler(accessService, logger, 5*time.Second)
	slotHandler := handlers.NewSlotHandler(slotService, logger, 5*time.Second)
	matchHandler := handlers.NewMatchHandler(matchService, chatService, logger, 5*time.Second)

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.SweepSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		slotService.SweepExpiredSlots(ctx)
	}); err != nil {
		log.Fatalf("invalid sweep spec %q: %v", cfg.SweepSpec, err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	routes := router.InitRoutes(listingHandler, accessHandler, slotHandler, matchHandler)

	log.Printf("server is listening on %s...", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, routes); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}
