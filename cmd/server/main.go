package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lucascassio/trocalivros/internal/config"
	"github.com/lucascassio/trocalivros/internal/database"
	"github.com/lucascassio/trocalivros/internal/handler"
	"github.com/lucascassio/trocalivros/internal/queue"
	"github.com/lucascassio/trocalivros/internal/repository"
	"github.com/lucascassio/trocalivros/internal/router"
	queuepub "github.com/lucascassio/trocalivros/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient() // nil when redis is down; limiter disables itself
	rlCfg := config.LoadRateLimitConfig()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	books := repository.NewBookRepo(db)
	trades := repository.NewTradeRepo(db)
	notifications := repository.NewNotificationRepo(db)
	ratings := repository.NewRatingRepo(db)

	h := router.Handlers{
		Users:         handler.NewUserHandler(cfg, users, tokens),
		Books:         handler.NewBookHandler(cfg, books),
		Trades:        handler.NewTradeHandler(db, trades, books, notifications),
		Notifications: handler.NewNotificationHandler(notifications),
		Ratings:       handler.NewRatingHandler(ratings, trades, users),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, rlCfg, rdb, tokens, h)

	// Drain trade events in the background; the consumer reconnects on
	// its own and never blocks the HTTP server.
	go queue.StartTradeConsumer(queuepub.BrokerURL())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
