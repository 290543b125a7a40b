package main

import (
	"log"

	"dealseek-core/internal/adapter/api"
	"dealseek-core/internal/adapter/client"
	"dealseek-core/internal/adapter/store"
	"dealseek-core/internal/config"
	"dealseek-core/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if cfg.DemoMode() {
		log.Println("Warning: no AliExpress credentials configured, running in offline demo mode")
	}

	// Redis for the result cache, affiliate links and rate limiting
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	resultCache := store.NewRedisCache(rdb)
	apiClient := client.NewAliExpressClient(cfg.BaseURL, cfg.AppKey, cfg.AppSecret, cfg.TrackingID, cfg.Timeout)

	// Inject the adapters into the orchestration layer
	orchestrator := usecase.NewOrchestrator(resultCache, apiClient, cfg)

	// Initialize API Layer (Delivery Layer)
	app := fiber.New(fiber.Config{
		AppName: "DealSeek Search Gateway",
	})

	handler := api.NewSearchHandler(orchestrator)
	api.SetupRouter(app, handler)

	// Start Server
	log.Printf("DealSeek Search Gateway running on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
