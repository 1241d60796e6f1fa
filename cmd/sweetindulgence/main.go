package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"sweetindulgence/internal/cache"
	"sweetindulgence/internal/config"
	apphttp "sweetindulgence/internal/http"
	"sweetindulgence/internal/http/handlers"
	"sweetindulgence/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if cfg.SeedDemo {
		if err := repos.SeedDemo(context.Background(), db); err != nil {
			log.Fatal(err)
		}
	}

	// Redis is optional: without it product reads hit the database and
	// rate limits are per process.
	var rdb *redis.Client
	var limiterStore fiber.Storage
	if cfg.RedisURL != "" {
		rdb, err = cache.Connect(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("[warn] redis unavailable, continuing without cache: %v", err)
			rdb = nil
		} else {
			defer rdb.Close()
			limiterStore = cache.NewLimiterStorage(rdb)
		}
	}

	deps := handlers.NewDeps(db, cfg, rdb)
	app := apphttp.NewApp(deps, apphttp.Options{
		CORSOrigins: cfg.CORSOrigins,
		Storage:     limiterStore,
		AccessLog:   true,
	})

	log.Printf("[http] listening on :%s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
