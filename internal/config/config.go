package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBDriver      string // sqlite | pgx
	DBDSN         string
	UploadDir     string
	LogFile       string
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
	RedisURL      string
	RedisPassword string
	RedisDB       int
	CORSOrigins   string
	SeedDemo      bool
}

// Load reads the environment, merging a .env file from the working directory when present.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}

	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:         getEnv("DB_DSN", "sweetindulgence.db"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		LogFile:       os.Getenv("LOG_FILE"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:      getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
		ResetTokenTTL: getEnvAsDuration("RESET_TOKEN_TTL", time.Hour),
		RedisURL:      os.Getenv("REDIS_URL"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		CORSOrigins:   getEnv("CORS_ORIGINS", "*"),
		SeedDemo:      getEnvAsBool("SEED_DEMO", true),
	}
	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "pgx" {
		log.Printf("[config] unknown DB_DRIVER %q, falling back to sqlite", cfg.DBDriver)
		cfg.DBDriver = "sqlite"
	}
	if cfg.JWTSecret == "dev-secret-change-me" {
		log.Printf("[warn] JWT_SECRET not set, using development secret")
	}

	log.Printf("[config] PORT=%s DB_DRIVER=%s DB_DSN=%s UPLOAD_DIR=%s LOG_FILE=%s REDIS_URL=%s",
		cfg.Port, cfg.DBDriver, cfg.DBDSN, cfg.UploadDir, cfg.LogFile, cfg.RedisURL)
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
