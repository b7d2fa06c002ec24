package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ivgrimm/shop_backend/internal/models"
)

type Config struct {
	ServerPort int

	// DatabaseURL selects Postgres; when empty the store is a SQLite file
	// at SQLitePath.
	DatabaseURL string
	SQLitePath  string

	SessionSecret   string
	SessionTTLHours int

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string

	LogLevel string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		ServerPort:      EnvIntDefault("SERVER_PORT", 8080),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      EnvDefault("SQLITE_PATH", "ecommerce.db"),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		SessionTTLHours: EnvIntDefault("SESSION_TTL_HOURS", 24),
		KafkaBrokers:    CSV(os.Getenv("KAFKA_BROKERS")),
		ESURL:           os.Getenv("ES_URL"),
		ESUser:          os.Getenv("ES_USER"),
		ESPassword:      os.Getenv("ES_PASSWORD"),
		LogLevel:        EnvDefault("LOG_LEVEL", "info"),
	}

	if config.SessionSecret == "" {
		return nil, fmt.Errorf("missing required env SESSION_SECRET")
	}

	return config, nil
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	if cfg.DatabaseURL != "" {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.CartItem{}, &models.Session{}); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
