package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Settings aggregates the process-level configuration read from the
// environment (optionally seeded from a .env file). Unlike Config these are
// fixed for the lifetime of the process.
type Settings struct {
	Token   string
	GuildID string

	LogLevel   string
	ConfigPath string
	LangPath   string

	Database DatabaseSettings
	AMQPURL  string

	Web WebSettings
}

// DatabaseSettings selects and configures the ticket store backend.
type DatabaseSettings struct {
	Driver        string
	SQLitePath    string
	MongoURI      string
	MongoDatabase string
}

// WebSettings configures the operator panel.
type WebSettings struct {
	Host            string
	Port            int
	Username        string
	Password        string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// LoadSettings reads process settings from the environment, loading a .env
// file first when present. Only the Discord token is mandatory.
func LoadSettings() (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{
		Token:      os.Getenv("DISCORD_TOKEN"),
		GuildID:    os.Getenv("GUILD_ID"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		ConfigPath: getEnv("CONFIG_PATH", "config.json"),
		LangPath:   getEnv("LANG_PATH", "lang.yml"),
		Database: DatabaseSettings{
			Driver:        getEnv("DB_DRIVER", "sqlite"),
			SQLitePath:    getEnv("SQLITE_PATH", "data/tickets.db"),
			MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDatabase: getEnv("MONGO_DATABASE", "aetherticket"),
		},
		AMQPURL: os.Getenv("AMQP_URL"),
		Web: WebSettings{
			Host:            getEnv("WEBUI_HOST", "127.0.0.1"),
			Port:            getEnvAsInt("PORT", 8080),
			Username:        getEnv("WEBUI_USERNAME", "admin"),
			Password:        os.Getenv("WEBUI_PASSWORD"),
			RateLimitMax:    getEnvAsInt("WEBUI_RATE_LIMIT_MAX", 100),
			RateLimitWindow: time.Duration(getEnvAsInt("WEBUI_RATE_LIMIT_WINDOW_MS", 60_000)) * time.Millisecond,
		},
	}

	if s.Token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is not set")
	}
	return s, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
