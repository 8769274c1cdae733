package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Client side
	APIURL           string
	TokenFile        string
	SearchDebounce   time.Duration
	DefaultPageLimit int

	// Devserver side
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration
	DBPath  string

	DefaultLimitMemory uint
	DefaultLimitTimeMs uint
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIURL:           getEnv("API_URL", "http://localhost:8080"),
		TokenFile:        getEnv("TOKEN_FILE", defaultTokenFile()),
		SearchDebounce:   time.Duration(getEnvAsInt("SEARCH_DEBOUNCE_MS", 500)) * time.Millisecond,
		DefaultPageLimit: getEnvAsInt("PAGE_LIMIT", 10),

		APIPort: getEnv("API_PORT", "8080"),
		JWTKey:  []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:  time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBPath:  getEnv("DB_PATH", "devserver.db"),

		DefaultLimitMemory: uint(getEnvAsInt("DEFAULT_LIMIT_MEMORY", 268435456)),
		DefaultLimitTimeMs: uint(getEnvAsInt("DEFAULT_LIMIT_TIME_MS", 1000)),
	}
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".code_judge_token"
	}
	return filepath.Join(home, ".code_judge_token")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
