package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr          string
	BoardEventsChannel string

	// Identity provider settings. JWKSURL points at the provider's key set;
	// Issuer/Audience are checked against incoming token claims.
	JWKSURL     string
	JWTIssuer   string
	JWTAudience string

	GinMode    string
	ListenAddr string
	LogFile    string
}

func Load() *Config {
	// Missing .env is fine; real deployments use process env.
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "planner"),
		DBPassword: getEnv("DB_PASSWORD", "planner"),
		DBName:     getEnv("DB_NAME", "planner"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		BoardEventsChannel: getEnv("BOARD_EVENTS_CHANNEL", "planner:board-updates"),

		JWKSURL:     getEnv("JWKS_URL", ""),
		JWTIssuer:   getEnv("JWT_ISSUER", ""),
		JWTAudience: getEnv("JWT_AUDIENCE", ""),

		GinMode:    getEnv("GIN_MODE", "debug"),
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		LogFile:    getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
