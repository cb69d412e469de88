package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	Store   StoreConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Host string
	Env  string // "development" or "production"
}

// GameConfig holds game-related configuration
type GameConfig struct {
	MaxPlayers       int
	RoomCodeLength   int
	StaleGameTimeout time.Duration
	WordsFile        string // optional corpus override, embedded corpus when empty
	WriteRetries     int
	TickInterval     time.Duration
	ClientRateLimit  float64 // messages per second
	ClientRateBurst  int
}

// StoreConfig selects the session store backend
type StoreConfig struct {
	Driver     string // "memory" or "sqlite"
	SQLitePath string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load loads configuration from environment variables with defaults. A
// .env file in the working directory is read first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
			Env:  getEnv("ENV", "development"),
		},
		Game: GameConfig{
			MaxPlayers:       getEnvInt("MAX_PLAYERS", 20),
			RoomCodeLength:   getEnvInt("ROOM_CODE_LENGTH", 5),
			StaleGameTimeout: time.Duration(getEnvInt("STALE_GAME_TIMEOUT_MINUTES", 120)) * time.Minute,
			WordsFile:        getEnv("WORDS_FILE", ""),
			WriteRetries:     getEnvInt("WRITE_RETRIES", 5),
			TickInterval:     time.Duration(getEnvInt("TICK_INTERVAL_MS", 1000)) * time.Millisecond,
			ClientRateLimit:  getEnvFloat("CLIENT_RATE_LIMIT", 10),
			ClientRateBurst:  getEnvInt("CLIENT_RATE_BURST", 20),
		},
		Store: StoreConfig{
			Driver:     getEnv("STORE_DRIVER", "memory"),
			SQLitePath: getEnv("SQLITE_PATH", "./data/codewords.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as an integer or a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
