package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	GoCardless GoCardlessConfig
	Sync       SyncConfig
	Trading212 Trading212Config
	CNB        CNBConfig
	Cron       CronConfig
	GigaChat   GigaChatConfig
	Logger     LoggerConfig
}

// LoggerConfig selects the zap level and encoding. Format is "json" (default)
// or "console" for local runs.
type LoggerConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	// Pool sizing; zero values keep the pgxpool defaults.
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
	ApplicationName string
}

// GoCardlessConfig holds the open-banking aggregator credentials.
// Sandbox and production share the base URL; only the credentials differ.
type GoCardlessConfig struct {
	SecretID          string
	SecretKey         string
	Sandbox           bool
	BaseURL           string
	Country           string
	RequestsPerSecond float64
	Timeout           time.Duration
}

type SyncConfig struct {
	HomeCurrency         string
	LookbackDays         int
	TransferWindowDays   int
	TransferChunkSize    int
	TransferCategoryID   string
	TransferCategoryName string
	Timezone             string
	ConvertFX            bool
	MerchantNormalizer   string
}

type Trading212Config struct {
	APIKey      string
	BaseURL     string
	MaxAttempts int
	Backoff     time.Duration
	CacheTTL    time.Duration
}

type CNBConfig struct {
	BaseURL string
}

type CronConfig struct {
	Secret string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	InsecureSkipVerify bool
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work the same (Docker/K8s)
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout := getEnvInt("SERVER_READ_TIMEOUT", 30)
	writeTimeout := getEnvInt("SERVER_WRITE_TIMEOUT", 120)
	gcTimeout := getEnvInt("GC_TIMEOUT_SECONDS", 30)
	t212BackoffMs := getEnvInt("T212_BACKOFF_MS", 400)
	t212CacheSeconds := getEnvInt("T212_CACHE_SECONDS", 5)
	dbLifetimeMinutes := getEnvInt("DB_MAX_CONN_LIFETIME_MINUTES", 60)
	dbIdleMinutes := getEnvInt("DB_MAX_CONN_IDLE_MINUTES", 10)
	dbConnectSeconds := getEnvInt("DB_CONNECT_TIMEOUT_SECONDS", 10)

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "finsync"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxConns:        int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns:        int32(getEnvInt("DB_MIN_CONNS", 0)),
			MaxConnLifetime: time.Duration(dbLifetimeMinutes) * time.Minute,
			MaxConnIdleTime: time.Duration(dbIdleMinutes) * time.Minute,
			ConnectTimeout:  time.Duration(dbConnectSeconds) * time.Second,
			ApplicationName: getEnv("DB_APPLICATION_NAME", "finsync"),
		},
		GoCardless: GoCardlessConfig{
			SecretID:          getEnv("GC_SECRET_ID", ""),
			SecretKey:         getEnv("GC_SECRET_KEY", ""),
			Sandbox:           getEnv("GC_SANDBOX", "false") == "true",
			BaseURL:           getEnv("GC_BASE_URL", "https://bankaccountdata.gocardless.com/api/v2"),
			Country:           getEnv("GC_COUNTRY", "CZ"),
			RequestsPerSecond: getEnvFloat("GC_REQUESTS_PER_SECOND", 4),
			Timeout:           time.Duration(gcTimeout) * time.Second,
		},
		Sync: SyncConfig{
			HomeCurrency:         getEnv("SYNC_HOME_CURRENCY", "CZK"),
			LookbackDays:         getEnvInt("SYNC_LOOKBACK_DAYS", 90),
			TransferWindowDays:   getEnvInt("SYNC_TRANSFER_WINDOW_DAYS", 30),
			TransferChunkSize:    getEnvInt("SYNC_TRANSFER_CHUNK_SIZE", 100),
			TransferCategoryID:   getEnv("SYNC_TRANSFER_CATEGORY_ID", "transfer"),
			TransferCategoryName: getEnv("SYNC_TRANSFER_CATEGORY_NAME", "Převod"),
			Timezone:             getEnv("SYNC_TIMEZONE", "Europe/Prague"),
			ConvertFX:            getEnv("SYNC_CONVERT_FX", "false") == "true",
			MerchantNormalizer:   getEnv("SYNC_MERCHANT_NORMALIZER", "rules"),
		},
		Trading212: Trading212Config{
			APIKey:      getEnv("T212_API_KEY", ""),
			BaseURL:     getEnv("T212_BASE_URL", "https://live.trading212.com"),
			MaxAttempts: getEnvInt("T212_MAX_ATTEMPTS", 3),
			Backoff:     time.Duration(t212BackoffMs) * time.Millisecond,
			CacheTTL:    time.Duration(t212CacheSeconds) * time.Second,
		},
		CNB: CNBConfig{
			BaseURL: getEnv("CNB_BASE_URL", "https://api.cnb.cz"),
		},
		Cron: CronConfig{
			Secret: getEnv("CRON_SECRET", ""),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "false") == "true",
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

// Location resolves the sync timezone, falling back to UTC for unknown names.
func (c SyncConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}
