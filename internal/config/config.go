package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported archive drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// DBConfig holds findings archive configuration
type DBConfig struct {
	Driver          string
	Path            string
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// GeminiConfig holds the generative-AI collaborator settings
type GeminiConfig struct {
	APIKey     string
	ImageModel string
	TextModel  string
	// RequireCredential gates the UI until a key is selected even when APIKey is set
	RequireCredential bool
}

// Config holds all configuration for the application
type Config struct {
	Gemini         GeminiConfig
	HTTPAddr       string
	AssetsDir      string
	RequestTimeout time.Duration
	MaxUploadBytes int64
	MaxImageEdge   int
	CacheMaxBytes  int64
	CacheTTL       time.Duration
	SessionIdle    time.Duration
	MaxSessions    int
	FrigatedURL    string
	LogLevel       string
	LogJSON        bool

	ArchiveRetention     time.Duration
	ArchivePruneSchedule string
	DB                   DBConfig
}

// Load loads the configuration from environment variables, reading the given
// env files first. A missing env file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s: %w", f, err)
		}
	}

	config := &Config{
		Gemini: GeminiConfig{
			APIKey:            os.Getenv("GEMINI_API_KEY"),
			ImageModel:        envString("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
			TextModel:         envString("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
			RequireCredential: envBool("REQUIRE_CREDENTIAL", false),
		},
		HTTPAddr:             envString("HTTP_ADDR", ":8080"),
		AssetsDir:            envString("ASSETS_DIR", "web/assets"),
		RequestTimeout:       envSeconds("REQUEST_TIMEOUT", 2*time.Minute),
		MaxUploadBytes:       int64(envInt("MAX_UPLOAD_BYTES", 20<<20)),
		MaxImageEdge:         envInt("MAX_IMAGE_EDGE", 2048),
		CacheMaxBytes:        int64(envInt("CACHE_MAX_BYTES", 256<<20)),
		CacheTTL:             envSeconds("CACHE_TTL", time.Hour),
		SessionIdle:          envSeconds("SESSION_IDLE", 2*time.Hour),
		MaxSessions:          envInt("SESSION_MAX", 10000),
		FrigatedURL:          envString("FRIGATED_URL", "https://frigated.onurpatent.com"),
		LogLevel:             envString("LOG_LEVEL", "info"),
		LogJSON:              envBool("LOG_JSON", false),
		ArchiveRetention:     envSeconds("ARCHIVE_RETENTION", 30*24*time.Hour),
		ArchivePruneSchedule: envString("ARCHIVE_PRUNE_SCHEDULE", "0 0 * * * *"),
	}

	config.DB = DBConfig{
		Driver:          strings.ToLower(envString("DB_DRIVER", DriverSQLite)),
		Path:            envString("DB_PATH", "archaeo.db"),
		Host:            os.Getenv("DB_HOST"),
		Port:            envInt("DB_PORT", 5432),
		User:            os.Getenv("DB_USER"),
		Password:        os.Getenv("DB_PASSWORD"),
		Database:        os.Getenv("DB_NAME"),
		SSLMode:         envString("DB_SSL_MODE", "disable"),
		MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime: envSeconds("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.MaxImageEdge < 0 {
		return fmt.Errorf("MAX_IMAGE_EDGE must not be negative")
	}

	switch c.DB.Driver {
	case DriverNone:
	case DriverSQLite:
		if c.DB.Path == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DB.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.DB.User == "" {
			return fmt.Errorf("DB_USER is required")
		}
		if c.DB.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
		if c.DB.Database == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	return nil
}

// GetDSN returns the connection string for the configured archive driver
func (c *Config) GetDSN() string {
	if c.DB.Driver == DriverSQLite {
		return c.DB.Path
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

// envSeconds reads a duration given in whole seconds
func envSeconds(key string, def time.Duration) time.Duration {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return time.Duration(v) * time.Second
	}
	return def
}
