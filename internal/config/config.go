package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Service names double as the default APP_NAME and migrations sub-directory.
const (
	ServiceTask    = "task-service"
	ServiceUser    = "user-service"
	ServiceRewards = "rewards-service"
)

var defaultPorts = map[string]string{
	ServiceTask:    "3003",
	ServiceUser:    "3001",
	ServiceRewards: "3005",
}

// Config aggregates all runtime settings required by a service.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Outbox      OutboxConfig
	Services    ServicesConfig
	Jobs        JobsConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
	UploadsDir  string
}

type HTTPConfig struct {
	Host          string
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	MaxConn       int
	EnablePprof   bool
	EnableMetrics bool
}

type DatabaseConfig struct {
	URL               string
	Host              string
	Port              string
	Name              string
	User              string
	Password          string
	MaxOpenConns      int
	MaxIdleConns      int
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	SSLMode           string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

// OutboxConfig tunes the local queue of downstream calls.
type OutboxConfig struct {
	Path           string
	RetentionHours int
	SyncInterval   time.Duration
	MaxRetry       int
	BatchSize      int
}

// ServicesConfig holds the peer service endpoints.
type ServicesConfig struct {
	NotificationURL string
	PointsURL       string
	Timeout         time.Duration
}

type JobsConfig struct {
	RecurrenceSweepSpec string
	LinkRequestExpiry   string
	LinkRequestTTL      time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration for one service from environment variables (optionally .env)
// and applies defaults so the service can boot in any environment.
func Load(service string) (*Config, error) {
	_ = godotenv.Load(".env")

	if service == "" {
		service = ServiceTask
	}
	env := getString("APP_ENV", "development")
	production := env == "production"

	cfg := &Config{
		AppName:     getString("APP_NAME", service),
		Environment: env,
		HTTP: HTTPConfig{
			Host:          getString("SERVER_HOST", "0.0.0.0"),
			Port:          getString("SERVER_PORT", defaultPorts[service]),
			ReadTimeout:   getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:  getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:   getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:       getInt("SERVER_MAX_CONN", 0),
			EnablePprof:   getBool("SERVER_ENABLE_PPROF", false),
			EnableMetrics: getBool("SERVER_ENABLE_METRICS", false),
		},
		Database: DatabaseConfig{
			URL:               os.Getenv("DATABASE_URL"),
			Host:              getString("DB_HOST", "localhost"),
			Port:              getString("DB_PORT", "5432"),
			Name:              getString("DB_NAME", "edvance"),
			User:              getString("DB_USER", "edvance"),
			Password:          os.Getenv("DB_PASSWORD"),
			MaxOpenConns:      getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:      getInt("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime:   getDuration("DB_CONN_LIFETIME", time.Hour),
			MaxConnIdleTime:   getDuration("DB_CONN_IDLE_TIME", 30*time.Minute),
			HealthCheckPeriod: getDuration("DB_HEALTH_CHECK_PERIOD", time.Minute),
			SSLMode:           getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
			PoolSize: getInt("REDIS_POOL_SIZE", 0),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getString("JWT_ISSUER", "edvance"),
		},
		Outbox: OutboxConfig{
			Path:           getString("BOLTDB_PATH", filepath.Join("data", service+"-outbox.db")),
			RetentionHours: getInt("OUTBOX_RETENTION_HOURS", 24),
			SyncInterval:   getDuration("SYNC_INTERVAL_SECONDS", 30*time.Second),
			MaxRetry:       getInt("MAX_RETRY_ATTEMPTS", 3),
			BatchSize:      getInt("OUTBOX_BATCH_SIZE", 50),
		},
		Services: ServicesConfig{
			NotificationURL: serviceURL("NOTIFICATION_SERVICE_URL", "http://localhost:3006", production),
			PointsURL:       serviceURL("POINTS_SERVICE_URL", "http://localhost:3004", production),
			Timeout:         getDuration("DOWNSTREAM_TIMEOUT_SECONDS", 5*time.Second),
		},
		Jobs: JobsConfig{
			RecurrenceSweepSpec: getString("RECURRENCE_SWEEP_SPEC", "0 0 * * * *"),
			LinkRequestExpiry:   getString("LINK_REQUEST_EXPIRY_SPEC", "0 */15 * * * *"),
			LinkRequestTTL:      getDuration("LINK_REQUEST_TTL", 7*24*time.Hour),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", filepath.Join("assets", "migrations", service)),
		},
		UploadsDir: getString("UPLOADS_DIR", "./uploads"),
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}
	if production && cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	return cfg, nil
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// serviceURL prefers PRODUCTION_<key> in production and falls back to <key>.
func serviceURL(key, fallback string, production bool) string {
	if production {
		if val := os.Getenv("PRODUCTION_" + key); val != "" {
			return val
		}
	}
	return getString(key, fallback)
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
