package config

import (
	"fmt"
	"regexp"
	"time"
)

// Default configuration values.
const (
	defaultServiceName = "link-tracker"
	defaultServicePort = 8094
	defaultVersion     = "0.1.0"

	defaultServerTimeout   = 30
	defaultIdleTimeoutS    = 120
	defaultShutdownTimeout = 30

	defaultDBHost        = "localhost"
	defaultDBPort        = 5432
	defaultDBUser        = "postgres"
	defaultDBName        = "link_tracker"
	defaultDBSSLMode     = "disable"
	defaultMaxOpenConns  = 25
	defaultMaxIdleConns  = 5
	defaultConnLifetimeM = 5

	defaultLinksTable = "links"

	defaultRateLimitMax    = 100
	defaultRateLimitWindow = time.Hour

	defaultRedisAddress = "localhost:6379"
)

// Rate limiter backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// tableNamePattern restricts configurable table names to safe identifiers.
var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Redis     RedisConfig     `yaml:"redis"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Port            int           `env:"LINK_TRACKER_PORT" yaml:"port"`
	Debug           bool          `env:"APP_DEBUG"         yaml:"debug"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" yaml:"cors_origins"`
}

// DatabaseConfig holds PostgreSQL configuration. URL, when set, overrides
// the component fields.
type DatabaseConfig struct {
	URL             string        `env:"LINK_TRACKER_DATABASE_URL"      yaml:"url"`
	Host            string        `env:"POSTGRES_LINK_TRACKER_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_LINK_TRACKER_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_LINK_TRACKER_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_LINK_TRACKER_PASSWORD" yaml:"password"`
	Database        string        `env:"POSTGRES_LINK_TRACKER_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_LINK_TRACKER_SSLMODE"  yaml:"sslmode"`
	LinksTable      string        `env:"LINK_TRACKER_LINKS_TABLE"       yaml:"links_table"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// AuthConfig holds the admission credentials: the admin secret guarding
// registration and the allow-listed bot submission tokens.
type AuthConfig struct {
	AdminSecret string   `env:"ADMIN_SECRET" yaml:"admin_secret"`
	BotTokens   []string `env:"BOT_TOKENS"   yaml:"bot_tokens"`
}

// RateLimitConfig holds submission rate limiting configuration.
type RateLimitConfig struct {
	MaxPerWindow int           `env:"RATE_LIMIT_MAX"     yaml:"max_per_window"`
	Window       time.Duration `env:"RATE_LIMIT_WINDOW"  yaml:"window"`
	Backend      string        `env:"RATE_LIMIT_BACKEND" yaml:"backend"`
}

// RedisConfig holds Redis connection configuration, used when the rate
// limiter backend is "redis".
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from the specified path. Callers that serve
// traffic must also call Validate; the migrate CLI only needs the database
// section and skips it.
func Load(path string) (*Config, error) {
	cfg, err := loadWithDefaults(path, setDefaults)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setRateLimitDefaults(&cfg.RateLimit)
	setRedisDefaults(&cfg.Redis)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
	if svc.ReadTimeout == 0 {
		svc.ReadTimeout = defaultServerTimeout * time.Second
	}
	if svc.WriteTimeout == 0 {
		svc.WriteTimeout = defaultServerTimeout * time.Second
	}
	if svc.IdleTimeout == 0 {
		svc.IdleTimeout = defaultIdleTimeoutS * time.Second
	}
	if svc.ShutdownTimeout == 0 {
		svc.ShutdownTimeout = defaultShutdownTimeout * time.Second
	}
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}
	if db.LinksTable == "" {
		db.LinksTable = defaultLinksTable
	}
	if db.MaxOpenConns == 0 {
		db.MaxOpenConns = defaultMaxOpenConns
	}
	if db.MaxIdleConns == 0 {
		db.MaxIdleConns = defaultMaxIdleConns
	}
	if db.ConnMaxLifetime == 0 {
		db.ConnMaxLifetime = defaultConnLifetimeM * time.Minute
	}
}

func setRateLimitDefaults(rl *RateLimitConfig) {
	if rl.MaxPerWindow == 0 {
		rl.MaxPerWindow = defaultRateLimitMax
	}
	if rl.Window == 0 {
		rl.Window = defaultRateLimitWindow
	}
	if rl.Backend == "" {
		rl.Backend = BackendMemory
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
}

func setLoggingDefaults(log *LoggingConfig) {
	if log.Level == "" {
		log.Level = "info"
	}
	if log.Format == "" {
		log.Format = "json"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := ValidateRequired("auth.admin_secret", c.Auth.AdminSecret); err != nil {
		return err
	}
	if len(c.Auth.BotTokens) == 0 {
		return &ValidationError{Field: "auth.bot_tokens", Message: "at least one token is required"}
	}
	if c.RateLimit.MaxPerWindow < 1 {
		return &ValidationError{Field: "rate_limit.max_per_window", Message: "must be positive"}
	}
	if c.RateLimit.Window <= 0 {
		return &ValidationError{Field: "rate_limit.window", Message: "must be positive"}
	}
	if c.RateLimit.Backend != BackendMemory && c.RateLimit.Backend != BackendRedis {
		return &ValidationError{Field: "rate_limit.backend", Message: "must be one of: memory, redis"}
	}
	if c.RateLimit.Backend == BackendRedis {
		if err := ValidateRequired("redis.address", c.Redis.Address); err != nil {
			return err
		}
	}
	if !tableNamePattern.MatchString(c.Database.LinksTable) {
		return &ValidationError{Field: "database.links_table", Message: "must be a plain SQL identifier"}
	}
	if err := ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := ValidateLogFormat(c.Logging.Format); err != nil {
		return err
	}
	return nil
}
