package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Session    SessionConfig    `mapstructure:"session"`
	Redis      RedisConfig      `mapstructure:"redis"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Security   SecurityConfig   `mapstructure:"security"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Outbox     OutboxConfig     `mapstructure:"outbox"`
	Audit      AuditConfig      `mapstructure:"audit"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN renders the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// StorageConfig selects the store implementation: "postgres" or "memory".
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

// SessionConfig selects where login sessions live: "redis" or "memory".
type SessionConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
}

type MonitoringConfig struct {
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	MetricsAddr    string `mapstructure:"metrics_addr"`
}

type OutboxConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxRetries   int           `mapstructure:"max_retries"`
	Retention    time.Duration `mapstructure:"retention"`
}

type AuditConfig struct {
	RetentionDays   int           `mapstructure:"retention_days"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// envOverrides are the HMS_* variables applied after the config file. Unset variables leave
// the file value in place.
type envOverrides struct {
	Port           int    `envconfig:"PORT"`
	StorageDriver  string `envconfig:"STORAGE_DRIVER"`
	DBHost         string `envconfig:"DB_HOST"`
	DBPort         int    `envconfig:"DB_PORT"`
	DBUser         string `envconfig:"DB_USER"`
	DBPassword     string `envconfig:"DB_PASSWORD"`
	DBName         string `envconfig:"DB_NAME"`
	DBSSLMode      string `envconfig:"DB_SSLMODE"`
	JWTSecret      string `envconfig:"JWT_SECRET"`
	RedisAddr      string `envconfig:"REDIS_ADDR"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`
	SessionBackend string `envconfig:"SESSION_BACKEND"`
	SMTPHost       string `envconfig:"SMTP_HOST"`
	SMTPPassword   string `envconfig:"SMTP_PASSWORD"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
}

const envPrefix = "HMS"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.max_header_bytes", 1<<20)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "hospital")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("storage.driver", "postgres")

	v.SetDefault("jwt.issuer", "hospital-api")
	v.SetDefault("jwt.expiry_hours", 24)

	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.ttl", 24*time.Hour)

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("security.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("security.allowed_headers", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})
	v.SetDefault("security.max_age", 86400)

	v.SetDefault("monitoring.metrics_enabled", true)
	v.SetDefault("monitoring.metrics_addr", ":9091")

	v.SetDefault("outbox.poll_interval", 5*time.Second)
	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.max_retries", 3)
	v.SetDefault("outbox.retention", 7*24*time.Hour)

	v.SetDefault("audit.retention_days", 90)
	v.SetDefault("audit.cleanup_interval", 24*time.Hour)

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from", "no-reply@hospital.local")

	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yml from the usual locations, then .env, then HMS_* variables. A
// missing config file is not an error; defaults apply.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")
	v.AddConfigPath("/app/config")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	env.apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (e envOverrides) apply(cfg *Config) {
	setInt(&cfg.Server.Port, e.Port)
	setString(&cfg.Storage.Driver, e.StorageDriver)
	setString(&cfg.Database.Host, e.DBHost)
	setInt(&cfg.Database.Port, e.DBPort)
	setString(&cfg.Database.User, e.DBUser)
	setString(&cfg.Database.Password, e.DBPassword)
	setString(&cfg.Database.Name, e.DBName)
	setString(&cfg.Database.SSLMode, e.DBSSLMode)
	setString(&cfg.JWT.Secret, e.JWTSecret)
	setString(&cfg.Redis.Addr, e.RedisAddr)
	setString(&cfg.Redis.Password, e.RedisPassword)
	setString(&cfg.Session.Backend, e.SessionBackend)
	setString(&cfg.SMTP.Host, e.SMTPHost)
	setString(&cfg.SMTP.Password, e.SMTPPassword)
	setString(&cfg.Log.Level, e.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Session.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	return nil
}
