package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Checkout  CheckoutConfig
	Storage   StorageConfig
	Client    ClientConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings and the cart store options
type RedisConfig struct {
	Enabled          bool
	Host             string
	Port             int
	Password         string
	DB               int
	KeyPrefix        string
	TTL              time.Duration
	FallbackToMemory bool
}

// Addr returns host:port for the Redis client
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds token signing settings
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	IdleTimeout           time.Duration
	MaxHeaderBytes        int
	MaxBodySize           int64
	RateLimitEnabled      bool
	RateLimitRequests     int
	RateLimitWindow       time.Duration
	AuthRateLimitEnabled  bool
	AuthRateLimitRequests int
	AuthRateLimitWindow   time.Duration
	CORSAllowOrigins      []string
	CORSAllowMethods      []string
	CORSAllowHeaders      []string
	TrustedProxies        []string
}

// CheckoutConfig holds pricing and reporting rules
type CheckoutConfig struct {
	TaxRate           decimal.Decimal
	LowStockThreshold int
}

// StorageConfig holds object storage settings for product images
type StorageConfig struct {
	Backend           string // stub or s3
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PublicBaseURL     string
	PresignExpiration time.Duration
}

// ClientConfig holds settings for the storefront CLI
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	SessionID string
	Token     string
	StorePath string // SQLite file holding carts when Redis is off; ":memory:" keeps them in-process
}

// TelemetryConfig holds tracing configuration
type TelemetryConfig struct {
	Enabled            bool
	ServiceName        string
	CollectorEndpoint  string
	Insecure           bool
	SamplingRatio      float64
	DBTracing          bool
	SlowQueryThreshold time.Duration
	MetricsInterval    time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SHOP_ prefix (e.g., SHOP_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("SHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names kept for existing deployments
	_ = v.BindEnv("jwt.secret", "SHOP_JWT_SECRET", "JWT_SECRET_SEED")
	_ = v.BindEnv("checkout.tax_rate", "SHOP_CHECKOUT_TAX_RATE", "TAX_RATE")

	taxRate, err := decimal.NewFromString(v.GetString("checkout.tax_rate"))
	if err != nil && v.GetString("checkout.tax_rate") != "" {
		return nil, fmt.Errorf("checkout.tax_rate is not a number: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:          v.GetBool("redis.enabled"),
			Host:             v.GetString("redis.host"),
			Port:             v.GetInt("redis.port"),
			Password:         v.GetString("redis.password"),
			DB:               v.GetInt("redis.db"),
			KeyPrefix:        v.GetString("redis.key_prefix"),
			TTL:              v.GetDuration("redis.ttl"),
			FallbackToMemory: v.GetBool("redis.fallback_to_memory"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
			Issuer:     v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:           v.GetDuration("http.read_timeout"),
			WriteTimeout:          v.GetDuration("http.write_timeout"),
			IdleTimeout:           v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:        v.GetInt("http.max_header_bytes"),
			MaxBodySize:           v.GetInt64("http.max_body_size"),
			RateLimitEnabled:      v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:     v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:       v.GetDuration("http.rate_limit_window"),
			AuthRateLimitEnabled:  v.GetBool("http.auth_rate_limit_enabled"),
			AuthRateLimitRequests: v.GetInt("http.auth_rate_limit_requests"),
			AuthRateLimitWindow:   v.GetDuration("http.auth_rate_limit_window"),
			CORSAllowOrigins:      v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:      v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:      v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:        v.GetStringSlice("http.trusted_proxies"),
		},
		Checkout: CheckoutConfig{
			TaxRate:           taxRate,
			LowStockThreshold: v.GetInt("checkout.low_stock_threshold"),
		},
		Storage: StorageConfig{
			Backend:           v.GetString("storage.backend"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PublicBaseURL:     v.GetString("storage.public_base_url"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Client: ClientConfig{
			BaseURL:   v.GetString("client.base_url"),
			Timeout:   v.GetDuration("client.timeout"),
			SessionID: v.GetString("client.session_id"),
			Token:     v.GetString("client.token"),
			StorePath: v.GetString("client.store_path"),
		},
		Telemetry: TelemetryConfig{
			Enabled:            v.GetBool("telemetry.enabled"),
			ServiceName:        v.GetString("telemetry.service_name"),
			CollectorEndpoint:  v.GetString("telemetry.collector_endpoint"),
			Insecure:           v.GetBool("telemetry.insecure"),
			SamplingRatio:      v.GetFloat64("telemetry.sampling_ratio"),
			DBTracing:          v.GetBool("telemetry.db_tracing"),
			SlowQueryThreshold: v.GetDuration("telemetry.slow_query_threshold"),
			MetricsInterval:    v.GetDuration("telemetry.metrics_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "storefront:"
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 30 * 24 * time.Hour
	}
	if cfg.JWT.Expiration == 0 {
		cfg.JWT.Expiration = 30 * time.Minute
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "storefront"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.AuthRateLimitRequests == 0 {
		cfg.HTTP.AuthRateLimitRequests = 5
	}
	if cfg.HTTP.AuthRateLimitWindow == 0 {
		cfg.HTTP.AuthRateLimitWindow = time.Minute
	}
	// No CORS origin default: cross-origin requests stay blocked until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Checkout.LowStockThreshold == 0 {
		cfg.Checkout.LowStockThreshold = 3
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "stub"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.Client.BaseURL == "" {
		cfg.Client.BaseURL = "http://localhost:8080/api/v1"
	}
	if cfg.Client.Timeout == 0 {
		cfg.Client.Timeout = 10 * time.Second
	}
	if cfg.Client.SessionID == "" {
		cfg.Client.SessionID = "default"
	}
	if cfg.Client.StorePath == "" {
		cfg.Client.StorePath = defaultStorePath()
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio <= 0 || cfg.Telemetry.SamplingRatio > 1 {
		cfg.Telemetry.SamplingRatio = 1
	}
	if cfg.Telemetry.SlowQueryThreshold == 0 {
		cfg.Telemetry.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.Telemetry.MetricsInterval <= 0 {
		cfg.Telemetry.MetricsInterval = time.Minute
	}
}

// defaultStorePath places the CLI cart file under the user's config directory
func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".storefront", "cart.db")
	}
	return filepath.Join(dir, "storefront", "cart.db")
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Checkout.TaxRate.IsNegative() || c.Checkout.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("checkout.tax_rate must be between 0 and 1, got %s", c.Checkout.TaxRate)
	}
	if c.Checkout.LowStockThreshold < 0 {
		return fmt.Errorf("checkout.low_stock_threshold cannot be negative")
	}
	switch c.Storage.Backend {
	case "stub", "s3":
	default:
		return fmt.Errorf("storage.backend must be 'stub' or 's3', got %q", c.Storage.Backend)
	}

	if c.App.Env == "production" {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// RequireJWTSecret fails when no signing seed is configured
func (c *Config) RequireJWTSecret() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required (set SHOP_JWT_SECRET or JWT_SECRET_SEED)")
	}
	return nil
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
