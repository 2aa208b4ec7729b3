package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Name     string `yaml:"name"`
	Port     string `yaml:"port"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
}

type PostgresConfig struct {
	URL             string        `yaml:"url"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	Migrate         bool          `yaml:"migrate"`
}

// DSN returns URL when set, otherwise a key/value connection string.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers    []string `yaml:"brokers"`
	OrderTopic string   `yaml:"order_topic"`
	GroupID    string   `yaml:"group_id"`
	Workers    int      `yaml:"workers"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type AuthConfig struct {
	OTPTTL         time.Duration `yaml:"otp_ttl"`
	OTPMaxAttempts int           `yaml:"otp_max_attempts"`
}

type OrderConfig struct {
	ShippingFee           float64       `yaml:"shipping_fee"`
	FreeShippingThreshold float64       `yaml:"free_shipping_threshold"`
	ReturnWindow          time.Duration `yaml:"return_window"`
}

type SellerConfig struct {
	CommissionRate float64 `yaml:"commission_rate"`
}

type CatalogConfig struct {
	ProductCacheTTL time.Duration `yaml:"product_cache_ttl"`
}

type Config struct {
	App      AppConfig      `yaml:"app"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Auth     AuthConfig     `yaml:"auth"`
	Order    OrderConfig    `yaml:"order"`
	Seller   SellerConfig   `yaml:"seller"`
	Catalog  CatalogConfig  `yaml:"catalog"`
}

func defaults() *Config {
	return &Config{
		App: AppConfig{Name: "storefront", Port: "8080", Env: "development", LogLevel: "info"},
		Postgres: PostgresConfig{
			Port:            "5432",
			SSLMode:         "disable",
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Kafka: KafkaConfig{OrderTopic: "storefront.orders", GroupID: "storefront-notifier", Workers: 4},
		Auth:  AuthConfig{OTPTTL: 5 * time.Minute, OTPMaxAttempts: 5},
		Order: OrderConfig{
			ShippingFee:           50,
			FreeShippingThreshold: 500,
			ReturnWindow:          14 * 24 * time.Hour,
		},
		Seller:  SellerConfig{CommissionRate: 0.10},
		Catalog: CatalogConfig{ProductCacheTTL: 5 * time.Minute},
	}
}

// NewConfig builds the configuration from defaults, an optional YAML file
// (CONFIG_PATH), an optional .env file and the process environment, in that
// order of precedence (last wins).
func NewConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("invalid config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.App.Port, "APP_PORT")
	setString(&cfg.App.Env, "APP_ENV")
	setString(&cfg.App.LogLevel, "LOG_LEVEL")

	setString(&cfg.Postgres.URL, "DATABASE_URL")
	setString(&cfg.Postgres.Host, "DB_HOST")
	setString(&cfg.Postgres.Port, "DB_PORT")
	setString(&cfg.Postgres.User, "DB_USER")
	setString(&cfg.Postgres.Password, "DB_PASSWORD")
	setString(&cfg.Postgres.DBName, "DB_NAME")
	setString(&cfg.Postgres.SSLMode, "DB_SSLMODE")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.Kafka.Brokers = splitCSV(v)
	}
	setString(&cfg.Kafka.OrderTopic, "KAFKA_ORDER_TOPIC")
	setString(&cfg.Kafka.GroupID, "KAFKA_GROUP_ID")

	var errs []error
	errs = append(errs,
		setInt32(&cfg.Postgres.MaxConns, "DB_MAX_CONNS"),
		setInt32(&cfg.Postgres.MinConns, "DB_MIN_CONNS"),
		setDuration(&cfg.Postgres.MaxConnLifetime, "DB_MAX_CONN_LIFETIME"),
		setBool(&cfg.Postgres.Migrate, "DB_MIGRATE"),
		setInt(&cfg.Redis.DB, "REDIS_DB"),
		setInt(&cfg.Kafka.Workers, "KAFKA_WORKERS"),
		setDuration(&cfg.Auth.OTPTTL, "OTP_TTL"),
		setInt(&cfg.Auth.OTPMaxAttempts, "OTP_MAX_ATTEMPTS"),
		setFloat(&cfg.Order.ShippingFee, "ORDER_SHIPPING_FEE"),
		setFloat(&cfg.Order.FreeShippingThreshold, "ORDER_FREE_SHIPPING_THRESHOLD"),
		setDuration(&cfg.Order.ReturnWindow, "ORDER_RETURN_WINDOW"),
		setFloat(&cfg.Seller.CommissionRate, "SELLER_COMMISSION_RATE"),
		setDuration(&cfg.Catalog.ProductCacheTTL, "PRODUCT_CACHE_TTL"),
	)
	return errors.Join(errs...)
}

func (c *Config) validate() error {
	if c.Seller.CommissionRate < 0 || c.Seller.CommissionRate >= 1 {
		return fmt.Errorf("SELLER_COMMISSION_RATE must be in [0, 1), got %v", c.Seller.CommissionRate)
	}
	if c.Postgres.URL != "" {
		return nil
	}

	var missing []string
	if c.Postgres.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.Postgres.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.Postgres.DBName == "" {
		missing = append(missing, "DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("DATABASE_URL or %s is required", strings.Join(missing, ", "))
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setInt32(dst *int32, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = int32(n)
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
