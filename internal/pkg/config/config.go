package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	Session SessionConfig
	Cookie  CookieConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Order   OrderConfig
	Kafka   KafkaConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" required:"true"`
	Password    string `envconfig:"DB_PASSWORD" required:"true"`
	DBName      string `envconfig:"DB_NAME" required:"true"`
	SSLMode     string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone    string `envconfig:"DB_TIMEZONE" default:"UTC"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" required:"true"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// SessionConfig controls the cart session kept in Redis.
type SessionConfig struct {
	CookieName string        `envconfig:"SESSION_COOKIE_NAME" default:"cart_session"`
	TTL        time.Duration `envconfig:"SESSION_TTL" default:"72h"`
	MaxRetries int           `envconfig:"SESSION_MAX_RETRIES" default:"3"`
}

type CookieConfig struct {
	Domain              string        `envconfig:"COOKIE_DOMAIN" default:""`
	Secure              bool          `envconfig:"COOKIE_SECURE" default:"false"`
	SameSite            string        `envconfig:"COOKIE_SAME_SITE" default:"Lax"`
	AffiliateCookieName string        `envconfig:"AFFILIATE_COOKIE_NAME" default:"affiliate_code"`
	AffiliateCookieTTL  time.Duration `envconfig:"AFFILIATE_COOKIE_TTL" default:"720h"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_ACCESS_TOKEN_DURATION" default:"24h"`
}

// OrderConfig holds checkout policy knobs.
type OrderConfig struct {
	HoldUnverified  bool          `envconfig:"ORDER_HOLD_UNVERIFIED" default:"true"`
	ReviewThreshold string        `envconfig:"ORDER_FRAUD_REVIEW_THRESHOLD" default:"1000"`
	DefaultCurrency string        `envconfig:"ORDER_DEFAULT_CURRENCY" default:"USD"`
	IdempotencyTTL  time.Duration `envconfig:"ORDER_IDEMPOTENCY_TTL" default:"24h"`
}

type KafkaConfig struct {
	Brokers      []string      `envconfig:"KAFKA_BROKERS" default:""`
	OrderTopic   string        `envconfig:"KAFKA_ORDER_TOPIC" default:"storefront.orders"`
	PollInterval time.Duration `envconfig:"KAFKA_POLL_INTERVAL" default:"2s"`
	BatchSize    int           `envconfig:"KAFKA_BATCH_SIZE" default:"50"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

// FraudReviewThreshold parses ORDER_FRAUD_REVIEW_THRESHOLD; an empty or
// non-positive value disables threshold screening.
func (c OrderConfig) FraudReviewThreshold() (decimal.Decimal, error) {
	if c.ReviewThreshold == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(c.ReviewThreshold)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid ORDER_FRAUD_REVIEW_THRESHOLD %q: %w", c.ReviewThreshold, err)
	}
	return d, nil
}

func (c KafkaConfig) Enabled() bool {
	for _, b := range c.Brokers {
		if b != "" {
			return true
		}
	}
	return false
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Redis: RedisConfig{
			Addr: "localhost:16379",
		},
		Session: SessionConfig{
			CookieName: "cart_session",
			TTL:        time.Hour,
			MaxRetries: 3,
		},
		Cookie: CookieConfig{
			SameSite:            "Lax",
			AffiliateCookieName: "affiliate_code",
			AffiliateCookieTTL:  time.Hour,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
		},
		Order: OrderConfig{
			HoldUnverified:  true,
			ReviewThreshold: "1000",
			DefaultCurrency: "USD",
			IdempotencyTTL:  time.Hour,
		},
		Kafka: KafkaConfig{
			OrderTopic:   "storefront.orders",
			PollInterval: time.Second,
			BatchSize:    10,
		},
	}
}
