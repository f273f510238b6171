package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	HTTP        ServerConfig
	MySQL       MySQLConfig
	Log         LogConfig
	NowPayments NowPaymentsConfig
	Checkout    CheckoutConfig
	Orders      OrdersConfig
	Jobs        JobsConfig
}

type AppConfig struct {
	ServiceName  string
	SupportEmail string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type NowPaymentsConfig struct {
	APIKey       string
	IPNSecretKey string
	BaseURL      string
	HTTPTimeout  time.Duration
}

// CheckoutConfig carries everything the checkout flow needs to build the
// gateway request: the public base URL the gateway calls back into and the
// currency every tier price is quoted in.
type CheckoutConfig struct {
	PublicBaseURL string
	Currency      string
}

type OrdersConfig struct {
	PendingTimeout time.Duration
	JobBatchSize   int32
}

type JobsConfig struct {
	ExpirePendingInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	publicBaseURL := os.Getenv("CHECKOUT_PUBLIC_BASE_URL")
	if publicBaseURL == "" {
		return nil, errors.New("CHECKOUT_PUBLIC_BASE_URL environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName:  getEnv("APP_SERVICE_NAME", "orders-service"),
			SupportEmail: getEnv("APP_SUPPORT_EMAIL", ""),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		NowPayments: NowPaymentsConfig{
			APIKey:       getEnv("NOWPAYMENTS_API_KEY", ""),
			IPNSecretKey: getEnv("NOWPAYMENTS_IPN_SECRET_KEY", ""),
			BaseURL:      getEnv("NOWPAYMENTS_BASE_URL", "https://api.nowpayments.io/v1"),
			HTTPTimeout:  getSecondsEnv("NOWPAYMENTS_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Checkout: CheckoutConfig{
			PublicBaseURL: publicBaseURL,
			Currency:      getEnv("CHECKOUT_CURRENCY", "usd"),
		},
		Orders: OrdersConfig{
			PendingTimeout: getMinutesEnv("ORDERS_PENDING_TIMEOUT_MINUTES", 24*60*time.Minute),
			JobBatchSize:   int32(getIntEnv("ORDERS_JOB_BATCH_SIZE", 100)),
		},
		Jobs: JobsConfig{
			ExpirePendingInterval: getMinutesEnv("ORDERS_EXPIRE_PENDING_INTERVAL_MINUTES", 5*time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
