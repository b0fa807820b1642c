package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	Env        string `mapstructure:"ENV"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	// Empty disables event publishing and the catalog consumer.
	RabbitURL string `mapstructure:"RABBITMQ_URL"`

	// Empty disables the shared availability cache.
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	RedisCacheTTL time.Duration `mapstructure:"REDIS_CACHE_TTL"`

	TaxRate            string `mapstructure:"TAX_RATE"`
	HourlyRate         string `mapstructure:"HOURLY_RATE"`
	DefaultGuestCount  int    `mapstructure:"DEFAULT_GUEST_COUNT"`
	VenueDailyCapacity int    `mapstructure:"VENUE_DAILY_CAPACITY"`
	Timezone           string `mapstructure:"TIMEZONE"`
	CatalogSeedFile    string `mapstructure:"CATALOG_SEED_FILE"`

	SessionIdleTTL     time.Duration `mapstructure:"SESSION_IDLE_TTL"`
	SessionSweepSpec   string        `mapstructure:"SESSION_SWEEP_SPEC"`
	CatalogRefreshSpec string        `mapstructure:"CATALOG_REFRESH_SPEC"`
	RateLimitPerSecond float64       `mapstructure:"RATE_LIMIT_PER_SECOND"`

	SendGridAPIKey    string `mapstructure:"SENDGRID_API_KEY"`
	SendGridFromEmail string `mapstructure:"SENDGRID_FROM_EMAIL"`
	SendGridFromName  string `mapstructure:"SENDGRID_FROM_NAME"`
	TwilioAccountSID  string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber  string `mapstructure:"TWILIO_FROM_NUMBER"`
}

var defaults = map[string]any{
	"SERVER_PORT": "8082",
	"ENV":         "development",
	"LOG_LEVEL":   "info",

	"DB_HOST":     "localhost",
	"DB_PORT":     "5432",
	"DB_USER":     "postgres",
	"DB_PASSWORD": "postgres",
	"DB_NAME":     "wizard_db",
	"DB_SSLMODE":  "disable",

	"RABBITMQ_URL":    "",
	"REDIS_ADDR":      "",
	"REDIS_PASSWORD":  "",
	"REDIS_DB":        0,
	"REDIS_CACHE_TTL": "5m",

	"TAX_RATE":             "",
	"HOURLY_RATE":          "50",
	"DEFAULT_GUEST_COUNT":  1,
	"VENUE_DAILY_CAPACITY": 5,
	"TIMEZONE":             "Local",
	"CATALOG_SEED_FILE":    "",

	"SESSION_IDLE_TTL":      "30m",
	"SESSION_SWEEP_SPEC":    "@every 5m",
	"CATALOG_REFRESH_SPEC":  "@every 15m",
	"RATE_LIMIT_PER_SECOND": 20,

	"SENDGRID_API_KEY":    "",
	"SENDGRID_FROM_EMAIL": "",
	"SENDGRID_FROM_NAME":  "Event Bookings",
	"TWILIO_ACCOUNT_SID":  "",
	"TWILIO_AUTH_TOKEN":   "",
	"TWILIO_FROM_NUMBER":  "",
}

// Load reads .env (if present), an optional config.yaml and the environment,
// in increasing order of precedence.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] no .env file found, using environment variables only")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("[Config] failed to read config file: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("[Config] failed to load config: %v", err)
	}
	return &cfg
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves TIMEZONE. Unknown zones fall back to the server zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
