package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port          string   `mapstructure:"API_PORT"`
	Env           string   `mapstructure:"ENV"`
	StoreDriver   string   `mapstructure:"STORE_DRIVER"`
	MongoURI      string   `mapstructure:"MONGO_URI"`
	MongoDatabase string   `mapstructure:"MONGO_DATABASE"`
	CORSOrigins   []string `mapstructure:"CORS_ORIGINS"`

	JWTSecret    string        `mapstructure:"JWT_SECRET"`
	JWTTTL       time.Duration `mapstructure:"JWT_TTL"`
	ResetCodeTTL time.Duration `mapstructure:"RESET_CODE_TTL"`
	BcryptCost   int           `mapstructure:"BCRYPT_COST"`

	BaseFee         int64         `mapstructure:"FEE"`
	ConsultantRate  int64         `mapstructure:"CONSULTANT_RATE"`
	LeadTime        time.Duration `mapstructure:"RESERVATION_LEAD_TIME"`
	Timezone        string        `mapstructure:"APP_TIMEZONE"`
	PatientIDPrefix string        `mapstructure:"PATIENT_ID_PREFIX"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int    `mapstructure:"REDIS_DB"`
	ActivityStream string `mapstructure:"ACTIVITY_STREAM"`

	NotifyWebhookURL string `mapstructure:"NOTIFY_WEBHOOK_URL"`
}

var keys = []string{
	"API_PORT", "ENV", "STORE_DRIVER", "MONGO_URI", "MONGO_DATABASE", "CORS_ORIGINS",
	"JWT_SECRET", "JWT_TTL", "RESET_CODE_TTL", "BCRYPT_COST",
	"FEE", "CONSULTANT_RATE", "RESERVATION_LEAD_TIME", "APP_TIMEZONE", "PATIENT_ID_PREFIX",
	"LOG_LEVEL", "LOG_FORMAT",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "ACTIVITY_STREAM",
	"NOTIFY_WEBHOOK_URL",
}

// Load reads .env (if present) into the process environment and then builds
// the Config from environment variables and defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("API_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "hospital")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("RESET_CODE_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("FEE", 5000)
	v.SetDefault("CONSULTANT_RATE", 2)
	v.SetDefault("RESERVATION_LEAD_TIME", "30m")
	v.SetDefault("APP_TIMEZONE", "Local")
	v.SetDefault("PATIENT_ID_PREFIX", "JHC")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ACTIVITY_STREAM", "activity-log")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// viper splits on commas but keeps the surrounding spaces.
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.StoreDriver != DriverMongo && c.StoreDriver != DriverMemory {
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMongo, DriverMemory, c.StoreDriver)
	}
	if c.StoreDriver == DriverMongo && c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required when STORE_DRIVER is %q", DriverMongo)
	}
	if c.BaseFee <= 0 {
		return fmt.Errorf("FEE must be positive, got %d", c.BaseFee)
	}
	if c.ConsultantRate <= 0 {
		return fmt.Errorf("CONSULTANT_RATE must be positive, got %d", c.ConsultantRate)
	}
	if c.LeadTime < 0 {
		return fmt.Errorf("RESERVATION_LEAD_TIME must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	return nil
}

// Location resolves APP_TIMEZONE; the calendar-day check for reservations is
// evaluated in this zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
