package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	TimeZone            string // IANA zone used for session dates and report ranges
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	RateLimitMax        int // requests per minute per client IP
	LogLevel            string
	HealthAdminKey      string
	StaffKey            string // required to start a staff session when set
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("TIME_ZONE", "Asia/Bangkok")
	v.SetDefault("RATE_LIMIT_MAX", 100)
	v.SetDefault("LOG_LEVEL", "info")

	return &Config{
		Env:                 v.GetString("APP_ENV"),
		Port:                v.GetString("PORT"),
		SessionSecret:       v.GetString("SESSION_SECRET"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		TimeZone:            v.GetString("TIME_ZONE"),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(v.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		RateLimitMax:        v.GetInt("RATE_LIMIT_MAX"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
		StaffKey:            v.GetString("STAFF_KEY"),
	}, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves TimeZone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	if c.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
