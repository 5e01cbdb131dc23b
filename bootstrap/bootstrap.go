package bootstrap

import (
	"sfms-backend/internal/config"
	"sfms-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// New creates the Fiber app for the serverless handler (api imports this package, not internal).
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	SetLogLevel(cfg.LogLevel)
	app, _, _, err := router.CreateApp(cfg)
	return app, err
}

// SetLogLevel applies LOG_LEVEL to the global zerolog logger; unknown levels mean info.
func SetLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
