package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	DatabaseURL string `env:"DATABASE_URL"` // signup audit log; disabled when empty

	SessionSecret string        `env:"SESSION_SECRET,required,notEmpty"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	AdminToken    string        `env:"ADMIN_TOKEN"`

	BackendURL         string        `env:"BACKEND_URL,required,notEmpty"`
	BackendAccessToken string        `env:"BACKEND_ACCESS_TOKEN"`
	BackendTimeout     time.Duration `env:"BACKEND_TIMEOUT" envDefault:"15s"`

	PaymentsPublishableKey  string `env:"PAYMENTS_PUBLISHABLE_KEY"`
	PaymentsCheckoutBaseURL string `env:"PAYMENTS_CHECKOUT_BASE_URL"`

	LoginURL           string `env:"LOGIN_URL" envDefault:"http://localhost:3000/login"`
	CheckoutSuccessURL string `env:"CHECKOUT_SUCCESS_URL" envDefault:"http://localhost:3000/dashboard?checkout=success"`
	CheckoutCancelURL  string `env:"CHECKOUT_CANCEL_URL" envDefault:"http://localhost:3000/pricing?checkout=cancelled"`
	SalesEmail         string `env:"SALES_EMAIL" envDefault:"sales@carbonlens.io"`
	AllowedOrigin      string `env:"ALLOWED_ORIGIN" envDefault:"*"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	return cfg, nil
}

func (c Config) Production() bool { return c.Environment == "production" }
