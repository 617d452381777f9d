package rbac

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"DB_DSN" envDefault:"file:rbac.db?cache=shared"`

	AccessTokenSecret string        `env:"JWT_ACCESS_TOKEN_SECRET,required"`
	AccessTokenTTL    time.Duration `env:"JWT_ACCESS_TOKEN_TTL" envDefault:"15m"`

	RefreshTokenSecret string        `env:"JWT_REFRESH_TOKEN_SECRET,required"`
	RefreshTokenTTL    time.Duration `env:"JWT_REFRESH_TOKEN_TTL" envDefault:"720h"`

	ResetTokenTTL time.Duration `env:"PASSWORD_RESET_TOKEN_TTL" envDefault:"1h"`

	// The super admin account is seeded at startup and protected from
	// deletion for the lifetime of the deployment.
	SuperAdminEmail    string `env:"SUPER_ADMIN_EMAIL,required"`
	SuperAdminPassword string `env:"SUPER_ADMIN_PASSWORD,required"`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
