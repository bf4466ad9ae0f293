package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port               int    `env:"PORT" envDefault:"8080"`
	DatabaseURL        string `env:"DATABASE_URL,required"`
	RedisURL           string `env:"REDIS_URL,required"`
	AdminSessionSecret string `env:"ADMIN_SESSION_SECRET"`
	UserSessionSecret  string `env:"USER_SESSION_SECRET"`
	OpenAIAPIKey       string `env:"OPENAI_API_KEY"`
	GeminiAPIKey       string `env:"GEMINI_API_KEY"`
	DeepSeekAPIKey     string `env:"DEEPSEEK_API_KEY"`
	AdminSessionHours  int    `env:"ADMIN_SESSION_HOURS" envDefault:"24"`
	UserSessionDays    int    `env:"USER_SESSION_DAYS" envDefault:"7"`
	GenerationPerMin   int    `env:"GENERATION_RATE_PER_MIN" envDefault:"5"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
	StaticDir          string `env:"STATIC_DIR" envDefault:"static"`
}

// AdminSessionTTL is the absolute lifetime of an admin session token.
// Expiry is absolute, not sliding: validation never extends it.
func (c *Config) AdminSessionTTL() time.Duration {
	return time.Duration(c.AdminSessionHours) * time.Hour
}

func (c *Config) UserSessionTTL() time.Duration {
	return time.Duration(c.UserSessionDays) * 24 * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if isProduction {
		if err := validateSecret("ADMIN_SESSION_SECRET", c.AdminSessionSecret); err != nil {
			return err
		}
		if err := validateSecret("USER_SESSION_SECRET", c.UserSessionSecret); err != nil {
			return err
		}

		if c.OpenAIAPIKey == "" && c.GeminiAPIKey == "" && c.DeepSeekAPIKey == "" {
			log.Warn().Msg("no LLM API keys configured in production: article generation disabled")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
