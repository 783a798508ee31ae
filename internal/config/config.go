package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port                int    `env:"PORT" envDefault:"8080"`
	DatabaseURL         string `env:"DATABASE_URL,required"`
	RedisURL            string `env:"REDIS_URL,required"`
	OpenAIAPIKey        string `env:"OPENAI_API_KEY"`
	OpenAIModel         string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripePriceIDPaid   string `env:"STRIPE_PRICE_ID_PAID"`
	ClientURL           string `env:"CLIENT_URL" envDefault:"http://localhost:3000"`
	FreeSessionLimit    int    `env:"FREE_SESSION_LIMIT" envDefault:"2"`
	GenerationBatchSize int    `env:"GENERATION_BATCH_SIZE" envDefault:"10"`
	LogLevel            string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if c.FreeSessionLimit < 0 {
		return fmt.Errorf("FREE_SESSION_LIMIT must not be negative")
	}
	if c.GenerationBatchSize <= 0 {
		return fmt.Errorf("GENERATION_BATCH_SIZE must be positive")
	}
	if c.ClientURL != "" && !strings.HasPrefix(c.ClientURL, "http://") && !strings.HasPrefix(c.ClientURL, "https://") {
		return fmt.Errorf("CLIENT_URL must be an http(s) URL")
	}

	if isProduction {
		// The OpenAI key is checked at call time, not startup: generation
		// endpoints surface the missing key, the rest of the API keeps working.
		if c.OpenAIAPIKey == "" {
			log.Warn().Msg("OPENAI_API_KEY is empty: flashcard generation will fail until it is set")
		}
		if c.StripeSecretKey == "" {
			log.Warn().Msg("STRIPE_SECRET_KEY is empty: checkout endpoints will fail")
		}
		if strings.HasPrefix(c.ClientURL, "http://") {
			log.Warn().Msg("CLIENT_URL uses http:// in production: checkout redirects will not be secure")
		}
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
