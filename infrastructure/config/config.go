package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server          ServerConfig
	Messaging       MessagingConfig
	Twilio          TwilioConfig
	Redis           RedisConfig
	Press           PressConfig
	Paths           PathsConfig
	OutboundTimeout time.Duration `env:"OUTBOUND_TIMEOUT" envDefault:"30s"`
}

type ServerConfig struct {
	Port      int    `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	PublicURL string `env:"PUBLIC_URL"`
	// SigningKey may also come from settings.yaml (server.key).
	SigningKey    string `env:"SIGNING_KEY"`
	AllowUnsigned bool   `env:"ALLOW_UNSIGNED_TOKENS" envDefault:"false"`
	DefaultButton string `env:"DEFAULT_BUTTON"`
}

func (c *ServerConfig) Addr() string {
	return "0.0.0.0:" + strconv.Itoa(c.Port)
}

func (c *ServerConfig) Debug() bool {
	return c.LogLevel == "debug"
}

type MessagingConfig struct {
	URL   string `env:"MESSAGING_URL" envDefault:"https://webexapis.com/v1"`
	Token string `env:"MESSAGING_TOKEN"`
}

type TwilioConfig struct {
	URL        string `env:"TWILIO_URL" envDefault:"https://api.twilio.com"`
	AccountSID string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `env:"TWILIO_AUTH_TOKEN"`
}

// RedisConfig is optional; without an address room ids are cached in memory.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// PressConfig throttles presses per button. A zero rate disables throttling.
type PressConfig struct {
	RateLimit int `env:"PRESS_RATE_LIMIT" envDefault:"0"`
	RateBurst int `env:"PRESS_RATE_BURST" envDefault:"1"`
}

type PathsConfig struct {
	Settings    string `env:"CONFIG_PATH" envDefault:"settings.yaml"`
	Buttons     string `env:"BUTTONS_DIR" envDefault:"buttons"`
	Files       string `env:"FILES_DIR" envDefault:"files"`
	Attachments string `env:"ATTACHMENTS_ROOT" envDefault:"."`
	Tokens      string `env:"TOKENS_PATH" envDefault:".tokens"`
}

func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.OutboundTimeout <= 0 {
		return nil, fmt.Errorf("OUTBOUND_TIMEOUT must be positive, got %s", cfg.OutboundTimeout)
	}
	if cfg.Press.RateLimit < 0 || cfg.Press.RateBurst < 1 {
		return nil, fmt.Errorf("PRESS_RATE_LIMIT must be >= 0 and PRESS_RATE_BURST >= 1")
	}

	return &cfg, nil
}

// ApplyFileConfig applies settings from settings.yaml if env variables are not set.
// Env variables have priority over file config.
func (c *Config) ApplyFileConfig(s *Settings) {
	if os.Getenv("SERVER_PORT") == "" && s.Server.Port != 0 {
		c.Server.Port = s.Server.Port
	}
	if c.Server.PublicURL == "" {
		c.Server.PublicURL = s.Server.URL
	}
	if c.Server.SigningKey == "" {
		c.Server.SigningKey = s.Server.Key
	}
	if c.Server.DefaultButton == "" {
		c.Server.DefaultButton = s.Server.Default
	}
	if c.Messaging.Token == "" {
		c.Messaging.Token = s.Messaging.Token
	}
	if c.Twilio.AccountSID == "" {
		c.Twilio.AccountSID = s.Telephony.AccountSID
	}
	if c.Twilio.AuthToken == "" {
		c.Twilio.AuthToken = s.Telephony.AuthToken
	}
}

// Validate returns the first configuration error that prevents startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Messaging.Token == "" {
		return fmt.Errorf("MESSAGING_TOKEN is required")
	}
	if c.Server.SigningKey == "" && !c.Server.AllowUnsigned {
		return fmt.Errorf("SIGNING_KEY is required, set ALLOW_UNSIGNED_TOKENS=true to accept plain button names")
	}
	return nil
}

// Warnings lists missing settings the relay can run without.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Server.SigningKey == "" {
		warnings = append(warnings, "no signing key configured, tokens are plain button names")
	}
	if c.Server.PublicURL == "" {
		warnings = append(warnings, "PUBLIC_URL is not set, calls need an explicit callback url")
	}
	if c.Twilio.AccountSID == "" || c.Twilio.AuthToken == "" {
		warnings = append(warnings, "Twilio credentials are not set, SMS and calls will fail")
	}
	return warnings
}
